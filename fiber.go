package session

import (
	"github.com/gofiber/fiber/v2"
)

// SnapshotContextKey is the fiber locals key the middleware stores the
// session snapshot under.
const SnapshotContextKey = "wisal_session"

// FiberSnapshot retrieves the snapshot stashed by the fiber guards.
func FiberSnapshot(c *fiber.Ctx) (Snapshot, bool) {
	snap, ok := c.Locals(SnapshotContextKey).(Snapshot)
	return snap, ok
}

// FiberProtected is the fiber-native variant of Guard.Protected for
// apps mounted directly on fiber rather than go-router.
func (g *Guard) FiberProtected(allowedRoles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := g.store.Snapshot()

		if !snap.IsAuthenticated() {
			return c.Redirect(g.routes.Login, fiber.StatusFound)
		}

		if snap.User == nil {
			g.retryProfile()
			c.Locals(SnapshotContextKey, snap)
			return c.Next()
		}

		if !RoleIn(snap.User.Role, allowedRoles) {
			return c.Redirect(g.routes.Landing, fiber.StatusFound)
		}

		c.Locals(SnapshotContextKey, snap)
		return c.Next()
	}
}

// FiberPublic is the fiber-native variant of Guard.Public.
func (g *Guard) FiberPublic() fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := g.store.Snapshot()

		if snap.IsAuthenticated() && snap.User != nil {
			return c.Redirect(g.routes.DashboardFor(snap.User.Role), fiber.StatusFound)
		}

		c.Locals(SnapshotContextKey, snap)
		return c.Next()
	}
}
