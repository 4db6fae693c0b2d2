// Package session manages the client-held Wisal session: the current
// user's identity, the bearer credential, and the authorization state
// derived from both.
//
// Session lifecycle:
//   - The Store owns a single session per running consumer. Login and
//     Register replace the identity wholesale, CheckAuth reconciles a
//     persisted credential with a fresh profile fetch, and Logout (or
//     any CheckAuth failure) resets the session to anonymous.
//   - Status is three-valued. StatusPendingProfile covers the window
//     where a credential has been accepted but the profile fetch has
//     not resolved yet; consumers must tolerate a nil User there.
//
// Persistence:
//   - Only the credential is ever written to durable storage, through
//     an explicit TokenVault allow-list. The user profile is never
//     trusted from storage and is always re-fetched.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the Store
//     and the OAuth reconciler to describe login, logout, expiry, and
//     callback events. Sinks run best-effort (errors are logged) so
//     you can forward to a database or queue without blocking the
//     session operations themselves.
package session
