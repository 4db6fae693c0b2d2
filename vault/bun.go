package vault

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	session "github.com/wisal-platform/go-session"
)

// CredentialModel is the Bun model for the persisted credential. One
// row per namespace; the profile is deliberately not representable
// here.
type CredentialModel struct {
	bun.BaseModel `bun:"table:session_credentials"`

	Namespace    string    `bun:"namespace,pk"`
	Token        string    `bun:"token,notnull"`
	RefreshToken string    `bun:"refresh_token"`
	UpdatedAt    time.Time `bun:"updated_at,default:current_timestamp"`
}

// Bun is a vault backed by a Bun database, for consumers that already
// carry a local SQLite (or similar) store.
type Bun struct {
	db        *bun.DB
	namespace string
	logger    session.Logger
}

// BunOption customizes the bun vault.
type BunOption func(*Bun)

// WithBunLogger overrides the default logger.
func WithBunLogger(logger session.Logger) BunOption {
	return func(b *Bun) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBun returns a vault storing the credential under namespace.
func NewBun(db *bun.DB, namespace string, opts ...BunOption) *Bun {
	b := &Bun{
		db:        db,
		namespace: namespace,
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Init creates the backing table when it does not exist yet.
func (b *Bun) Init(ctx context.Context) error {
	_, err := b.db.NewCreateTable().
		Model((*CredentialModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (b *Bun) Load(ctx context.Context) session.Credential {
	model := &CredentialModel{}
	err := b.db.NewSelect().
		Model(model).
		Where("namespace = ?", b.namespace).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			b.logger.Warn("credential row unreadable for %q, starting anonymous: %v", b.namespace, err)
		}
		return session.Credential{}
	}

	return session.Credential{
		Token:        model.Token,
		RefreshToken: model.RefreshToken,
	}
}

func (b *Bun) Store(ctx context.Context, cred session.Credential) {
	model := &CredentialModel{
		Namespace:    b.namespace,
		Token:        cred.Token,
		RefreshToken: cred.RefreshToken,
		UpdatedAt:    time.Now().UTC(),
	}

	_, err := b.db.NewInsert().
		Model(model).
		On("CONFLICT (namespace) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		b.logger.Warn("credential persist failed for %q: %v", b.namespace, err)
	}
}

func (b *Bun) Clear(ctx context.Context) {
	_, err := b.db.NewDelete().
		Model((*CredentialModel)(nil)).
		Where("namespace = ?", b.namespace).
		Exec(ctx)
	if err != nil {
		b.logger.Warn("credential clear failed for %q: %v", b.namespace, err)
	}
}
