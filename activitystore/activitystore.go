// Package activitystore persists session lifecycle events to a Bun
// database, for consumers that want a local audit trail of logins,
// logouts, expiries, and OAuth outcomes.
package activitystore

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	session "github.com/wisal-platform/go-session"
)

// ActivityRecord is the Bun model for a recorded session event.
type ActivityRecord struct {
	bun.BaseModel `bun:"table:session_activity,alias:act"`

	ID         uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventType  string         `bun:"event_type,notnull" json:"event_type,omitempty"`
	UserID     string         `bun:"user_id" json:"user_id,omitempty"`
	FromStatus string         `bun:"from_status" json:"from_status,omitempty"`
	ToStatus   string         `bun:"to_status" json:"to_status,omitempty"`
	Metadata   map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	OccurredAt time.Time      `bun:"occurred_at,notnull" json:"occurred_at,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Store implements session.ActivitySink on top of a Bun database.
type Store struct {
	db   *bun.DB
	repo repository.Repository[*ActivityRecord]
}

// New builds a store on db.
func New(db *bun.DB) *Store {
	repo := repository.NewRepository[*ActivityRecord](db, repository.ModelHandlers[*ActivityRecord]{
		NewRecord: func() *ActivityRecord { return &ActivityRecord{} },
		GetID: func(r *ActivityRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *ActivityRecord, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &Store{db: db, repo: repo}
}

// Init creates the backing table when it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*ActivityRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Record implements session.ActivitySink.
func (s *Store) Record(ctx context.Context, event session.ActivityEvent) error {
	record := &ActivityRecord{
		ID:         uuid.New(),
		EventType:  string(event.EventType),
		UserID:     event.UserID,
		FromStatus: string(event.FromStatus),
		ToStatus:   string(event.ToStatus),
		Metadata:   event.Metadata,
		OccurredAt: event.OccurredAt,
	}

	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}

	_, err := s.repo.Create(ctx, record)
	return err
}

// Recent returns the latest events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*ActivityRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []*ActivityRecord
	err := s.db.NewSelect().
		Model(&records).
		Order("occurred_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

var _ session.ActivitySink = (*Store)(nil)
