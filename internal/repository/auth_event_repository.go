package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avilachehab/christmas-gifts/internal/events"
)

// AuthEventRepository persists the authentication audit trail.
type AuthEventRepository interface {
	Record(ctx context.Context, event events.Event) error
}

type authEventRepository struct {
	pool *pgxpool.Pool
}

// NewAuthEventRepository returns a Postgres-backed implementation.
func NewAuthEventRepository(pool *pgxpool.Pool) AuthEventRepository {
	return &authEventRepository{pool: pool}
}

func (r *authEventRepository) Record(ctx context.Context, event events.Event) error {
	const query = `
        INSERT INTO auth_events (id, event_type, subject, client_ip, path, reason, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		string(event.Type),
		nullable(event.Subject),
		nullable(event.ClientIP),
		nullable(event.Path),
		nullable(event.Reason),
		event.Timestamp,
	)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
