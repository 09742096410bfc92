package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gmomorfaruk/community-guardian/internal/domain"
)

// alertColumns must match the Scan order in scanAlert.
const alertColumns = `id, timestamp, latitude, longitude, submitter_name, alert_type`

// AlertRepo implements domain.AlertRepository backed by PostgreSQL. Identity
// assignment rides on the table's bigserial sequence, so concurrent inserts
// never collide and IDs stay monotonic across restarts.
type AlertRepo struct {
	pool *pgxpool.Pool
}

// NewAlertRepo creates an AlertRepo from the shared connection pool.
func NewAlertRepo(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

// Insert writes the alert and returns the canonical record with its assigned
// ID and UTC timestamp. The write is a single statement, so it is atomic:
// either the full row commits or nothing does.
func (r *AlertRepo) Insert(ctx context.Context, input domain.AlertInput) (*domain.Alert, error) {
	var alert domain.Alert
	err := r.pool.QueryRow(ctx, `
		INSERT INTO alerts (timestamp, latitude, longitude, submitter_name, alert_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+alertColumns+`
	`, input.Timestamp.UTC(), input.Latitude, input.Longitude, input.SubmitterName, input.AlertType).Scan(
		&alert.ID, &alert.Timestamp, &alert.Latitude, &alert.Longitude,
		&alert.SubmitterName, &alert.AlertType,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert alert: %v", domain.ErrPersistence, err)
	}

	alert.Timestamp = alert.Timestamp.UTC()
	return &alert, nil
}

// ListAll returns every persisted alert ordered by ID descending (newest first).
func (r *AlertRepo) ListAll(ctx context.Context) ([]domain.Alert, error) {
	return r.list(ctx, 0, 0)
}

// list carries the limit/offset plumbing so pagination can be exposed later
// without touching ListAll callers. limit <= 0 means no limit.
func (r *AlertRepo) list(ctx context.Context, limit, offset int) ([]domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query alerts: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	alerts := make([]domain.Alert, 0)
	for rows.Next() {
		var alert domain.Alert
		if err := rows.Scan(
			&alert.ID, &alert.Timestamp, &alert.Latitude, &alert.Longitude,
			&alert.SubmitterName, &alert.AlertType,
		); err != nil {
			return nil, fmt.Errorf("%w: scan alert: %v", domain.ErrPersistence, err)
		}
		alert.Timestamp = alert.Timestamp.UTC()
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read alerts: %v", domain.ErrPersistence, err)
	}

	return alerts, nil
}
