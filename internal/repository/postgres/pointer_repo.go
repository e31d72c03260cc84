package postgres

import (
	"context"
	"database/sql"

	"eventmenu/internal/domain"
)

type adminPointerRepository struct {
	DB *sql.DB
}

func NewAdminPointerRepository(db *sql.DB) domain.AdminPointerRepository {
	return &adminPointerRepository{DB: db}
}

func (r *adminPointerRepository) Get(ctx context.Context, browserID string) (string, error) {
	var eventID string
	err := r.DB.QueryRowContext(ctx, `SELECT event_id FROM admin_pointers WHERE browser_id = $1`, browserID).Scan(&eventID)
	if err != nil {
		if isNotFound(err) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return eventID, nil
}

func (r *adminPointerRepository) Set(ctx context.Context, browserID, eventID string) error {
	query := `
		INSERT INTO admin_pointers (browser_id, event_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (browser_id) DO UPDATE SET event_id = EXCLUDED.event_id, updated_at = NOW()
	`
	_, err := r.DB.ExecContext(ctx, query, browserID, eventID)
	return err
}

// Clear is a no-op when no pointer is stored.
func (r *adminPointerRepository) Clear(ctx context.Context, browserID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM admin_pointers WHERE browser_id = $1`, browserID)
	return err
}
