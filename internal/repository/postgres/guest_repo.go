package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"eventmenu/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{DB: db}
}

func (r *guestRepository) Create(ctx context.Context, g *domain.GuestSubmission) error {
	selections, err := json.Marshal(g.Selections)
	if err != nil {
		return fmt.Errorf("encode selections: %w", err)
	}
	query := `
		INSERT INTO guests (event_id, name, email, phone, opt_in, selections, guest_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, submitted_at
	`
	err = r.DB.QueryRowContext(ctx, query, g.EventID, g.Name, g.Email, g.Phone, g.OptIn, selections, g.GuestUserID).
		Scan(&g.ID, &g.SubmittedAt)
	switch {
	case isUniqueViolation(err):
		return domain.ErrAlreadySubmitted
	case isNotFound(err), pqCode(err) == foreignKeyViolation:
		return domain.ErrNotFound
	}
	return err
}

func (r *guestRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.GuestSubmission, error) {
	query := `
		SELECT id, event_id, name, email, phone, opt_in, selections, guest_user_id, submitted_at
		FROM guests
		WHERE event_id = $1
		ORDER BY submitted_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		if isNotFound(err) {
			return []*domain.GuestSubmission{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	guests := make([]*domain.GuestSubmission, 0)
	for rows.Next() {
		g := &domain.GuestSubmission{}
		var selections []byte
		if err := rows.Scan(&g.ID, &g.EventID, &g.Name, &g.Email, &g.Phone, &g.OptIn, &selections, &g.GuestUserID, &g.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(selections, &g.Selections); err != nil {
			return nil, fmt.Errorf("decode selections: %w", err)
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (r *guestRepository) Delete(ctx context.Context, eventID, guestID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM guests WHERE id = $1 AND event_id = $2`, guestID, eventID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
