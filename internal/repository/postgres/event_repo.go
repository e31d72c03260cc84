package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"eventmenu/internal/domain"
)

const eventColumns = `id, name, organizer_id, logo_url, colors, menu, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var colors, menu []byte
	if err := s.Scan(&e.ID, &e.Name, &e.OrganizerID, &e.LogoURL, &colors, &menu, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(colors, &e.Colors); err != nil {
		return nil, fmt.Errorf("decode colors: %w", err)
	}
	if err := json.Unmarshal(menu, &e.Menu); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	if e.Menu.Categories == nil {
		e.Menu.Categories = []domain.Category{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	colors, err := json.Marshal(e.Colors)
	if err != nil {
		return fmt.Errorf("encode colors: %w", err)
	}
	menu, err := json.Marshal(e.Menu)
	if err != nil {
		return fmt.Errorf("encode menu: %w", err)
	}
	query := `
		INSERT INTO events (name, organizer_id, logo_url, colors, menu)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, query, e.Name, e.OrganizerID, e.LogoURL, colors, menu).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		if isNotFound(err) {
			return []*domain.Event{}, nil
		}
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if patch.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *patch.Name)
		n++
	}
	if patch.LogoURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("logo_url = $%d", n))
		args = append(args, *patch.LogoURL)
		n++
	}
	if patch.Colors != nil {
		b, err := json.Marshal(patch.Colors)
		if err != nil {
			return nil, fmt.Errorf("encode colors: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("colors = $%d", n))
		args = append(args, b)
		n++
	}
	if patch.Menu != nil {
		b, err := json.Marshal(patch.Menu)
		if err != nil {
			return nil, fmt.Errorf("encode menu: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("menu = $%d", n))
		args = append(args, b)
		n++
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes the guest submissions and the event in one transaction.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE event_id = $1`, id); err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete guests: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
