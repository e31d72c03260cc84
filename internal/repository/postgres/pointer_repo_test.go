package postgres

import (
	"context"
	"database/sql"
	"testing"

	"eventmenu/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestAdminPointerRepository_Get(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(mock sqlmock.Sqlmock)
		wantID string
		errIs  error
	}{
		{
			name: "stored",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT event_id FROM admin_pointers WHERE browser_id = \$1`).
					WithArgs("browser-1").
					WillReturnRows(sqlmock.NewRows([]string{"event_id"}).AddRow("ev-1"))
			},
			wantID: "ev-1",
		},
		{
			name: "none stored",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT event_id FROM admin_pointers`).
					WillReturnError(sql.ErrNoRows)
			},
			errIs: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			id, err := NewAdminPointerRepository(db).Get(context.Background(), "browser-1")
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.wantID, id)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdminPointerRepository_SetAndClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO admin_pointers .* ON CONFLICT \(browser_id\) DO UPDATE`).
		WithArgs("browser-1", "ev-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM admin_pointers WHERE browser_id = \$1`).
		WithArgs("browser-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAdminPointerRepository(db)
	require.NoError(t, repo.Set(context.Background(), "browser-1", "ev-2"))
	require.NoError(t, repo.Clear(context.Background(), "browser-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
