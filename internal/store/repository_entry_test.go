package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

func newTestRepo(t *testing.T) (vault.Vault, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEntryRepository(&DB{DB: db, logger: logger.Nop()}, logger.Nop()), mock
}

func testEntry() models.Entry {
	dca := 2
	return models.Entry{
		UUID:     uuid.MustParse("6f1c0a0e-8a43-4c1e-9b1a-2f6c3d4e5f60"),
		Group:    "Work",
		Title:    "Mail",
		User:     "john",
		Password: "secret",
		Notes:    "line1\r\nline2",
		CTime:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		DCA:      &dca,
	}
}

func payloadOf(t *testing.T, e models.Entry) string {
	t.Helper()
	p, err := encodeEntry(e)
	require.NoError(t, err)
	return p
}

// ── reads ─────────────────────────────────────────────────────────────────────

func TestEntryRepository_FindByUUID(t *testing.T) {
	want := testEntry()

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries WHERE uuid = ?")).
					WithArgs(want.UUID.String()).
					WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payloadOf(t, want)))
			},
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries")).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: vault.ErrEntryNotFound,
		},
		{
			name: "driver failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries")).
					WillReturnError(errors.New("database is locked"))
			},
			wantErr: ErrScanningRow,
		},
		{
			name: "corrupt payload",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries")).
					WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow("{not json"))
			},
			wantErr: ErrEncodingEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)
			tt.setup(mock)

			got, err := repo.FindByUUID(context.Background(), want.UUID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEntryRepository_FindByGTU(t *testing.T) {
	repo, mock := newTestRepo(t)
	want := testEntry()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries WHERE grp = ? AND title = ? AND username = ? ORDER BY seq LIMIT 1")).
		WithArgs("Work", "Mail", "john").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payloadOf(t, want)))

	got, err := repo.FindByGTU(context.Background(), want.GTU())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepository_Entries(t *testing.T) {
	first := testEntry()
	second := testEntry()
	second.UUID = uuid.New()
	second.Title = "Mail (1)"

	t.Run("keeps insertion order", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries ORDER BY seq")).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).
				AddRow(payloadOf(t, first)).
				AddRow(payloadOf(t, second)))

		got, err := repo.Entries(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []models.Entry{first, second}, got)
	})

	t.Run("empty vault", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries")).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}))

		got, err := repo.Entries(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("query failure", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries")).
			WillReturnError(errors.New("no such table: entries"))

		_, err := repo.Entries(context.Background())
		assert.ErrorIs(t, err, ErrExecutingQuery)
	})

	t.Run("iteration failure", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM entries")).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).
				AddRow(payloadOf(t, first)).
				RowError(0, errors.New("disk I/O error")))

		_, err := repo.Entries(context.Background())
		assert.ErrorIs(t, err, ErrScanningRows)
	})
}

// ── writes ────────────────────────────────────────────────────────────────────

func TestEntryRepository_Append(t *testing.T) {
	e := testEntry()

	tests := []struct {
		name    string
		result  error
		wantErr error
	}{
		{name: "inserted"},
		{
			name:    "duplicate uuid",
			result:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			wantErr: vault.ErrDuplicateUUID,
		},
		{name: "driver failure", result: errors.New("readonly database"), wantErr: ErrExecutingStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)
			exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entries (uuid,grp,title,username,payload) VALUES (?,?,?,?,?)")).
				WithArgs(e.UUID.String(), "Work", "Mail", "john", payloadOf(t, e))
			if tt.result != nil {
				exp.WillReturnError(tt.result)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err := repo.Append(context.Background(), e)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEntryRepository_Update(t *testing.T) {
	e := testEntry()
	e.Type = models.EntryAliasBase

	t.Run("updated", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE entries SET grp = ?, payload = ?, title = ?, username = ? WHERE uuid = ?")).
			WithArgs("Work", payloadOf(t, e), "Mail", "john", e.UUID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), e))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE entries")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(context.Background(), e), vault.ErrEntryNotFound)
	})
}

func TestEntryRepository_Remove(t *testing.T) {
	id := testEntry().UUID

	t.Run("removed", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM entries WHERE uuid = ?")).
			WithArgs(id.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Remove(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM entries")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Remove(context.Background(), id), vault.ErrEntryNotFound)
	})

	t.Run("driver failure", func(t *testing.T) {
		repo, mock := newTestRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM entries")).
			WillReturnError(errors.New("database is locked"))

		assert.ErrorIs(t, repo.Remove(context.Background(), id), ErrExecutingStatement)
	})
}

func TestEntryRepository_Changed(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.False(t, repo.IsChanged())
	repo.MarkChanged(true)
	assert.True(t, repo.IsChanged())
}
