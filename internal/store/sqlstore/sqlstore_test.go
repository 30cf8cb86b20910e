package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/store"
	"livetsstemme/internal/store/storetest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "")
	assert.Error(t, err)
}

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(sqlx.NewDb(db, DriverPostgres)), mock
}

func TestPostgresPlaceholders(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM stories WHERE id = $1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"id":"s1","userId":"u1","title":"Sjøreisen","tags":[]}`))

	got, err := s.GetStory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Sjøreisen", got.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStoryNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM stories WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	_, err := s.GetStory(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveStoryWrapsDriverErrors(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("connection reset")

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO stories`)).WillReturnError(boom)

	st, err := decode[story.Story](`{"id":"s1","userId":"u1","title":"x"}`)
	require.NoError(t, err)
	err = s.SaveStory(context.Background(), st)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestPurgeSessionsReportsRows(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE expires_at <= $1`)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.PurgeSessions(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
