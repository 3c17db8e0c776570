package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestNewPostgresRepositoryManager_ImplementsInterface(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := NewPostgresRepositoryManager(db)
	require.NoError(t, err)
	var _ RepositoryManager = m

	repos := m.Repos()
	assert.NotNil(t, repos.Submissions)
	assert.NotNil(t, repos.History)
	assert.NotNil(t, repos.Notices)
	assert.NotNil(t, repos.FieldReports)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m, _ := NewPostgresRepositoryManager(db)
	require.NoError(t, m.RunMigrations(context.Background()))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m, _ := NewPostgresRepositoryManager(db)
	assert.EqualError(t, m.RunMigrations(context.Background()), "boom")
}

func TestWithTx_CommitsBothWrites(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO submissions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO submission_events`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectCommit()

	m, _ := NewPostgresRepositoryManager(db)
	err := m.WithTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		if err := repos.Submissions.Reset(ctx, 1, "2024-03-04"); err != nil {
			return err
		}
		return repos.History.Append(ctx, &models.SubmissionEvent{BranchID: 1, WeekID: "2024-03-04", Action: models.EventDelete})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO submissions`).WillReturnError(errors.New("db is down"))
	mock.ExpectRollback()

	m, _ := NewPostgresRepositoryManager(db)
	err := m.WithTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		return repos.Submissions.Reset(ctx, 1, "2024-03-04")
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepositoryManager(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRepositoryManager()
	var _ RepositoryManager = m

	require.NoError(t, m.RunMigrations(ctx))
	err := m.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		return repos.Notices.Create(ctx, &models.Notice{Title: "hello"})
	})
	require.NoError(t, err)

	got, err := m.Repos().Notices.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Title)
	assert.NoError(t, m.Close())
}
