package notices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO notices .* RETURNING id, created_at`).
		WithArgs("공지", "본문", "gbudc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), at))

	n := &models.Notice{Title: "공지", Body: "본문", Author: "gbudc"}
	require.NoError(t, NewPostgresRepository(db).Create(context.Background(), n))
	assert.Equal(t, int64(5), n.ID)
	assert.True(t, at.Equal(n.CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO notices`).WillReturnError(errors.New("db is down"))

	err = NewPostgresRepository(db).Create(context.Background(), &models.Notice{})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db is down`, err.Error())
}

func TestPostgresRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM notices ORDER BY created_at DESC, id DESC LIMIT \$1`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "body", "author", "created_at"}).
			AddRow(int64(2), "b", "", "gbudc", at).
			AddRow(int64(1), "a", "", "gbudc", at.Add(-time.Hour)))

	got, err := NewPostgresRepository(db).List(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("db err"))

	_, err = NewPostgresRepository(db).List(context.Background(), 20)
	require.Error(t, err)
	assert.Regexp(t, `failed to select notices: .*db err`, err.Error())
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.Notice{Title: title, Author: "gbudc"}))
	}

	got, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Title)
	assert.Equal(t, "second", got[1].Title)
	assert.Equal(t, int64(3), got[0].ID)
}
