package fieldreports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bomin1134/gb-ud-portal/internal/attachments"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listColumns = []string{"id", "user_id", "branch_id", "category", "item_name", "latitude", "longitude",
	"address", "measurements", "memo", "photos", "created_at"}

func TestPostgresRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO field_reports .* RETURNING id, created_at`).
		WithArgs("gb003", 3, "ramp", "경사로 기울기", 35.87, 128.6, "대구 중구", `{"length":"120"}`, "",
			`[{"name":"a.jpg","path":"gb003/field/x.jpg"}]`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), at))

	fr := &models.FieldReport{
		UserID: "gb003", BranchID: 3, Category: "ramp", ItemName: "경사로 기울기",
		Latitude: 35.87, Longitude: 128.6, Address: "대구 중구",
		Measurements: map[string]string{"length": "120"},
		Photos:       []attachments.Ref{{Name: "a.jpg", Path: "gb003/field/x.jpg"}},
	}
	require.NoError(t, NewPostgresRepository(db).Create(context.Background(), fr))
	assert.Equal(t, int64(9), fr.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO field_reports`).WillReturnError(errors.New("db is down"))

	err = NewPostgresRepository(db).Create(context.Background(), &models.FieldReport{})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db is down`, err.Error())
}

func TestPostgresRepository_ListByBranch(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM field_reports\s+WHERE branch_id = \$1\s+ORDER BY created_at DESC, id DESC\s+LIMIT \$2`).
		WithArgs(3, 100).
		WillReturnRows(sqlmock.NewRows(listColumns).
			AddRow(int64(2), "gb003", 3, "toilet", "문 폭", 35.1, 128.1, "", []byte(`{"width":"80"}`), "memo", []byte(`[]`), at))

	got, err := NewPostgresRepository(db).ListByBranch(context.Background(), 3, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]string{"width": "80"}, got[0].Measurements)
	assert.Empty(t, got[0].Photos)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListByBranchBadMeasurements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows(listColumns).
			AddRow(int64(2), "gb003", 3, "toilet", "문 폭", 35.1, 128.1, "", []byte(`not json`), "", []byte(`[]`), time.Now()))

	_, err = NewPostgresRepository(db).ListByBranch(context.Background(), 3, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode measurements of report 2")
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	m := map[string]string{"width": "80"}
	require.NoError(t, repo.Create(ctx, &models.FieldReport{BranchID: 1, ItemName: "a", Measurements: m}))
	require.NoError(t, repo.Create(ctx, &models.FieldReport{BranchID: 2, ItemName: "b"}))
	require.NoError(t, repo.Create(ctx, &models.FieldReport{BranchID: 1, ItemName: "c"}))
	m["width"] = "changed"

	got, err := repo.ListByBranch(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ItemName)
	assert.Equal(t, "80", got[1].Measurements["width"])
	assert.NotNil(t, got[0].Measurements)
}
