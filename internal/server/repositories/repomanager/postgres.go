// Package repomanager vends the repository sets for the live (PostgreSQL)
// and demo (in-memory) backends and runs the schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/bomin1134/gb-ud-portal/internal/dbx"
	"github.com/bomin1134/gb-ud-portal/internal/server/migrations"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/fieldreports"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/history"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/notices"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/submissions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
	db *sql.DB
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Open connects to dsn through the pgx stdlib driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewPostgresRepositoryManager(db *sql.DB) (*PostgresRepositoryManager, error) {
	return &PostgresRepositoryManager{db: db}, nil
}

func bind(db dbx.DBTX) Repositories {
	return Repositories{
		Submissions:  submissions.NewPostgresRepository(db),
		History:      history.NewPostgresRepository(db),
		Notices:      notices.NewPostgresRepository(db),
		FieldReports: fieldreports.NewPostgresRepository(db),
	}
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Repos() Repositories {
	return bind(m.db)
}

func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, bind(tx))
	})
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
