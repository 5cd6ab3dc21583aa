package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/IndraPur1/ChatApp/internal/client/migrations"
	"github.com/IndraPur1/ChatApp/internal/client/repositories/credentials"
	"github.com/IndraPur1/ChatApp/internal/client/repositories/history"
)

// Repositories groups the local cache repositories backed by one database.
type Repositories struct {
	Credentials credentials.Repository
	History     history.Repository
	DB          *sql.DB
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local SQLite database at dsn, migrates the schema
// and returns the repositories bound to it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Credentials: credentials.NewSQLiteRepository(db),
		History:     history.NewSQLiteRepository(db),
		DB:          db,
	}, nil
}
