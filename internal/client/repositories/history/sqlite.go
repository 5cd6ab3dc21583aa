package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/IndraPur1/ChatApp/internal/client/models"
	"github.com/IndraPur1/ChatApp/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, author, kind, body, image_data, created_at
		FROM history ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var result []models.Message
	for rows.Next() {
		var m models.Message
		var createdAt sql.NullInt64
		if err := rows.Scan(&m.ID, &m.Author, &m.Kind, &m.Body, &m.ImageData, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if createdAt.Valid {
			t := time.UnixMilli(createdAt.Int64).UTC()
			m.CreatedAt = &t
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	return result, nil
}

// Replace deletes the previous snapshot and inserts msgs in order, in a
// single transaction, so no residue from an earlier snapshot survives.
func (r *SQLiteRepository) Replace(ctx context.Context, msgs []models.Message) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}

		for n, m := range msgs {
			var createdAt sql.NullInt64
			if m.CreatedAt != nil {
				createdAt = sql.NullInt64{Int64: m.CreatedAt.UnixMilli(), Valid: true}
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO history (position, id, author, kind, body, image_data, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, n, m.ID, m.Author, string(m.Kind), m.Body, m.ImageData, createdAt)
			if err != nil {
				return fmt.Errorf("failed to insert history row: %w", err)
			}
		}
		return nil
	})
}
