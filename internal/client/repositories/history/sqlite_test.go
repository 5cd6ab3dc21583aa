package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IndraPur1/ChatApp/internal/client/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE history (
  position   INTEGER PRIMARY KEY,
  id         TEXT NOT NULL,
  author     TEXT NOT NULL,
  kind       TEXT NOT NULL,
  body       TEXT NOT NULL DEFAULT '',
  image_data TEXT NOT NULL DEFAULT '',
  created_at INTEGER
);
`)
	require.NoError(t, err)
	return db
}

func ts(sec int64) *time.Time {
	t := time.Unix(sec, 0).UTC()
	return &t
}

func TestLoad_Empty(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	msgs, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestReplaceLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	in := []models.Message{
		{ID: "m1", Author: "Ana", Kind: models.KindText, Body: "hi", CreatedAt: ts(10)},
		{ID: "m2", Author: "Ben", Kind: models.KindImage, ImageData: "data:image/png;base64,AAAA", CreatedAt: ts(20)},
		{ID: "m3", Author: "Ana", Kind: models.KindText, Body: "pending"},
	}
	require.NoError(t, repo.Replace(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.Nil(t, out[2].CreatedAt)
}

func TestReplace_NoResidue(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	s1 := []models.Message{
		{ID: "m1", Author: "Ana", Kind: models.KindText, Body: "one", CreatedAt: ts(10)},
		{ID: "m2", Author: "Ana", Kind: models.KindText, Body: "two", CreatedAt: ts(20)},
	}
	require.NoError(t, repo.Replace(ctx, s1))

	s2 := []models.Message{
		{ID: "m3", Author: "Ben", Kind: models.KindText, Body: "three", CreatedAt: ts(30)},
	}
	require.NoError(t, repo.Replace(ctx, s2))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, s2, out)
}

func TestReplace_WithEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Replace(ctx, []models.Message{{ID: "m1", Author: "Ana", Kind: models.KindText, Body: "x"}}))
	require.NoError(t, repo.Replace(ctx, nil))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, out)
}
