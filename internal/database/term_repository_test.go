package database

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabot/internal/config"
)

func setupSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := Connect(context.Background(), config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, repo *TermRepository, lang string, pairs ...[2]string) {
	t.Helper()
	for _, p := range pairs {
		require.NoError(t, repo.Insert(context.Background(), p[0], p[1], lang))
	}
}

func TestNewTermRepository_PlaceholderFormat(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{driver: "sqlite3", want: "SELECT word FROM terms WHERE language = ? AND word = ?"},
		{driver: "postgres", want: "SELECT word FROM terms WHERE language = $1 AND word = $2"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			// Open only registers the pool, nothing is dialed
			db, err := sqlx.Open(tt.driver, "")
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })

			repo := NewTermRepository(db)
			query, args, err := repo.sb.Select("word").
				From("terms").
				Where(sq.Eq{"language": "eng"}).
				Where(sq.Eq{"word": "book"}).
				ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, []interface{}{"eng", "book"}, args)
		})
	}
}

func TestTermRepository_RecentTerms(t *testing.T) {
	repo := NewTermRepository(setupSQLite(t))
	ctx := context.Background()
	seed(t, repo, "eng", [2]string{"apple", "fruit"}, [2]string{"book", "bound volume"}, [2]string{"cat", "animal"})
	seed(t, repo, "ru", [2]string{"кот", "cat"})

	terms, err := repo.RecentTerms(ctx, 2, "eng")
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "cat", terms[0].Word)
	assert.Equal(t, "book", terms[1].Word)
	assert.Equal(t, "eng", terms[0].Language)
	assert.False(t, terms[0].CreatedAt.IsZero())
}

func TestTermRepository_RandomTerms(t *testing.T) {
	repo := NewTermRepository(setupSQLite(t))
	ctx := context.Background()
	seed(t, repo, "eng", [2]string{"apple", "fruit"}, [2]string{"book", "bound volume"}, [2]string{"cat", "animal"})

	terms, err := repo.RandomTerms(ctx, 10, "eng")
	require.NoError(t, err)
	assert.Len(t, terms, 3)

	terms, err = repo.RandomTerms(ctx, 2, "eng")
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.NotEqual(t, terms[0].ID, terms[1].ID)

	terms, err = repo.RandomTerms(ctx, 1, "ru")
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestTermRepository_DefinitionsByPrefix(t *testing.T) {
	repo := NewTermRepository(setupSQLite(t))
	ctx := context.Background()
	seed(t, repo, "eng",
		[2]string{"book", "bound volume"},
		[2]string{"book", "to reserve"},
		[2]string{"boot", "footwear"},
		[2]string{"abook", "never matched"},
	)

	defs, err := repo.DefinitionsByPrefix(ctx, "BOOK", "eng")
	require.NoError(t, err)
	assert.Equal(t, []string{"bound volume", "to reserve"}, defs)

	defs, err = repo.DefinitionsByPrefix(ctx, "bo", "eng")
	require.NoError(t, err)
	assert.Len(t, defs, 3)

	defs, err = repo.DefinitionsByPrefix(ctx, "%", "eng")
	require.NoError(t, err)
	assert.Empty(t, defs)

	defs, err = repo.DefinitionsByPrefix(ctx, "book", "ru")
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestTermRepository_InsertDuplicateIsNoop(t *testing.T) {
	repo := NewTermRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, "book", "bound volume", "eng"))
	require.NoError(t, repo.Insert(ctx, "book", "bound volume", "eng"))

	terms, err := repo.RandomTerms(ctx, 10, "eng")
	require.NoError(t, err)
	assert.Len(t, terms, 1)
}

func TestTermRepository_Delete(t *testing.T) {
	repo := NewTermRepository(setupSQLite(t))
	ctx := context.Background()
	seed(t, repo, "eng", [2]string{"book", "bound volume"}, [2]string{"book", "to reserve"}, [2]string{"cat", "animal"})
	seed(t, repo, "ru", [2]string{"book", "книга"})

	require.NoError(t, repo.Delete(ctx, "book", "eng"))
	require.NoError(t, repo.Delete(ctx, "zzz", "eng"))

	defs, err := repo.DefinitionsByPrefix(ctx, "book", "eng")
	require.NoError(t, err)
	assert.Empty(t, defs)

	defs, err = repo.DefinitionsByPrefix(ctx, "book", "ru")
	require.NoError(t, err)
	assert.Equal(t, []string{"книга"}, defs)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, Migrate(context.Background(), db))
}
