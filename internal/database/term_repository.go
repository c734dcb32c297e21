package database

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/example/vocabot/pkg/models"
)

var termColumns = []string{"id", "word", "definition", "language", "created_at"}

// likeEscaper escapes LIKE wildcards so user input is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// TermRepository handles database operations for terms
type TermRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// NewTermRepository creates a new repository instance
func NewTermRepository(db *sqlx.DB) *TermRepository {
	var format sq.PlaceholderFormat = sq.Question
	if db.DriverName() == "postgres" {
		format = sq.Dollar
	}
	return &TermRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// RandomTerms returns up to n random terms of a language
func (r *TermRepository) RandomTerms(ctx context.Context, n int, lang string) ([]models.Term, error) {
	query := r.sb.Select(termColumns...).
		From("terms").
		Where(sq.Eq{"language": lang}).
		OrderBy("RANDOM()").
		Limit(uint64(n))

	terms, err := r.selectTerms(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get random terms: %w", err)
	}
	return terms, nil
}

// RecentTerms returns up to n terms of a language, newest first
func (r *TermRepository) RecentTerms(ctx context.Context, n int, lang string) ([]models.Term, error) {
	query := r.sb.Select(termColumns...).
		From("terms").
		Where(sq.Eq{"language": lang}).
		OrderBy("id DESC").
		Limit(uint64(n))

	terms, err := r.selectTerms(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent terms: %w", err)
	}
	return terms, nil
}

// DefinitionsByPrefix returns the definitions of every word starting with
// the given prefix, ignoring case
func (r *TermRepository) DefinitionsByPrefix(ctx context.Context, word string, lang string) ([]string, error) {
	pattern := likeEscaper.Replace(strings.ToLower(word)) + "%"

	query, args, err := r.sb.Select("definition").
		From("terms").
		Where(sq.Eq{"language": lang}).
		Where(`lower(word) LIKE ? ESCAPE '\'`, pattern).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build definitions query: %w", err)
	}

	var definitions []string
	if err := r.db.SelectContext(ctx, &definitions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get definitions: %w", err)
	}
	return definitions, nil
}

// Insert stores a word/definition pair. Storing an existing pair is a no-op.
func (r *TermRepository) Insert(ctx context.Context, word, definition, lang string) error {
	query, args, err := r.sb.Insert("terms").
		Columns("word", "definition", "language").
		Values(word, definition, lang).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert term: %w", err)
	}
	return nil
}

// Delete removes every definition of a word. Deleting a missing word is a no-op.
func (r *TermRepository) Delete(ctx context.Context, word, lang string) error {
	query, args, err := r.sb.Delete("terms").
		Where(sq.Eq{"word": word, "language": lang}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete term: %w", err)
	}
	return nil
}

func (r *TermRepository) selectTerms(ctx context.Context, builder sq.SelectBuilder) ([]models.Term, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, err
	}
	return terms, nil
}
