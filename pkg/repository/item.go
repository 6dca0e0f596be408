package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/newsnexus/pkg/domain"
)

// MaxItemsStored caps the cached list, items past it are dropped
const MaxItemsStored = 300

// ItemRepository keeps the item list of the last aggregation run
type ItemRepository struct {
	db *sqlx.DB
}

// ItemFilter selects cached items. Empty category or All matches everything,
// query is a case-insensitive substring over title and summary.
type ItemFilter struct {
	Category domain.Category
	Source   domain.SourceType
	Query    string
	Limit    int
	Offset   int
}

// itemSQL is the database row of a cached item
type itemSQL struct {
	Position    int           `db:"position"`
	ID          string        `db:"id"`
	Title       string        `db:"title"`
	URL         string        `db:"url"`
	Summary     string        `db:"summary"`
	Source      string        `db:"source"`
	SourceLabel string        `db:"source_label"`
	Category    string        `db:"category"`
	Timestamp   int64         `db:"timestamp"`
	Author      string        `db:"author"`
	Score       sql.NullInt64 `db:"score"`
	AIAnalysis  string        `db:"ai_analysis"`
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ReplaceItems swaps the cached list with items in one transaction, order is kept
// and only the first MaxItemsStored items are written
func (r *ItemRepository) ReplaceItems(ctx context.Context, items []domain.NewsItem) error {
	if len(items) > MaxItemsStored {
		items = items[:MaxItemsStored]
	}
	query := `
		INSERT INTO items (
			position, id, title, url, summary, source, source_label,
			category, timestamp, author, score, ai_analysis
		) VALUES (
			:position, :id, :title, :url, :summary, :source, :source_label,
			:category, :timestamp, :author, :score, :ai_analysis
		)
	`
	return withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // no-op after commit

		if _, err := tx.ExecContext(ctx, "DELETE FROM items"); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		stmt, err := tx.PrepareNamedContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, item := range items {
			if _, err := stmt.ExecContext(ctx, toSQL(i, item)); err != nil {
				return fmt.Errorf("insert item %s: %w", item.ID, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit items: %w", err)
		}
		return nil
	})
}

// GetItems returns cached items matching the filter in cache order
func (r *ItemRepository) GetItems(ctx context.Context, f ItemFilter) ([]domain.NewsItem, error) {
	var where []string
	var args []any
	if f.Category != "" && f.Category != domain.CategoryAll {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, string(f.Source))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		// LIKE is case-insensitive for ASCII in SQLite
		pattern := "%" + escapeLike(q) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	query := "SELECT * FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY position"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	var rows []itemSQL
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	res := make([]domain.NewsItem, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res, nil
}

// Count returns the number of cached items
func (r *ItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM items"); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func toSQL(pos int, item domain.NewsItem) itemSQL {
	res := itemSQL{
		Position:    pos,
		ID:          item.ID,
		Title:       item.Title,
		URL:         item.URL,
		Summary:     item.Summary,
		Source:      string(item.Source),
		SourceLabel: item.SourceLabel,
		Category:    string(item.Category),
		Timestamp:   item.Timestamp,
		Author:      item.Author,
		AIAnalysis:  item.AIAnalysis,
	}
	if item.Score != nil {
		res.Score = sql.NullInt64{Int64: int64(*item.Score), Valid: true}
	}
	return res
}

func (s itemSQL) toDomain() domain.NewsItem {
	res := domain.NewsItem{
		ID:          s.ID,
		Title:       s.Title,
		URL:         s.URL,
		Summary:     s.Summary,
		Source:      domain.SourceType(s.Source),
		SourceLabel: s.SourceLabel,
		Category:    domain.Category(s.Category),
		Timestamp:   s.Timestamp,
		Author:      s.Author,
		AIAnalysis:  s.AIAnalysis,
	}
	if s.Score.Valid {
		res.Score = domain.IntPtr(int(s.Score.Int64))
	}
	return res
}

// escapeLike escapes LIKE wildcards so the query matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
