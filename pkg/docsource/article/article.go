/*
Package article serves active articles and snippets as hybrid hits.

Rows come from a SQLite article repository. For every configured locale a hit
carries keyword_<loc>, title_<loc> and headline_<loc>; rows of type "article"
also get content_<loc>, merged from the translation file
<translations>/blog/post_<id>.<loc>.yaml whose values are stripped of markup,
entity-decoded and joined with spaces. Snippets have no body file.
*/
package article

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/docsource"
	"github.com/bastiangx/suggestd/pkg/keyword"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// Article types stored in the type column.
const (
	TypeArticle = "article"
	TypeSnippet = "snippet"
)

// Schema creates the article table when missing. It carries the en and fr
// columns; other locales need their own keyword_, title_ and headline_
// columns.
const Schema = `
CREATE TABLE IF NOT EXISTS article (
	id          INTEGER PRIMARY KEY,
	type        TEXT NOT NULL DEFAULT 'article',
	active      INTEGER NOT NULL DEFAULT 1,
	title_en    TEXT,
	title_fr    TEXT,
	headline_en TEXT,
	headline_fr TEXT,
	keyword_en  TEXT,
	keyword_fr  TEXT
);
`

// Options configure a Source.
type Options struct {
	TranslationsDir string
	Locales         []string
	PageSize        int
}

// Source pages through active articles.
type Source struct {
	db      *sql.DB
	opts    Options
	log     *log.Logger
	columns []string
}

var _ docsource.Pager = (*Source)(nil)

// Open opens the article database at path and ensures the schema exists.
func Open(path string, opts Options) (*Source, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return New(db, opts)
}

// New wraps an open database.
func New(db *sql.DB, opts Options) (*Source, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if len(opts.Locales) == 0 {
		opts.Locales = []string{"en", "fr"}
	}
	var columns []string
	for _, loc := range opts.Locales {
		if !validLocale(loc) {
			return nil, fmt.Errorf("invalid locale %q", loc)
		}
		columns = append(columns, "keyword_"+loc, "title_"+loc, "headline_"+loc)
	}
	return &Source{db: db, opts: opts, log: logger.New("articles"), columns: columns}, nil
}

// locales end up in column names, so only short ascii codes are allowed
func validLocale(loc string) bool {
	if len(loc) < 2 || len(loc) > 5 {
		return false
	}
	for _, r := range loc {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

// Close closes the database.
func (s *Source) Close() error {
	return s.db.Close()
}

// PageCount implements docsource.Pager.
func (s *Source) PageCount(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article WHERE active = 1`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return docsource.PageCount(total, s.opts.PageSize), nil
}

// Page implements docsource.Pager.
func (s *Source) Page(ctx context.Context, n int) ([]docsource.Result, error) {
	count, err := s.PageCount(ctx)
	if err != nil {
		return nil, err
	}
	if err := docsource.CheckPage(n, count); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, type, %s FROM article WHERE active = 1 ORDER BY id LIMIT ? OFFSET ?`,
		strings.Join(s.columns, ", "))
	rows, err := s.db.QueryContext(ctx, query, s.opts.PageSize, (n-1)*s.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var results []docsource.Result
	for rows.Next() {
		var (
			id    int64
			typ   string
			texts = make([]sql.NullString, len(s.columns))
		)
		dest := []any{&id, &typ}
		for i := range texts {
			dest = append(dest, &texts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}

		source := map[string]any{docsource.TypeField: typ}
		for i, col := range s.columns {
			if texts[i].Valid {
				source[col] = texts[i].String
			} else {
				source[col] = nil
			}
		}
		if typ == TypeArticle {
			for _, loc := range s.opts.Locales {
				source["content_"+loc] = s.content(id, loc)
			}
		}
		results = append(results, docsource.HybridHit{ID: fmt.Sprint(id), Source: source})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	return results, nil
}

// content returns the merged body of an article, or nil when its
// translation file is missing or unreadable.
func (s *Source) content(id int64, loc string) any {
	path := filepath.Join(s.opts.TranslationsDir, "blog", fmt.Sprintf("post_%d.%s.yaml", id, loc))
	text, err := LoadContent(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("skipping translation file", "path", path, "err", err)
		}
		return nil
	}
	return text
}

// LoadContent reads a translation file and joins its values, in key order,
// into one markup-free text.
func LoadContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var messages map[string]any
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}

	keys := make([]string, 0, len(messages))
	for k := range messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, keyword.StripTags(docsource.FieldText(messages[k])))
	}
	return strings.Join(parts, " "), nil
}
