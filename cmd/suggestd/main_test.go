package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/suggestd/pkg/config"
	"github.com/bastiangx/suggestd/pkg/docsource/article"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeFixture creates an article database and a config pointing at it and
// at a local index in the same temp dir.
func writeFixture(t *testing.T) string {
	t.Helper()
	return writeFixtureWith(t, func(*config.Config) {})
}

func writeFixtureWith(t *testing.T, edit func(*config.Config)) string {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "articles.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(article.Schema)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO article (id, type, active, title_en, title_fr, headline_en, headline_fr, keyword_en, keyword_fr) VALUES
		(1, 'article', 1, 'Garden cafe', 'Café du Jardin', 'A headline', NULL, 'php', 'php'),
		(2, 'snippet', 1, 'Snippet title', 'Titre', NULL, NULL, NULL, NULL),
		(3, 'article', 0, 'Inactive', 'Inactif', NULL, NULL, NULL, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	blog := filepath.Join(dir, "translations", "blog")
	require.NoError(t, os.MkdirAll(blog, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(blog, "post_1.fr.yaml"),
		[]byte("p1: \"<p>Bonjour &amp; bienvenue</p>\"\np2: Deuxième paragraphe\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.Index.Backend = config.BackendLocal
	cfg.Index.LocalPath = filepath.Join(dir, "index", "suggest.db")
	cfg.Source.Kind = config.SourceArticle
	cfg.Source.DBPath = dbPath
	cfg.Source.TranslationsDir = filepath.Join(dir, "translations")
	cfg.Source.PageSize = 1
	cfg.Extract.Concurrency = 2
	edit(cfg)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, config.SaveConfig(cfg, path))
	return path
}

func TestPopulateThenQuery(t *testing.T) {
	cfgPath := writeFixture(t)

	out, err := run(t, "", "populate", "--config", cfgPath)
	require.NoError(t, err)
	// café jardin garden cafe headline php bonjour bienvenue deuxième
	// paragraphe snippet title titre
	assert.Equal(t, "attempted=13 accepted=13\n", out)

	out, err = run(t, "", "query", "caf", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "café")
	assert.Contains(t, out, "cafe")
	assert.NotContains(t, out, "jardin")
}

func TestQueryInteractive(t *testing.T) {
	cfgPath := writeFixture(t)
	_, err := run(t, "", "populate", "--config", cfgPath)
	require.NoError(t, err)

	out, err := run(t, "tit\njar\n", "query", "-i", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "titre")
	assert.Contains(t, out, "jardin")
}

func TestUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Index.Backend = "redis"
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.SaveConfig(cfg, path))

	_, err := run(t, "", "populate", "--config", path)
	assert.ErrorContains(t, err, `unknown index backend "redis"`)
}

func TestPopulateIndexUnreachable(t *testing.T) {
	cfgPath := writeFixtureWith(t, func(cfg *config.Config) {
		cfg.Index.Backend = config.BackendElastic
		cfg.Elastic.Addresses = []string{"http://127.0.0.1:1"}
	})

	out, err := run(t, "", "populate", "--config", cfgPath)
	require.Error(t, err)
	assert.ErrorContains(t, err, "bulk write of 13 keywords")
	assert.Empty(t, out)
}

func TestQueryFlagsDoNotLeak(t *testing.T) {
	cfgPath := writeFixture(t)
	_, err := run(t, "", "populate", "--config", cfgPath)
	require.NoError(t, err)

	_, err = run(t, "jar\n", "query", "-i", "--config", cfgPath)
	require.NoError(t, err)

	// a fresh tree: stdin is ignored without -i
	out, err := run(t, "tit\n", "query", "caf", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "café")
	assert.NotContains(t, out, "title")
	assert.NotContains(t, out, "type a prefix")
}
