package main

import (
	"fmt"
	"path/filepath"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/internal/utils"
	"github.com/bastiangx/suggestd/pkg/config"
	"github.com/bastiangx/suggestd/pkg/docsource"
	"github.com/bastiangx/suggestd/pkg/docsource/article"
	"github.com/bastiangx/suggestd/pkg/docsource/finder"
	"github.com/bastiangx/suggestd/pkg/index"
	"github.com/bastiangx/suggestd/pkg/index/elastic"
	"github.com/bastiangx/suggestd/pkg/index/local"
	"github.com/bastiangx/suggestd/pkg/keyword"
	"github.com/bastiangx/suggestd/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/elastic/go-elasticsearch/v8"
	"golang.org/x/text/language"
)

// app carries what every subcommand needs: the loaded config and an open
// completion index.
type app struct {
	cfg     *config.Config
	cfgPath string
	client  index.Client
	es      *elasticsearch.Client
	closers []func() error
}

// setup loads the config, applies the log level and opens the index.
func setup() (*app, error) {
	cfg, path, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger.SetLevel(cfg.Log.Level)
	if debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	}
	log.Debugf("Using config file: (%s)", path)

	a := &app{cfg: cfg, cfgPath: path}
	if err := a.openIndex(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openIndex() error {
	switch a.cfg.Index.Backend {
	case config.BackendLocal:
		path := utils.ExpandPath(a.cfg.Index.LocalPath)
		if path != local.InMemory {
			if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
				return fmt.Errorf("create index dir: %w", err)
			}
		}
		idx, err := local.Open(path)
		if err != nil {
			return err
		}
		a.client = idx
		a.closers = append(a.closers, idx.Close)
		log.Debugf("Using local index at: %s", path)
	case config.BackendElastic:
		es, err := a.elastic()
		if err != nil {
			return err
		}
		a.client = elastic.New(es, a.cfg.Index.SuggestIndex)
		log.Debug("Using elasticsearch index", "index", a.cfg.Index.SuggestIndex, "addresses", a.cfg.Elastic.Addresses)
	default:
		return fmt.Errorf("unknown index backend %q", a.cfg.Index.Backend)
	}
	return nil
}

// elastic returns the shared cluster client, creating it on first use.
func (a *app) elastic() (*elasticsearch.Client, error) {
	if a.es != nil {
		return a.es, nil
	}
	es, err := elastic.NewClient(elastic.Config{
		Addresses: a.cfg.Elastic.Addresses,
		Username:  a.cfg.Elastic.Username,
		Password:  a.cfg.Elastic.Password,
	})
	if err != nil {
		return nil, err
	}
	a.es = es
	return es, nil
}

// pager opens the configured document source.
func (a *app) pager() (docsource.Pager, func(), error) {
	src := a.cfg.Source
	switch src.Kind {
	case config.SourceArticle:
		s, err := article.Open(utils.ExpandPath(src.DBPath), article.Options{
			TranslationsDir: utils.ExpandPath(src.TranslationsDir),
			Locales:         src.Locales,
			PageSize:        src.PageSize,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.SourceFinder:
		es, err := a.elastic()
		if err != nil {
			return nil, nil, err
		}
		return finder.New(es, a.cfg.Elastic.ArticlesIndex, src.PageSize), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

func (a *app) extractor() *keyword.Extractor {
	tag, err := language.Parse(a.cfg.Extract.Locale)
	if err != nil {
		log.Warnf("Unknown extract locale %q, using fr", a.cfg.Extract.Locale)
		tag = language.French
	}
	return keyword.NewExtractor(keyword.Options{
		Locale:      tag,
		Concurrency: a.cfg.Extract.Concurrency,
	})
}

func (a *app) service() suggest.Suggester {
	return suggest.NewService(a.client)
}

// Close releases everything setup opened.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warnf("Closing: %v", err)
		}
	}
}
