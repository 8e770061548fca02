// Package finder pages through every document of an Elasticsearch index with
// a match-all query, returning each hit with its raw _source.
package finder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/bastiangx/suggestd/pkg/docsource"
	"github.com/bastiangx/suggestd/pkg/index/elastic"
	"github.com/elastic/go-elasticsearch/v8"
)

// Finder is a docsource.Pager over one index.
type Finder struct {
	es       *elasticsearch.Client
	index    string
	pageSize int
}

var _ docsource.Pager = (*Finder)(nil)

// New returns a Finder over the named index.
func New(es *elasticsearch.Client, index string, pageSize int) *Finder {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Finder{es: es, index: index, pageSize: pageSize}
}

// PageCount implements docsource.Pager.
func (f *Finder) PageCount(ctx context.Context) (int, error) {
	res, err := f.es.Count(
		f.es.Count.WithContext(ctx),
		f.es.Count.WithIndex(f.index),
	)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", f.index, err)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := elastic.Decode(res, &body); err != nil {
		return 0, fmt.Errorf("count %s: %w", f.index, err)
	}
	return docsource.PageCount(body.Count, f.pageSize), nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

var matchAll = []byte(`{"query":{"match_all":{}},"sort":["_doc"]}`)

// Page implements docsource.Pager. Hits stored without _source come back as
// plain hits. A page past the end is empty rather than an error, which saves
// a count request per page.
func (f *Finder) Page(ctx context.Context, n int) ([]docsource.Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", docsource.ErrPageOutOfRange, n)
	}
	res, err := f.es.Search(
		f.es.Search.WithContext(ctx),
		f.es.Search.WithIndex(f.index),
		f.es.Search.WithBody(bytes.NewReader(matchAll)),
		f.es.Search.WithFrom((n-1)*f.pageSize),
		f.es.Search.WithSize(f.pageSize),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s page %d: %w", f.index, n, err)
	}
	var body searchResponse
	if err := elastic.Decode(res, &body); err != nil {
		return nil, fmt.Errorf("search %s page %d: %w", f.index, n, err)
	}

	results := make([]docsource.Result, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		if len(h.Source) == 0 || string(h.Source) == "null" {
			results = append(results, docsource.PlainHit{ID: h.ID})
			continue
		}
		var source map[string]any
		if err := json.Unmarshal(h.Source, &source); err != nil {
			results = append(results, docsource.Other{Value: h.Source})
			continue
		}
		results = append(results, docsource.HybridHit{ID: h.ID, Source: source})
	}
	return results, nil
}
