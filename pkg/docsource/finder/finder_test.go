package finder

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bastiangx/suggestd/pkg/docsource"
	"github.com/bastiangx/suggestd/pkg/index/elastic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinder(t *testing.T, handler http.HandlerFunc) *Finder {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	es, err := elastic.NewClient(elastic.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return New(es, "articles", 2)
}

func TestPageCount(t *testing.T) {
	f := newFinder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/articles/_count", r.URL.Path)
		io.WriteString(w, `{"count":5}`)
	})
	count, err := f.PageCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPageVariants(t *testing.T) {
	f := newFinder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/articles/_search", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("from"))
		assert.Equal(t, "2", r.URL.Query().Get("size"))
		io.WriteString(w, `{"hits":{"hits":[
			{"_id":"a","_source":{"title":"Café du Jardin","type":"article","headline":null}},
			{"_id":"b"},
			{"_id":"c","_source":["not","an","object"]}
		]}}`)
	})
	page, err := f.Page(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, page, 3)

	hit, ok := page[0].(docsource.HybridHit)
	require.True(t, ok)
	assert.Equal(t, "Café du Jardin", hit.Source["title"])
	assert.Contains(t, hit.Source, "headline")
	assert.Equal(t, docsource.PlainHit{ID: "b"}, page[1])
	assert.IsType(t, docsource.Other{}, page[2])
}

func TestPageError(t *testing.T) {
	f := newFinder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"index_not_found_exception"}`)
	})
	_, err := f.Page(context.Background(), 1)
	var respErr *elastic.ResponseError
	assert.ErrorAs(t, err, &respErr)
}
