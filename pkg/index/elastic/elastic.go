// Package elastic implements index.Client on top of an Elasticsearch
// completion suggester. The suggest index and its completion mapping are
// owned by whoever runs the cluster; this package only appends and reads.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/index"
	"github.com/charmbracelet/log"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Config holds the connection settings.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	// Transport overrides the HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

// ResponseError is an HTTP error status returned by the cluster.
type ResponseError struct {
	Status int
	Body   string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("elasticsearch: status %d: %s", e.Status, e.Body)
}

// NewClient builds an Elasticsearch client. It does not contact the cluster.
func NewClient(cfg Config) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
		// retries belong to the caller
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return es, nil
}

// Decode checks the response status and unmarshals the body into v.
// It always closes the body.
func Decode(res *esapi.Response, v any) error {
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &ResponseError{Status: res.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Index is a completion index stored in one Elasticsearch index.
type Index struct {
	es   *elasticsearch.Client
	name string
	log  *log.Logger
}

var _ index.Client = (*Index)(nil)

// New returns an index client for the named index.
func New(es *elasticsearch.Client, name string) *Index {
	return &Index{es: es, name: name, log: logger.New("elastic")}
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error,omitempty"`
	} `json:"items"`
}

// AddDocuments sends every entry in a single _bulk request. Items the
// cluster refuses are logged and left out of the accepted count. An empty
// batch is accepted without a request, since _bulk rejects empty bodies.
func (i *Index) AddDocuments(ctx context.Context, entries []index.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, ctx.Err()
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, e := range entries {
		body.WriteString(`{"index":{}}` + "\n")
		if err := enc.Encode(e); err != nil {
			return 0, fmt.Errorf("encode entry %q: %w", e.Suggest, err)
		}
	}

	res, err := i.es.Bulk(&body,
		i.es.Bulk.WithContext(ctx),
		i.es.Bulk.WithIndex(i.name),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk request: %w", err)
	}

	var br bulkResponse
	if err := Decode(res, &br); err != nil {
		return 0, fmt.Errorf("bulk request: %w", err)
	}

	accepted := 0
	for _, item := range br.Items {
		for action, result := range item {
			if result.Status >= 200 && result.Status < 300 {
				accepted++
				continue
			}
			i.log.Warn("bulk item rejected", "action", action, "status", result.Status, "error", string(result.Error))
		}
	}
	return accepted, nil
}

// Search runs a completion suggester query.
func (i *Index) Search(ctx context.Context, q index.CompletionQuery) (*index.SearchResult, error) {
	body, err := json.Marshal(map[string]any{
		"suggest": map[string]any{
			q.Name: map[string]any{
				"prefix": q.Prefix,
				"completion": map[string]any{
					"field": q.Field,
					"size":  q.Size,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.name),
		i.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	var result index.SearchResult
	if err := Decode(res, &result); err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	return &result, nil
}
