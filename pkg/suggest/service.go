package suggest

import (
	"context"
	"errors"
	"fmt"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/index"
	"github.com/charmbracelet/log"
)

const (
	// SuggesterName names the completion suggester in queries and responses.
	SuggesterName = "completion"
	// SuggestField is the completion field of keyword records.
	SuggestField = "suggest"
	// MaxSuggestions bounds every result.
	MaxSuggestions = 5
)

// ErrUnavailable reports that the completion index could not answer.
var ErrUnavailable = errors.New("suggestion service unavailable")

// Service answers prefix queries against the completion index. It keeps no
// state besides the client and is safe for concurrent use.
type Service struct {
	client index.Client
	log    *log.Logger
}

var _ Suggester = (*Service)(nil)

// NewService creates a query service.
func NewService(client index.Client) *Service {
	return &Service{client: client, log: logger.New("suggest")}
}

// Query builds the completion query for a raw prefix.
func Query(q string) index.CompletionQuery {
	return index.CompletionQuery{
		Name:   SuggesterName,
		Field:  SuggestField,
		Prefix: EscapeTerm(q),
		Size:   MaxSuggestions,
	}
}

// Suggestions implements Suggester. The query is sent even for an empty q.
// Backend failures are wrapped in ErrUnavailable; a context deadline stays
// visible through errors.Is.
func (s *Service) Suggestions(ctx context.Context, q string) ([]string, error) {
	res, err := s.client.Search(ctx, Query(q))
	if err != nil {
		s.log.Debug("completion query failed", "q", q, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return Options(res), nil
}

// Options extracts the option texts of the first suggester block, capped at
// MaxSuggestions. Missing sections yield an empty, non-nil slice.
func Options(res *index.SearchResult) []string {
	out := []string{}
	if res == nil {
		return out
	}
	entries := res.Suggest[SuggesterName]
	if len(entries) == 0 {
		return out
	}
	for _, opt := range entries[0].Options {
		if len(out) == MaxSuggestions {
			break
		}
		out = append(out, opt.Text)
	}
	return out
}
