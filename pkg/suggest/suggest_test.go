package suggest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/docsource"
	"github.com/bastiangx/suggestd/pkg/index"
	"github.com/bastiangx/suggestd/pkg/index/local"
	"github.com/bastiangx/suggestd/pkg/keyword"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records calls and answers from canned values.
type fakeClient struct {
	mu       sync.Mutex
	batches  [][]index.Entry
	queries  []index.CompletionQuery
	accept   func(n int) int
	addErr   error
	result   *index.SearchResult
	searchFn func(ctx context.Context) error
}

func (f *fakeClient) AddDocuments(ctx context.Context, entries []index.Entry) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, entries)
	if f.addErr != nil {
		return 0, f.addErr
	}
	if f.accept != nil {
		return f.accept(len(entries)), nil
	}
	return len(entries), nil
}

func (f *fakeClient) Search(ctx context.Context, q index.CompletionQuery) (*index.SearchResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.searchFn != nil {
		if err := f.searchFn(ctx); err != nil {
			return nil, err
		}
	}
	return f.result, nil
}

func optionsResult(words ...string) *index.SearchResult {
	opts := make([]index.Option, len(words))
	for i, w := range words {
		opts[i] = index.Option{Text: w}
	}
	return &index.SearchResult{Suggest: map[string][]index.SuggestEntry{
		SuggesterName: {{Options: opts}},
	}}
}

func TestEscapeTerm(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"caf", "caf"},
		{"", ""},
		{"c++", `c\+\+`},
		{`a\b`, `a\\b`},
		{"a && b || c", `a \&& b \|| c`},
		{"a & b | c", "a & b | c"},
		{`title:"x"`, `title\:\"x\"`},
		{"(a)[b]{c}", `\(a\)\[b\]\{c\}`},
		{"^~*?!/-", `\^\~\*\?\!\/\-`},
		{"<script>", "script"},
		{"café", "café"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeTerm(tt.in), tt.in)
	}
}

func TestQueryShape(t *testing.T) {
	assert.Equal(t, index.CompletionQuery{Name: "completion", Field: "suggest", Prefix: `c\+\+`, Size: 5}, Query("c++"))
}

func TestSuggestionsEmptyPrefixIsStillQueried(t *testing.T) {
	client := &fakeClient{result: optionsResult("anything")}
	got, err := NewService(client).Suggestions(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"anything"}, got)
	require.Len(t, client.queries, 1)
	assert.Equal(t, "", client.queries[0].Prefix)
}

func TestSuggestionsCappedAtFive(t *testing.T) {
	client := &fakeClient{result: optionsResult("a1", "a2", "a3", "a4", "a5", "a6", "a7")}
	got, err := NewService(client).Suggestions(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3", "a4", "a5"}, got)
}

func TestSuggestionsMissingSections(t *testing.T) {
	results := []*index.SearchResult{
		nil,
		{},
		{Suggest: map[string][]index.SuggestEntry{"other": {{Options: []index.Option{{Text: "x"}}}}}},
		{Suggest: map[string][]index.SuggestEntry{SuggesterName: {}}},
		{Suggest: map[string][]index.SuggestEntry{SuggesterName: {{}}}},
	}
	for i, res := range results {
		got, err := NewService(&fakeClient{result: res}).Suggestions(context.Background(), "x")
		require.NoError(t, err, i)
		assert.NotNil(t, got, i)
		assert.Empty(t, got, i)
	}
}

func TestSuggestionsUnavailable(t *testing.T) {
	client := &fakeClient{searchFn: func(context.Context) error { return errors.New("connection refused") }}
	_, err := NewService(client).Suggestions(context.Background(), "caf")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSuggestionsDeadline(t *testing.T) {
	client := &fakeClient{searchFn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	_, err := NewService(client).Suggestions(ctx, "caf")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSuggestionsAgainstLocalIndex(t *testing.T) {
	idx, err := local.Open(local.InMemory)
	require.NoError(t, err)
	defer idx.Close()

	report, err := NewWriter(idx).Write(context.Background(), keyword.Set{"café": {}, "cafeteria": {}, "jardin": {}})
	require.NoError(t, err)
	assert.Equal(t, Report{Attempted: 3, Accepted: 3}, report)

	got, err := NewService(idx).Suggestions(context.Background(), "caf")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"café", "cafeteria"}, got)
	assert.NotContains(t, got, "jardin")
}

func TestSuggestionsConcurrent(t *testing.T) {
	svc := NewService(&fakeClient{result: optionsResult("café")})
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Suggestions(context.Background(), fmt.Sprintf("c%d", i))
			assert.NoError(t, err)
			assert.Equal(t, []string{"café"}, got)
		}()
	}
	wg.Wait()
}

func TestWriterSingleBulkCall(t *testing.T) {
	client := &fakeClient{}
	report, err := NewWriter(client).Write(context.Background(), keyword.Set{"jardin": {}, "café": {}})
	require.NoError(t, err)
	assert.Equal(t, "attempted=2 accepted=2", report.String())
	require.Len(t, client.batches, 1)
	assert.Equal(t, []index.Entry{
		{Type: "keyword", Suggest: "café"},
		{Type: "keyword", Suggest: "jardin"},
	}, client.batches[0])
}

func TestWriterEmptySet(t *testing.T) {
	client := &fakeClient{}
	report, err := NewWriter(client).Write(context.Background(), keyword.Set{})
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
	assert.Equal(t, "attempted=0 accepted=0", report.String())
	require.Len(t, client.batches, 1)
	assert.Empty(t, client.batches[0])
}

func TestWriterPartialAcceptance(t *testing.T) {
	client := &fakeClient{accept: func(n int) int { return n - 1 }}
	report, err := NewWriter(client).Write(context.Background(), keyword.Set{"abc": {}, "def": {}, "ghi": {}})
	require.NoError(t, err)
	assert.Equal(t, Report{Attempted: 3, Accepted: 2}, report)
}

func TestWriterFailureIsNotRetried(t *testing.T) {
	client := &fakeClient{addErr: errors.New("dial tcp: connection refused")}
	report, err := NewWriter(client).Write(context.Background(), keyword.Set{"abc": {}})
	require.Error(t, err)
	assert.Equal(t, 0, report.Accepted)
	assert.Len(t, client.batches, 1)
}

func TestPopulate(t *testing.T) {
	pager := &docsource.Slice{Results: []docsource.Result{
		docsource.HybridHit{Source: map[string]any{"title": "Café du Jardin", "type": "article"}},
	}}
	extractor := keyword.NewExtractor(keyword.Options{Logger: logger.Discard()})

	client := &fakeClient{}
	report, err := Populate(context.Background(), pager, extractor, NewWriter(client))
	require.NoError(t, err)
	assert.Equal(t, Report{Attempted: 2, Accepted: 2}, report)
	assert.Equal(t, []index.Entry{index.NewEntry("café"), index.NewEntry("jardin")}, client.batches[0])
}

func TestPopulateEmptyCorpus(t *testing.T) {
	extractor := keyword.NewExtractor(keyword.Options{Logger: logger.Discard()})
	client := &fakeClient{}
	report, err := Populate(context.Background(), &docsource.Slice{}, extractor, NewWriter(client))
	require.NoError(t, err)
	assert.Equal(t, "attempted=0 accepted=0", report.String())
}

func TestPopulateWriteFailure(t *testing.T) {
	pager := &docsource.Slice{Results: []docsource.Result{
		docsource.HybridHit{Source: map[string]any{"title": "keyword"}},
	}}
	extractor := keyword.NewExtractor(keyword.Options{Logger: logger.Discard()})
	_, err := Populate(context.Background(), pager, extractor, NewWriter(&fakeClient{addErr: errors.New("boom")}))
	assert.Error(t, err)
}
