// Package index defines the completion index contract shared by the
// suggestion writer and query service, and the records they exchange.
package index

import "context"

// KeywordType is the record type of every suggestion entry.
const KeywordType = "keyword"

// Entry is one suggestion record as stored by the backend.
type Entry struct {
	Type    string `json:"type"`
	Suggest string `json:"suggest"`
}

// NewEntry builds the keyword record for kw.
func NewEntry(kw string) Entry {
	return Entry{Type: KeywordType, Suggest: kw}
}

// CompletionQuery asks the named suggester for completions of Prefix on
// Field. Prefix is passed to the backend as is.
type CompletionQuery struct {
	Name   string
	Field  string
	Prefix string
	Size   int
}

// Option is one ranked completion.
type Option struct {
	Text  string  `json:"text"`
	Score float64 `json:"_score"`
}

// SuggestEntry is the per-input block of a suggester response.
type SuggestEntry struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// SearchResult is the suggest section of a search response, keyed by
// suggester name.
type SearchResult struct {
	Suggest map[string][]SuggestEntry `json:"suggest"`
}

// Client is a completion index. Implementations never create or drop the
// remote index; they only append to and read from it.
type Client interface {
	// AddDocuments submits all entries in one bulk call and returns how many
	// the backend accepted.
	AddDocuments(ctx context.Context, entries []Entry) (int, error)
	// Search runs a completion query.
	Search(ctx context.Context, q CompletionQuery) (*SearchResult, error)
}
