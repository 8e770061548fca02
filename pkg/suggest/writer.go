package suggest

import (
	"context"
	"fmt"
	"sync"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/index"
	"github.com/bastiangx/suggestd/pkg/keyword"
	"github.com/charmbracelet/log"
)

// Report summarizes one bulk write.
type Report struct {
	Attempted int
	Accepted  int
}

// String renders the summary line printed by populate.
func (r Report) String() string {
	return fmt.Sprintf("attempted=%d accepted=%d", r.Attempted, r.Accepted)
}

// Writer loads a candidate set into the completion index.
//
// Entries from earlier runs are neither replaced nor removed, so running it
// twice stores a keyword twice.
type Writer struct {
	client index.Client
	// one bulk write at a time; interleaved batches cannot be reconciled
	mu  sync.Mutex
	log *log.Logger
}

// NewWriter creates a Writer.
func NewWriter(client index.Client) *Writer {
	return &Writer{client: client, log: logger.New("writer")}
}

// Entries maps a candidate set to keyword records, sorted by keyword.
func Entries(set keyword.Set) []index.Entry {
	words := set.Sorted()
	entries := make([]index.Entry, len(words))
	for i, w := range words {
		entries[i] = index.NewEntry(w)
	}
	return entries
}

// Write submits the whole set in one bulk call, even when it is empty. It
// does not retry; a failed call fails the run and nothing from it may be
// assumed indexed. Partial acceptance is reported, not treated as an error.
func (w *Writer) Write(ctx context.Context, set keyword.Set) (Report, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries := Entries(set)
	report := Report{Attempted: len(entries)}

	accepted, err := w.client.AddDocuments(ctx, entries)
	if err != nil {
		return report, fmt.Errorf("bulk write of %d keywords: %w", len(entries), err)
	}
	report.Accepted = accepted

	if accepted < report.Attempted {
		w.log.Warn("backend accepted part of the batch", "attempted", report.Attempted, "accepted", accepted)
	} else {
		w.log.Info("keywords indexed", "attempted", report.Attempted, "accepted", accepted)
	}
	return report, nil
}
