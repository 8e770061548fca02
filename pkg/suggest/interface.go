// Package suggest is the core of the keyword pipeline: it loads candidate
// keywords into the completion index and answers prefix queries from it.
package suggest

import "context"

// Suggester answers prefix queries. Service is the production implementation;
// the servers and the CLI depend on this interface.
type Suggester interface {
	// Suggestions returns at most MaxSuggestions completions for q, in the
	// order the backend ranked them. An empty result is not an error.
	Suggestions(ctx context.Context, q string) ([]string, error)
}
