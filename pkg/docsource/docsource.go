// Package docsource defines the paginated, read-only document source the
// keyword extractor walks, and the closed set of result variants a page can
// hold.
package docsource

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TypeField is the reserved discriminator field. It never carries content.
const TypeField = "type"

// ErrPageOutOfRange is returned by Page for n < 1. Sources that can count
// cheaply also return it for n > PageCount; the others answer an empty page.
var ErrPageOutOfRange = errors.New("page out of range")

// Pager is a paginated document source. Pages are numbered from 1.
//
// Page(n) answers for the page the original pager reached through
// setPage(n) followed by currentPageResults(); keeping it stateless lets
// independent pages be fetched concurrently.
type Pager interface {
	PageCount(ctx context.Context) (int, error)
	Page(ctx context.Context, n int) ([]Result, error)
}

// Result is one entry of a page. The set of variants is closed: HybridHit,
// PlainHit and Other.
type Result interface {
	result()
}

// HybridHit carries the raw field map of the original document.
// A nil value stands for an absent field.
type HybridHit struct {
	ID     string
	Source map[string]any
}

// PlainHit only references a document.
type PlainHit struct {
	ID string
}

// Other wraps anything a source yields that is neither hit kind.
type Other struct {
	Value any
}

func (HybridHit) result() {}
func (PlainHit) result()  {}
func (Other) result()     {}

// FieldText renders a raw field value as text. Absent values and booleans
// are empty, lists are joined with a space and other scalars are formatted.
func FieldText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, " ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := FieldText(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case bool:
		return ""
	case map[string]any:
		// nested objects are not content
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// PageCount returns how many pages of pageSize are needed for total items.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// CheckPage validates a 1-based page number against a page count.
func CheckPage(n, count int) error {
	if n < 1 || n > count {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, count)
	}
	return nil
}

// Slice is an in-memory Pager over fixed results, used for fixtures and tests.
type Slice struct {
	Results  []Result
	PageSize int
}

// PageCount implements Pager.
func (s *Slice) PageCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return PageCount(len(s.Results), s.size()), nil
}

// Page implements Pager.
func (s *Slice) Page(ctx context.Context, n int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := s.size()
	if err := CheckPage(n, PageCount(len(s.Results), size)); err != nil {
		return nil, err
	}
	start := (n - 1) * size
	end := min(start+size, len(s.Results))
	return s.Results[start:end], nil
}

func (s *Slice) size() int {
	if s.PageSize <= 0 {
		return 10
	}
	return s.PageSize
}
