package keyword

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/docsource"
	"github.com/charmbracelet/log"
	"github.com/rivo/uniseg"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinLength is the largest keyword length, in user-perceived characters,
// that is still dropped.
const MinLength = 2

// Set is a candidate keyword set.
type Set map[string]struct{}

// Has reports membership.
func (s Set) Has(k string) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the keywords in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Normalize lowercases tokens for the given locale, deduplicates them and
// drops any keyword of MinLength characters or fewer.
func Normalize(tokens []string, locale language.Tag) Set {
	lower := cases.Lower(locale)
	set := make(Set, len(tokens))
	for _, tok := range tokens {
		k := lower.String(tok)
		if uniseg.GraphemeClusterCount(k) <= MinLength {
			continue
		}
		set[k] = struct{}{}
	}
	return set
}

// Options tunes an Extractor.
type Options struct {
	// Locale drives lowercasing. Defaults to French.
	Locale language.Tag
	// Concurrency bounds how many pages are fetched at once. Values below 1
	// mean sequential.
	Concurrency int
	Logger      *log.Logger
}

// Extractor builds a candidate set from a document source.
type Extractor struct {
	locale      language.Tag
	concurrency int
	log         *log.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(opts Options) *Extractor {
	e := &Extractor{
		locale:      opts.Locale,
		concurrency: opts.Concurrency,
		log:         opts.Logger,
	}
	if e.locale == language.Und {
		e.locale = language.French
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	if e.log == nil {
		e.log = logger.New("extract")
	}
	return e
}

// collector accumulates raw tokens for the whole corpus. Order does not
// matter, so it keeps them in a set from the start.
type collector struct {
	mu      sync.Mutex
	tokens  map[string]struct{}
	hits    int
	skipped int
}

func newCollector() *collector {
	return &collector{tokens: make(map[string]struct{})}
}

func (c *collector) add(results []docsource.Result) {
	var words []string
	hits, skipped := 0, 0
	for _, r := range results {
		hit, ok := r.(docsource.HybridHit)
		if !ok {
			skipped++
			continue
		}
		hits++
		words = append(words, documentTokens(hit)...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range words {
		c.tokens[w] = struct{}{}
	}
	c.hits += hits
	c.skipped += skipped
}

func (c *collector) list() []string {
	out := make([]string, 0, len(c.tokens))
	for t := range c.tokens {
		out = append(out, t)
	}
	return out
}

// documentTokens returns the words of every field except the discriminator.
func documentTokens(hit docsource.HybridHit) []string {
	var words []string
	for field, value := range hit.Source {
		if field == docsource.TypeField {
			continue
		}
		words = append(words, Tokenize(StripTags(docsource.FieldText(value)))...)
	}
	return words
}

// ExtractDocuments is the pure corpus to candidate set step.
func (e *Extractor) ExtractDocuments(results []docsource.Result) Set {
	c := newCollector()
	c.add(results)
	return Normalize(c.list(), e.locale)
}

// Extract walks every page of the source and returns one candidate set for
// the whole corpus. An empty corpus yields an empty set. Fetch errors and
// context expiry fail the run.
func (e *Extractor) Extract(ctx context.Context, pager docsource.Pager) (Set, error) {
	pages, err := pager.PageCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}
	e.log.Debug("walking document source", "pages", pages, "concurrency", e.concurrency)

	c := newCollector()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for n := 1; n <= pages; n++ {
		g.Go(func() error {
			results, err := pager.Page(gctx, n)
			if err != nil {
				return fmt.Errorf("fetch page %d: %w", n, err)
			}
			c.add(results)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := Normalize(c.list(), e.locale)
	e.log.Info("extracted keywords",
		"documents", c.hits,
		"skipped", c.skipped,
		"tokens", len(c.tokens),
		"keywords", len(set))
	return set, nil
}
