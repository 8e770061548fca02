/*
Package local implements an embedded completion index.

Entries are appended to a buntdb database under "entry:<uuid>" keys, so they
survive restarts, and mirrored into a patricia trie that answers prefix
queries. Like a remote completion suggester it never deduplicates: adding the
same keyword in two runs stores two entries, and both are returned.

Matching lowercases the prefix and is otherwise literal. Completions are
ranked by how many entries share the keyword, then alphabetically.
*/
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/index"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tchap/go-patricia/v2/patricia"
	"github.com/tidwall/buntdb"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const entryPrefix = "entry:"

// InMemory opens an index that is not persisted.
const InMemory = ":memory:"

// Index is an embedded completion index.
type Index struct {
	db   *buntdb.DB
	trie *patricia.Trie
	mu   sync.RWMutex
	log  *log.Logger
}

var _ index.Client = (*Index)(nil)

// Open opens (creating if needed) the index stored at path and loads its
// entries into the trie. Use InMemory for a throwaway index.
func Open(path string) (*Index, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open local index %s: %w", path, err)
	}
	idx := &Index{
		db:   db,
		trie: patricia.NewTrie(),
		log:  logger.New("local-index"),
	}
	if err := idx.load(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) load() error {
	count := 0
	err := idx.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(entryPrefix+"*", func(key, value string) bool {
			var e index.Entry
			if err := json.Unmarshal([]byte(value), &e); err != nil {
				idx.log.Warnf("Skipping unreadable entry %s: %v", key, err)
				return true
			}
			idx.insert(e.Suggest)
			count++
			return true
		})
	})
	if err != nil {
		return fmt.Errorf("load local index: %w", err)
	}
	idx.log.Debugf("Loaded %d entries", count)
	return nil
}

// insert bumps the entry count of kw. Callers hold mu or own idx exclusively.
func (idx *Index) insert(kw string) {
	key := patricia.Prefix(kw)
	if item := idx.trie.Get(key); item != nil {
		idx.trie.Set(key, item.(int)+1)
		return
	}
	idx.trie.Insert(key, 1)
}

// Close releases the database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// AddDocuments stores every entry in one transaction. Entries without a
// suggestion text or with another record type are refused and not counted.
func (idx *Index) AddDocuments(ctx context.Context, entries []index.Entry) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	var accepted []string
	err := idx.db.Update(func(tx *buntdb.Tx) error {
		for _, e := range entries {
			if e.Suggest == "" || e.Type != index.KeywordType {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if _, _, err := tx.Set(entryPrefix+uuid.NewString(), string(data), nil); err != nil {
				return err
			}
			accepted = append(accepted, e.Suggest)
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("store entries: %w", err)
	}

	for _, kw := range accepted {
		idx.insert(kw)
	}
	idx.log.Debug("stored entries", "submitted", len(entries), "accepted", len(accepted))
	return len(accepted), nil
}

type match struct {
	word  string
	count int
}

// Search answers a completion query. The response mirrors a remote
// suggester: one block under q.Name whose options repeat a keyword once per
// stored entry, capped at q.Size.
func (idx *Index) Search(ctx context.Context, q index.CompletionQuery) (*index.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Field != "" && q.Field != "suggest" {
		return nil, fmt.Errorf("unknown completion field %q", q.Field)
	}

	// a Caser is stateful, so each query gets its own
	prefix := cases.Lower(language.Und).String(q.Prefix)

	idx.mu.RLock()
	var matches []match
	err := idx.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		matches = append(matches, match{word: string(p), count: item.(int)})
		return nil
	})
	idx.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("visit trie: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		return matches[i].word < matches[j].word
	})

	options := make([]index.Option, 0, max(q.Size, 0))
	for _, m := range matches {
		for n := 0; n < m.count && len(options) < q.Size; n++ {
			options = append(options, index.Option{Text: m.word, Score: float64(m.count)})
		}
		if len(options) >= q.Size {
			break
		}
	}

	return &index.SearchResult{Suggest: map[string][]index.SuggestEntry{
		q.Name: {{Text: q.Prefix, Options: options}},
	}}, nil
}

// Count returns the number of stored entries.
func (idx *Index) Count() (int, error) {
	n := 0
	err := idx.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(entryPrefix+"*", func(_, _ string) bool {
			n++
			return true
		})
	})
	return n, err
}

// Keywords returns the distinct keywords stored, in ascending order.
func (idx *Index) Keywords() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var words []string
	_ = idx.trie.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		words = append(words, string(p))
		return nil
	})
	sort.Strings(words)
	return words
}
