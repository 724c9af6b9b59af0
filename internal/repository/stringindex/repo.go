package stringindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/domain"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
)

const (
	rootPath = "."
	// scanBatch bounds JSON.MGET size on the scan fallback path.
	scanBatch = 500
)

// store is the consumer interface for string index entries (ISP).
//
//nolint:interfacebloat // string repo needs JSON, key scan and index management operations
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SupportsTextSearch(ctx context.Context) bool
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo stores string index entries as JSON under <database>:string:<id>.
type Repo struct {
	store store
	keys  domain.Keyspace
}

// New creates a string index repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Clear drops the string index and deletes every stored entry.
func (r *Repo) Clear(ctx context.Context) (int, error) {
	if err := r.store.DropIndex(ctx, r.keys.StringIndex()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return 0, fmt.Errorf("drop index %s: %w", r.keys.StringIndex(), err)
	}

	keys, err := r.store.Scan(ctx, r.keys.StringPrefix()+"*")
	if err != nil {
		return 0, fmt.Errorf("scan strings: %w", err)
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return 0, fmt.Errorf("delete strings: %w", err)
	}
	return len(keys), nil
}

// PutMany writes one batch of entries in a single pipeline.
func (r *Repo) PutMany(ctx context.Context, entries []*domstr.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, len(entries))
	for i, e := range entries {
		data, err := json.Marshal(toJSON(e))
		if err != nil {
			return fmt.Errorf("marshal string %d: %w", e.ID(), err)
		}
		items[i] = db.JSONSetItem{Key: r.keys.StringKey(e.Key()), Path: db.JSONRoot, Data: data}
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set strings: %w", err)
	}
	return nil
}

// CreateIndex builds the string FT index.
func (r *Repo) CreateIndex(ctx context.Context) error {
	def, err := buildIndex(r.keys, r.store.SupportsTextSearch(ctx))
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Get returns an entry by its synthetic id.
func (r *Repo) Get(ctx context.Context, id int) (*domstr.Entry, error) {
	key := r.keys.StringKey(strconv.Itoa(id))
	raw, err := r.store.JSONGet(ctx, key, rootPath)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrStringNotFound
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}
	return decode(raw)
}

// ByValue returns the entry whose value matches exactly.
func (r *Repo) ByValue(ctx context.Context, value string) (*domstr.Entry, error) {
	entries, _, err := r.search(ctx, db.TagQuery(valueField, value), 0, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrStringNotFound
	}
	return entries[0], nil
}

// ByLexical returns entries sharing the lexical form of s (case and punctuation folded).
func (r *Repo) ByLexical(ctx context.Context, s string, limit int) ([]*domstr.Entry, error) {
	lower := domstr.Lexical(s)
	if lower == "" {
		return nil, nil
	}
	entries, _, err := r.search(ctx, db.TagQuery(lowerField, lower), 0, limit)
	return entries, err
}

// SearchSubstring returns entries whose value contains term, case-insensitively.
// Backends without TEXT support are served by scanning every entry.
func (r *Repo) SearchSubstring(ctx context.Context, term string, limit int) ([]*domstr.Entry, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}
	if r.store.SupportsTextSearch(ctx) {
		entries, _, err := r.search(ctx, db.InfixQuery(textField, term), 0, limit)
		return entries, err
	}
	return r.scanSubstring(ctx, term, limit)
}

// Count returns the number of indexed string entries.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.keys.StringIndex(), db.MatchAll)
	if err != nil {
		return 0, fmt.Errorf("count strings: %w", err)
	}
	return n, nil
}

func (r *Repo) search(ctx context.Context, query string, offset, limit int) ([]*domstr.Entry, int, error) {
	res, err := r.store.SearchList(ctx, r.keys.StringIndex(), query, offset, limit, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", query, err)
	}

	entries := make([]*domstr.Entry, 0, len(res.Entries))
	for _, hit := range res.Entries {
		raw := hit.JSON()
		if raw == "" {
			continue
		}
		e, err := decode([]byte(raw))
		if err != nil {
			return nil, 0, fmt.Errorf("entry %s: %w", hit.Key, err)
		}
		entries = append(entries, e)
	}
	return entries, res.Total, nil
}

func (r *Repo) scanSubstring(ctx context.Context, term string, limit int) ([]*domstr.Entry, error) {
	keys, err := r.store.Scan(ctx, r.keys.StringPrefix()+"*")
	if err != nil {
		return nil, fmt.Errorf("scan strings: %w", err)
	}
	sortKeysByID(keys, r.keys.StringPrefix())

	needle := strings.ToLower(term)
	var out []*domstr.Entry
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		raws, err := r.store.JSONMGet(ctx, keys[start:end], rootPath)
		if err != nil {
			return nil, fmt.Errorf("json.mget strings: %w", err)
		}
		for i, raw := range raws {
			if raw == nil {
				continue
			}
			e, err := decode(raw)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", keys[start+i], err)
			}
			if !strings.Contains(strings.ToLower(e.Value()), needle) {
				continue
			}
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// sortKeysByID orders string keys by their numeric id so scans are deterministic.
func sortKeysByID(keys []string, prefix string) {
	sort.Slice(keys, func(i, j int) bool {
		a, _ := domain.IDFromKey(keys[i], prefix)
		b, _ := domain.IDFromKey(keys[j], prefix)
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}

func decode(raw []byte) (*domstr.Entry, error) {
	var e entryJSON
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("unmarshal string: %w", err)
	}
	return fromJSON(e), nil
}
