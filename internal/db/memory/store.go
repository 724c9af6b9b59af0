package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/umlsdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store is an in-process db.Store. It keeps JSON documents and hashes in maps and
// answers MatchAll and TAG queries against the registered index definitions.
type Store struct {
	mu      sync.RWMutex
	docs    map[string][]byte
	hashes  map[string]map[string]string
	indexes map[string]*db.IndexDefinition
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{
		docs:    make(map[string][]byte),
		hashes:  make(map[string]map[string]string),
		indexes: make(map[string]*db.IndexDefinition),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// HSet sets hash fields.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.hashes[key]
	if h == nil {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

// HGetAll returns a copy of the hash. A missing key yields an empty map.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.hashes[key]))
	for k, v := range s.hashes[key] {
		out[k] = v
	}
	return out, nil
}

// Del deletes a key of any type.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	delete(s.hashes, key)
	return nil
}

// DelMulti deletes several keys.
func (s *Store) DelMulti(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.docs, key)
		delete(s.hashes, key)
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, isDoc := s.docs[key]
	_, isHash := s.hashes[key]
	return isDoc || isHash, nil
}

// Scan returns keys matching a glob pattern in sorted order.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	collect := func(key string) error {
		ok, err := path.Match(pattern, key)
		if err != nil {
			return &db.Error{Op: db.OpScan, Err: err}
		}
		if ok {
			keys = append(keys, key)
		}
		return nil
	}
	for key := range s.docs {
		if err := collect(key); err != nil {
			return nil, err
		}
	}
	for key := range s.hashes {
		if err := collect(key); err != nil {
			return nil, err
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// JSONSet stores a document. Only the root path is supported.
func (s *Store) JSONSet(_ context.Context, key, p string, data []byte) error {
	if !isRoot(p) {
		return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("unsupported path %q", p)}
	}
	if !json.Valid(data) {
		return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("invalid JSON for key %s", key)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), data...)
	return nil
}

// JSONSetMulti stores several documents. Nothing is written if any payload is invalid.
func (s *Store) JSONSetMulti(_ context.Context, items []db.JSONSetItem) error {
	for _, item := range items {
		if !isRoot(item.Path) {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: unsupported path %q", item.Key, item.Path)}
		}
		if !json.Valid(item.Data) {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: invalid JSON", item.Key)}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.docs[item.Key] = append([]byte(nil), item.Data...)
	}
	return nil
}

// JSONGet returns the document. "$" wraps it in an array like RedisJSON does.
func (s *Store) JSONGet(_ context.Context, key string, paths ...string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if len(paths) == 1 && paths[0] == "$" {
		return []byte("[" + string(doc) + "]"), nil
	}
	return append([]byte(nil), doc...), nil
}

// JSONMGet returns one entry per key, nil where the key is missing.
func (s *Store) JSONMGet(_ context.Context, keys []string, _ string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]byte, len(keys))
	for i, key := range keys {
		if doc, ok := s.docs[key]; ok {
			out[i] = append([]byte(nil), doc...)
		}
	}
	return out, nil
}

// CreateIndex registers an index definition.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	cp := *def
	s.indexes[def.Name] = &cp
	return nil
}

// DropIndex removes an index definition. Documents are kept, as with FT.DROPINDEX.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether an index is registered.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.indexes[name]
	return ok, nil
}

// SupportsTextSearch returns false: only TAG queries are evaluated.
func (s *Store) SupportsTextSearch(context.Context) bool { return false }

// SearchList evaluates MatchAll or a TAG query and pages through the sorted hits.
func (s *Store) SearchList(
	_ context.Context, index, query string, offset, limit int, _ []string,
) (*db.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys, err := s.match(index, query)
	if err != nil {
		return nil, err
	}

	res := &db.SearchResult{Total: len(keys)}
	if offset >= len(keys) {
		return res, nil
	}
	end := min(offset+limit, len(keys))
	for _, key := range keys[offset:end] {
		res.Entries = append(res.Entries, db.SearchEntry{
			Key:    key,
			Fields: map[string]string{db.JSONRoot: string(s.docs[key])},
		})
	}
	return res, nil
}

// SearchCount returns the number of hits for a query.
func (s *Store) SearchCount(_ context.Context, index, query string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys, err := s.match(index, query)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *Store) match(index, query string) ([]string, error) {
	def, ok := s.indexes[index]
	if !ok {
		return nil, db.ErrIndexNotFound
	}

	var q *tagQuery
	if query != db.MatchAll {
		parsed, err := parseTagQuery(query)
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: err}
		}
		q = parsed
	}

	var field *db.IndexField
	if q != nil {
		for i := range def.Fields {
			f := &def.Fields[i]
			if f.Type == db.IndexFieldTag && (f.Alias == q.field || f.Name == q.field) {
				field = f
				break
			}
		}
		if field == nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("unknown tag field %q", q.field)}
		}
	}

	var keys []string
	for key, doc := range s.docs {
		if !hasAnyPrefix(key, def.Prefixes) {
			continue
		}
		if q != nil && !q.matches(doc, field) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func hasAnyPrefix(key string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func isRoot(p string) bool {
	return p == "$" || p == "." || p == ""
}
