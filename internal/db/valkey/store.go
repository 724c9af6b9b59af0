package valkey

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/db/redis"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Valkey store.
type Config = redis.Config

// Store implements db.Store for Valkey with the valkey-search and valkey-json modules.
// Commands shared with Redis are inherited; the overrides cover what valkey-search lacks.
type Store struct {
	*redis.Store
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Store: redis.FromClient(client)}, nil
}

// SupportsTextSearch returns false: valkey-search has no TEXT fields.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return false
}

// CreateIndex creates the index without TEXT fields.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	stripped := *def
	stripped.Fields = make([]db.IndexField, 0, len(def.Fields))
	for _, f := range def.Fields {
		if f.Type == db.IndexFieldText {
			continue
		}
		stripped.Fields = append(stripped.Fields, f)
	}
	return s.Store.CreateIndex(ctx, &stripped)
}

// SearchList performs paginated search. Valkey-search does not support bare FT.SEARCH
// without KNN, so query="*" falls back to SCAN + JSON.MGET.
func (s *Store) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if query == db.MatchAll {
		return s.scanList(ctx, index, offset, limit)
	}
	return s.Store.SearchList(ctx, index, query, offset, limit, fields)
}

// SearchCount returns document count. Falls back to SCAN for query="*".
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	if query == db.MatchAll {
		return s.scanCount(ctx, index)
	}
	return s.Store.SearchCount(ctx, index, query)
}

func (s *Store) scanList(ctx context.Context, index string, offset, limit int) (*db.SearchResult, error) {
	keys, err := s.Scan(ctx, indexToKeyPrefix(index)+"*")
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}

	sort.Strings(keys) // deterministic ordering

	total := len(keys)
	if offset >= total {
		return &db.SearchResult{Total: total}, nil
	}
	end := min(offset+limit, total)
	pageKeys := keys[offset:end]

	docs, err := s.JSONMGet(ctx, pageKeys, ".")
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(pageKeys))
	for i, key := range pageKeys {
		if docs[i] == nil {
			continue // key may have been deleted between SCAN and MGET
		}
		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: map[string]string{db.JSONRoot: string(docs[i])},
		})
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func (s *Store) scanCount(ctx context.Context, index string) (int, error) {
	keys, err := s.Scan(ctx, indexToKeyPrefix(index)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan for count: %w", err)
	}
	return len(keys), nil
}

// indexToKeyPrefix converts index name to a SCAN prefix.
// "umls:concept:idx" -> "umls:concept:"
func indexToKeyPrefix(index string) string {
	if strings.HasSuffix(index, ":idx") {
		return index[:len(index)-3]
	}
	return index + ":"
}

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{Store: redis.FromClient(c)}
}
