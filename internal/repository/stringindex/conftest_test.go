package stringindex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/domain"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonMGetFn     func(ctx context.Context, keys []string, path string) ([][]byte, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	delMultiFn     func(ctx context.Context, keys []string) error
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string) error
	searchListFn   func(
		ctx context.Context, index, query string, offset, limit int, fields []string,
	) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index, query string) (int, error)
	textSearch    bool
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error) {
	if m.jsonMGetFn != nil {
		return m.jsonMGetFn(ctx, keys, path)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) error {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) SupportsTextSearch(context.Context) bool { return m.textSearch }

func (m *mockStore) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, query, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, domain.NewKeyspace("umls")), ms
}

func testEntry(t *testing.T, id int, value string, concepts ...string) *domstr.Entry {
	t.Helper()
	e := domstr.New(id, value)
	for _, c := range concepts {
		e.AddConcept(c)
	}
	return e
}

func hit(key, doc string) db.SearchEntry {
	return db.SearchEntry{Key: key, Fields: map[string]string{"$": doc}}
}
