package concept

import (
	"context"
	"testing"

	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/domain"
	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
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

func testConcept(t *testing.T) *domconcept.Document {
	t.Helper()
	doc := domconcept.New("C0027651")
	doc.AddString("Neoplasm")
	doc.AddString("tumor")
	doc.MarkPreferred("Neoplasm")
	doc.AddDefinition(domconcept.Definition{Text: "A new abnormal growth of tissue.", Language: "en"})
	doc.AddRelation(domconcept.Relation{Target: "C0006826", Label: "parent", Attribute: "isa"})
	doc.AddSemanticType("Neoplastic Process")
	return doc
}
