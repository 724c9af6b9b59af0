package lookup

import (
	"context"
	"strings"

	"github.com/kailas-cloud/umlsdex/internal/domain"
	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
)

// --- Mocks ---

type mockConcepts struct {
	docs      map[string]*domconcept.Document
	err       error
	lastLimit int
	lastIDs   []string
}

func newMockConcepts(docs ...*domconcept.Document) *mockConcepts {
	m := &mockConcepts{docs: make(map[string]*domconcept.Document)}
	for _, d := range docs {
		m.docs[d.ID()] = d
	}
	return m
}

func (m *mockConcepts) Get(_ context.Context, id string) (*domconcept.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrConceptNotFound
	}
	return d, nil
}

func (m *mockConcepts) GetMany(_ context.Context, ids []string) ([]*domconcept.Document, error) {
	m.lastIDs = ids
	if m.err != nil {
		return nil, m.err
	}
	var out []*domconcept.Document
	for _, id := range ids {
		if d, ok := m.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockConcepts) BySemanticType(_ context.Context, name string, offset, limit int) ([]*domconcept.Document, int, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, 0, m.err
	}
	var hits []*domconcept.Document
	for _, d := range m.docs {
		for _, st := range d.SemanticTypes() {
			if strings.EqualFold(st, name) {
				hits = append(hits, d)
			}
		}
	}
	total := len(hits)
	if offset >= total {
		return nil, total, nil
	}
	return hits[offset:min(offset+limit, total)], total, nil
}

func (m *mockConcepts) Count(context.Context) (int, error) {
	return len(m.docs), m.err
}

type mockStrings struct {
	entries   []*domstr.Entry
	err       error
	lastLimit int
	lastCall  string
}

func newMockStrings(docs ...*domconcept.Document) *mockStrings {
	return &mockStrings{entries: domstr.Build(docs).Entries()}
}

func (m *mockStrings) Get(_ context.Context, id int) (*domstr.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, e := range m.entries {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, domain.ErrStringNotFound
}

func (m *mockStrings) ByValue(_ context.Context, value string) (*domstr.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, e := range m.entries {
		if e.Value() == value {
			return e, nil
		}
	}
	return nil, domain.ErrStringNotFound
}

func (m *mockStrings) ByLexical(_ context.Context, s string, limit int) ([]*domstr.Entry, error) {
	m.lastCall, m.lastLimit = "lexical", limit
	if m.err != nil {
		return nil, m.err
	}
	var out []*domstr.Entry
	for _, e := range m.entries {
		if e.Lower() == domstr.Lexical(s) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStrings) SearchSubstring(_ context.Context, term string, limit int) ([]*domstr.Entry, error) {
	m.lastCall, m.lastLimit = "substring", limit
	if m.err != nil {
		return nil, m.err
	}
	var out []*domstr.Entry
	for _, e := range m.entries {
		if strings.Contains(strings.ToLower(e.Value()), strings.ToLower(term)) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStrings) Count(context.Context) (int, error) {
	return len(m.entries), m.err
}

type mockMeta struct {
	summary *run.Summary
	err     error
}

func (m *mockMeta) Load(context.Context) (*run.Summary, bool, error) {
	return m.summary, m.summary != nil, m.err
}

// --- Fixtures ---

func fixtureDocs() []*domconcept.Document {
	return []*domconcept.Document{
		domconcept.Reconstruct("C01", "tumor",
			[]string{"tumor", "Neoplasm"},
			[]domconcept.Definition{{Text: "An abnormal mass.", Language: "en"}},
			[]domconcept.Relation{
				{Target: "C02", Label: "child"},
				{Target: "C03", Label: "synonym"},
			},
			[]string{"Neoplastic Process"},
		),
		domconcept.Reconstruct("C02", "neoplasm", []string{"Neoplasm", "growth"}, nil, nil, nil),
		domconcept.Reconstruct("C03", "", []string{"lump"}, nil, nil, []string{"Finding"}),
	}
}

func newService() (*Service, *mockConcepts, *mockStrings) {
	docs := fixtureDocs()
	concepts := newMockConcepts(docs...)
	strs := newMockStrings(docs...)
	return New(concepts, strs, nil), concepts, strs
}
