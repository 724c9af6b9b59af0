package umlsdex

import (
	"context"

	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
	"github.com/kailas-cloud/umlsdex/internal/usecase/ingest"
	lookupuc "github.com/kailas-cloud/umlsdex/internal/usecase/lookup"
)

// --- lookupUseCase mock ---

// mockLookupUC embeds the interface so tests only stub what they call.
type mockLookupUC struct {
	lookupUseCase

	conceptFn        func(ctx context.Context, id string) (*domconcept.Document, error)
	conceptsFn       func(ctx context.Context, ids []string) ([]*domconcept.Document, error)
	definitionsFn    func(ctx context.Context, ids []string) ([]lookupuc.ConceptDefinitions, error)
	relatedFn        func(ctx context.Context, id, label string) ([]string, error)
	bySemanticTypeFn func(ctx context.Context, name string, offset, limit int) (lookupuc.Page, error)
	stringFn         func(ctx context.Context, value string) (*domstr.Entry, error)
	stringsByIDFn    func(ctx context.Context, ids []int) ([]*domstr.Entry, error)
	searchFn         func(ctx context.Context, q string, mode lookupuc.SearchMode, limit int) ([]lookupuc.Match, error)
	statsFn          func(ctx context.Context) (lookupuc.Stats, error)
}

func (m *mockLookupUC) Concept(ctx context.Context, id string) (*domconcept.Document, error) {
	return m.conceptFn(ctx, id)
}

func (m *mockLookupUC) Concepts(ctx context.Context, ids []string) ([]*domconcept.Document, error) {
	return m.conceptsFn(ctx, ids)
}

func (m *mockLookupUC) Definitions(ctx context.Context, ids []string) ([]lookupuc.ConceptDefinitions, error) {
	return m.definitionsFn(ctx, ids)
}

func (m *mockLookupUC) Related(ctx context.Context, id, label string) ([]string, error) {
	return m.relatedFn(ctx, id, label)
}

func (m *mockLookupUC) BySemanticType(ctx context.Context, name string, offset, limit int) (lookupuc.Page, error) {
	return m.bySemanticTypeFn(ctx, name, offset, limit)
}

func (m *mockLookupUC) String(ctx context.Context, value string) (*domstr.Entry, error) {
	return m.stringFn(ctx, value)
}

func (m *mockLookupUC) StringsByID(ctx context.Context, ids []int) ([]*domstr.Entry, error) {
	return m.stringsByIDFn(ctx, ids)
}

func (m *mockLookupUC) SearchStrings(
	ctx context.Context, q string, mode lookupuc.SearchMode, limit int,
) ([]lookupuc.Match, error) {
	return m.searchFn(ctx, q, mode, limit)
}

func (m *mockLookupUC) Stats(ctx context.Context) (lookupuc.Stats, error) {
	return m.statsFn(ctx)
}

// --- loadUseCase mock ---

type mockLoadUC struct {
	loadFn func(ctx context.Context, dir string, opts ingest.Options) (*run.Summary, error)
}

func (m *mockLoadUC) Load(ctx context.Context, dir string, opts ingest.Options) (*run.Summary, error) {
	return m.loadFn(ctx, dir, opts)
}

// --- helpers ---

func tumor() *domconcept.Document {
	return domconcept.Reconstruct("C0000005", "Tumor",
		[]string{"Tumor", "Neoplasm"},
		[]domconcept.Definition{{Text: "An abnormal mass of tissue.", Language: "en"}},
		[]domconcept.Relation{{Target: "C0000001", Label: "broader", Attribute: "isa"}},
		[]string{"Neoplastic Process"},
	)
}
