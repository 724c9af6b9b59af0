package lookup

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/umlsdex/internal/domain"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
)

func TestConcept(t *testing.T) {
	svc, _, _ := newService()

	doc, err := svc.Concept(context.Background(), "C01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Preferred() != "tumor" {
		t.Errorf("unexpected preferred: %q", doc.Preferred())
	}
}

func TestConcept_Errors(t *testing.T) {
	svc, _, _ := newService()

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"empty", "  ", domain.ErrInvalidQuery},
		{"missing", "C99", domain.ErrConceptNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Concept(context.Background(), tt.id)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConcepts_SkipsMissingAndDuplicates(t *testing.T) {
	svc, concepts, _ := newService()

	docs, err := svc.Concepts(context.Background(), []string{"C02", "C99", "C02", " C01 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[0].ID() != "C02" || docs[1].ID() != "C01" {
		t.Errorf("unexpected docs: %d", len(docs))
	}
	if !slices.Equal(concepts.lastIDs, []string{"C02", "C99", "C01"}) {
		t.Errorf("unexpected ids passed to repo: %v", concepts.lastIDs)
	}
}

func TestConcepts_Limits(t *testing.T) {
	svc, _, _ := newService()
	svc.WithMaxBunchSize(2)

	if _, err := svc.Concepts(context.Background(), nil); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for empty ids, got %v", err)
	}
	if _, err := svc.Concepts(context.Background(), []string{"C01", "C02", "C03"}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for oversized bunch, got %v", err)
	}
}

func TestDefinitions(t *testing.T) {
	svc, _, _ := newService()

	defs, err := svc.Definitions(context.Background(), []string{"C01", "C02"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(defs))
	}
	if defs[0].ConceptID != "C01" || len(defs[0].Definitions) != 1 {
		t.Errorf("unexpected C01 definitions: %+v", defs[0])
	}
	if defs[1].Definitions == nil || len(defs[1].Definitions) != 0 {
		t.Errorf("expected empty, non-nil definitions for C02: %+v", defs[1])
	}
}

func TestRelated(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	all, err := svc.Related(ctx, "C01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(all, []string{"C02", "C03"}) {
		t.Errorf("unexpected related ids: %v", all)
	}

	children, err := svc.Related(ctx, "C01", "child")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(children, []string{"C02"}) {
		t.Errorf("unexpected children: %v", children)
	}

	none, err := svc.Related(ctx, "C02", "parent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", none)
	}
}

func TestRelated_UnknownLabel(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.Related(context.Background(), "C01", "cousin")
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestString(t *testing.T) {
	svc, _, _ := newService()

	e, err := svc.String(context.Background(), "Neoplasm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(e.Concepts(), []string{"C01", "C02"}) {
		t.Errorf("unexpected owners: %v", e.Concepts())
	}

	if _, err := svc.String(context.Background(), "neoplasm"); !errors.Is(err, domain.ErrStringNotFound) {
		t.Errorf("expected exact match only, got %v", err)
	}
	if _, err := svc.String(context.Background(), ""); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestStringsByID(t *testing.T) {
	svc, _, _ := newService()

	entries, err := svc.StringsByID(context.Background(), []int{2, 999, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].Value() != "Neoplasm" || entries[1].Value() != "tumor" {
		t.Errorf("unexpected entries: %d", len(entries))
	}

	if _, err := svc.StringsByID(context.Background(), nil); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestConceptsForString(t *testing.T) {
	svc, _, _ := newService()

	docs, err := svc.ConceptsForString(context.Background(), "Neoplasm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	for _, d := range docs {
		if !d.HasString("Neoplasm") {
			t.Errorf("%s does not contain the string", d.ID())
		}
	}
}

func TestDefinitionsForString(t *testing.T) {
	svc, _, _ := newService()

	defs, err := svc.DefinitionsForString(context.Background(), "tumor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 1 || defs[0].ConceptID != "C01" || defs[0].Definitions[0].Language != "en" {
		t.Errorf("unexpected definitions: %+v", defs)
	}

	if _, err := svc.DefinitionsForString(context.Background(), "absent"); !errors.Is(err, domain.ErrStringNotFound) {
		t.Errorf("expected ErrStringNotFound, got %v", err)
	}
}

func TestSearchStrings(t *testing.T) {
	svc, _, strs := newService()
	ctx := context.Background()

	matches, err := svc.SearchStrings(ctx, "NEO", ModeSubstring, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Value != "Neoplasm" {
		t.Errorf("unexpected matches: %+v", matches)
	}
	if strs.lastCall != "substring" || strs.lastLimit != 20 {
		t.Errorf("expected substring search with default limit, got %s/%d", strs.lastCall, strs.lastLimit)
	}

	matches, err = svc.SearchStrings(ctx, "neoplasm!", ModeLexical, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || !slices.Equal(matches[0].Concepts, []string{"C01", "C02"}) {
		t.Errorf("unexpected lexical matches: %+v", matches)
	}
	if strs.lastCall != "lexical" || strs.lastLimit != 100 {
		t.Errorf("expected lexical search with clamped limit, got %s/%d", strs.lastCall, strs.lastLimit)
	}
}

func TestSearchStrings_Invalid(t *testing.T) {
	svc, _, _ := newService()

	if _, err := svc.SearchStrings(context.Background(), "  ", ModeSubstring, 10); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for blank query, got %v", err)
	}
	if _, err := svc.SearchStrings(context.Background(), "x", SearchMode("fuzzy"), 10); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for unknown mode, got %v", err)
	}
}

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchMode
		wantErr bool
	}{
		{"", ModeSubstring, false},
		{"substring", ModeSubstring, false},
		{"lexical", ModeLexical, false},
		{"regex", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSearchMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSearchMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestBySemanticType(t *testing.T) {
	svc, concepts, _ := newService()

	page, err := svc.BySemanticType(context.Background(), "Finding", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 || len(page.Concepts) != 1 || page.Concepts[0].ID() != "C03" {
		t.Errorf("unexpected page: %+v", page)
	}
	if concepts.lastLimit != 20 {
		t.Errorf("expected default limit, got %d", concepts.lastLimit)
	}

	if _, err := svc.BySemanticType(context.Background(), "", 0, 10); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := svc.BySemanticType(context.Background(), "Finding", -1, 10); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for negative offset, got %v", err)
	}
}

func TestStats(t *testing.T) {
	docs := fixtureDocs()
	summary := &run.Summary{Version: "dev", StartedAt: time.Unix(0, 0), Concepts: 3}
	svc := New(newMockConcepts(docs...), newMockStrings(docs...), &mockMeta{summary: summary})

	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Concepts != 3 || st.Strings != 4 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if st.LastRun != summary {
		t.Error("expected last run summary")
	}
}

func TestStats_NoRun(t *testing.T) {
	svc, _, _ := newService()

	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.LastRun != nil {
		t.Error("expected no last run")
	}
}

func TestStats_Error(t *testing.T) {
	docs := fixtureDocs()
	concepts := newMockConcepts(docs...)
	concepts.err = errors.New("down")
	svc := New(concepts, newMockStrings(docs...), nil)

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Error("expected error")
	}
}
