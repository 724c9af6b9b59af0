package ingest

import (
	"context"
	"slices"
	"testing"

	"github.com/kailas-cloud/umlsdex/internal/db/memory"
	"github.com/kailas-cloud/umlsdex/internal/domain"
	"github.com/kailas-cloud/umlsdex/internal/repository/concept"
	"github.com/kailas-cloud/umlsdex/internal/repository/meta"
	"github.com/kailas-cloud/umlsdex/internal/repository/stringindex"
	"github.com/kailas-cloud/umlsdex/internal/rrf"
)

type storedDataset struct {
	concepts *concept.Repo
	strings  *stringindex.Repo
	meta     *meta.Repo
}

func loadInto(t *testing.T, store *memory.Store, src Sources) storedDataset {
	t.Helper()
	keys := domain.NewKeyspace("test")
	ds := storedDataset{
		concepts: concept.New(store, keys),
		strings:  stringindex.New(store, keys),
		meta:     meta.New(store, keys),
	}
	persister := NewPersister(ds.concepts, ds.strings, ds.meta, nil).WithBatchSize(2)
	p := newPipeline(t, Options{ProcessRelations: true, ProcessSemanticTypes: true}, persister)
	if _, err := p.Run(context.Background(), src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return ds
}

func roundTripSources() Sources {
	return Sources{
		Strings: rows(rrf.MRCONSO,
			conso("C01", "ENG", "P", "tumor"),
			conso("C01", "ENG", "S", "neoplasm"),
			conso("C02", "ENG", "P", "neoplasm"),
			conso("C03", "FRE", "P", "os"),
		),
		SemanticTypes: rows(rrf.MRSTY, mrsty("C01", "Neoplastic Process")),
		Relations: rows(rrf.MRREL,
			mrrel("C01", "CHD", "C02", ""),
			mrrel("C03", "PAR", "C02", ""),
		),
	}
}

func TestRoundTrip_DocumentAndIndexAgree(t *testing.T) {
	ctx := context.Background()
	ds := loadInto(t, memory.NewStore(), roundTripSources())

	for _, id := range []string{"C01", "C02"} {
		doc, err := ds.concepts.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get %s: %v", id, err)
		}
		for _, s := range doc.Strings() {
			e, err := ds.strings.ByValue(ctx, s)
			if err != nil {
				t.Fatalf("ByValue %q: %v", s, err)
			}
			if !e.HasConcept(id) {
				t.Errorf("entry %q does not list %s", s, id)
			}
		}
	}

	e, err := ds.strings.ByValue(ctx, "neoplasm")
	if err != nil {
		t.Fatalf("ByValue: %v", err)
	}
	for _, id := range e.Concepts() {
		doc, err := ds.concepts.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get %s: %v", id, err)
		}
		if !doc.HasString("neoplasm") {
			t.Errorf("%s does not contain neoplasm", id)
		}
	}
	if !slices.Equal(e.Concepts(), []string{"C01", "C02"}) {
		t.Errorf("unexpected owners: %v", e.Concepts())
	}
}

func TestRoundTrip_FilteredConceptAbsent(t *testing.T) {
	ctx := context.Background()
	ds := loadInto(t, memory.NewStore(), roundTripSources())

	if _, err := ds.concepts.Get(ctx, "C03"); err == nil {
		t.Error("expected C03 to be absent")
	}
	c02, err := ds.concepts.Get(ctx, "C02")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := c02.RelatedIDs(""); !slices.Equal(got, []string{"C01"}) {
		t.Errorf("unexpected edges on C02: %v", got)
	}
}

func TestRoundTrip_SemanticTypeIndex(t *testing.T) {
	ctx := context.Background()
	ds := loadInto(t, memory.NewStore(), roundTripSources())

	docs, total, err := ds.concepts.BySemanticType(ctx, "Neoplastic Process", 0, 10)
	if err != nil {
		t.Fatalf("BySemanticType: %v", err)
	}
	if total != 1 || len(docs) != 1 || docs[0].ID() != "C01" {
		t.Errorf("unexpected result: total=%d docs=%d", total, len(docs))
	}
}

func TestRoundTrip_ReplaceOnRerun(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	loadInto(t, store, roundTripSources())

	ds := loadInto(t, store, Sources{
		Strings: rows(rrf.MRCONSO, conso("C09", "ENG", "P", "fracture")),
	})

	if _, err := ds.concepts.Get(ctx, "C01"); err == nil {
		t.Error("expected previous dataset to be replaced")
	}
	n, err := ds.strings.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 string entry, got %d", n)
	}

	summary, ok, err := ds.meta.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if summary.Concepts != 1 || summary.Strings != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}
