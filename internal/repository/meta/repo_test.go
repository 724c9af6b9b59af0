package meta

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/umlsdex/internal/domain"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
)

// mockStore keeps hashes in memory.
type mockStore struct {
	hashes map[string]map[string]string
	hsetFn func(ctx context.Context, key string, fields map[string]string) error
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string)}
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	h := m.hashes[key]
	if h == nil {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	out := make(map[string]string)
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.hashes, key)
	return nil
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, domain.NewKeyspace("umls"))
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	in := &run.Summary{
		Version:     "1.2.0",
		Languages:   []string{"ENG", "DUT"},
		StartedAt:   start,
		FinishedAt:  start.Add(time.Minute),
		Concepts:    3,
		Strings:     5,
		Definitions: 1,
		Relations:   2,
	}
	in.Drop("MRCONSO", run.ReasonLanguage)
	in.Drop("MRREL", run.ReasonUnknownRelation)

	if err := repo.Save(context.Background(), in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := ms.hashes["umls:meta"]; !ok {
		t.Fatal("summary not stored under umls:meta")
	}

	out, ok, err := repo.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("Load() ok=%v err=%v", ok, err)
	}
	if out.Version != "1.2.0" || len(out.Languages) != 2 || out.Languages[1] != "DUT" {
		t.Errorf("unexpected header: %+v", out)
	}
	if !out.StartedAt.Equal(in.StartedAt) || out.Duration() != time.Minute {
		t.Errorf("times = %v .. %v", out.StartedAt, out.FinishedAt)
	}
	if out.Concepts != 3 || out.Strings != 5 || out.Definitions != 1 || out.Relations != 2 {
		t.Errorf("counts = %+v", out)
	}
	if out.DroppedFor("MRCONSO", run.ReasonLanguage) != 1 || out.TotalDropped() != 2 {
		t.Errorf("dropped = %v", out.Dropped)
	}
}

func TestSave_ReplacesPreviousCounters(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, domain.NewKeyspace("umls"))

	first := &run.Summary{}
	first.Drop("MRREL", run.ReasonUnknownRelation)
	if err := repo.Save(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(context.Background(), &run.Summary{Concepts: 1}); err != nil {
		t.Fatal(err)
	}

	out, _, err := repo.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.TotalDropped() != 0 {
		t.Errorf("stale counters survived: %v", out.Dropped)
	}
}

func TestLoad_Empty(t *testing.T) {
	repo := New(newMockStore(), domain.NewKeyspace("umls"))
	s, ok, err := repo.Load(context.Background())
	if err != nil || ok || s != nil {
		t.Errorf("Load() = %v, %v, %v", s, ok, err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	ms := newMockStore()
	ms.hashes["umls:meta"] = map[string]string{fieldConcepts: "many"}
	repo := New(ms, domain.NewKeyspace("umls"))

	if _, _, err := repo.Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSave_StoreError(t *testing.T) {
	ms := newMockStore()
	ms.hsetFn = func(context.Context, string, map[string]string) error { return errors.New("READONLY") }
	repo := New(ms, domain.NewKeyspace("umls"))

	if err := repo.Save(context.Background(), &run.Summary{}); err == nil {
		t.Fatal("expected error")
	}
}
