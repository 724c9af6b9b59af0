package umlsdex

import (
	"context"
	"fmt"
	"time"

	lookupuc "github.com/kailas-cloud/umlsdex/internal/usecase/lookup"
)

// StringService reads the string index.
type StringService struct {
	svc lookupUseCase
	obs *observer
}

// Get returns the entry for an exact, case-sensitive string.
func (s *StringService) Get(ctx context.Context, value string) (_ StringEntry, err error) {
	start := time.Now()
	defer func() { s.obs.observe("string_get", start, err) }()

	e, err := s.svc.String(ctx, value)
	if err != nil {
		return StringEntry{}, fmt.Errorf("get string: %w", err)
	}
	return entryFromDomain(e), nil
}

// ByID returns entries by their synthetic ids. Unknown ids are skipped.
func (s *StringService) ByID(ctx context.Context, ids []int) (_ []StringEntry, err error) {
	start := time.Now()
	defer func() { s.obs.observe("string_by_id", start, err) }()

	entries, err := s.svc.StringsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get strings: %w", err)
	}
	out := make([]StringEntry, len(entries))
	for i, e := range entries {
		out[i] = entryFromDomain(e)
	}
	return out, nil
}

// Concepts returns every concept that carries value.
func (s *StringService) Concepts(ctx context.Context, value string) (_ []Concept, err error) {
	start := time.Now()
	defer func() { s.obs.observe("string_concepts", start, err) }()

	docs, err := s.svc.ConceptsForString(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("concepts for string: %w", err)
	}
	return conceptsFromDomain(docs), nil
}

// Definitions returns the definitions of every concept that carries value.
func (s *StringService) Definitions(ctx context.Context, value string) (_ []ConceptDefinitions, err error) {
	start := time.Now()
	defer func() { s.obs.observe("string_definitions", start, err) }()

	defs, err := s.svc.DefinitionsForString(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("definitions for string: %w", err)
	}
	return conceptDefinitionsFromDomain(defs), nil
}

// Search finds strings matching q. limit <= 0 selects the default page size.
func (s *StringService) Search(ctx context.Context, q string, mode SearchMode, limit int) (_ []Match, err error) {
	start := time.Now()
	defer func() { s.obs.observe("string_search", start, err) }()

	parsed, err := lookupuc.ParseSearchMode(string(mode))
	if err != nil {
		return nil, err
	}
	matches, err := s.svc.SearchStrings(ctx, q, parsed, limit)
	if err != nil {
		return nil, fmt.Errorf("search strings: %w", err)
	}
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = Match{Value: m.Value, Concepts: m.Concepts}
	}
	return out, nil
}
