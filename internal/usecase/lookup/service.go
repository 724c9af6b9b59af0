package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/umlsdex/internal/domain"
	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/relation"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
)

// SearchMode selects how SearchStrings matches the query.
type SearchMode string

const (
	// ModeSubstring matches strings containing the query, case-insensitively.
	ModeSubstring SearchMode = "substring"
	// ModeLexical matches strings whose lexical form equals the query's.
	ModeLexical SearchMode = "lexical"
)

// ParseSearchMode maps a request value to a mode. "" selects ModeSubstring.
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case "", ModeSubstring:
		return ModeSubstring, nil
	case ModeLexical:
		return ModeLexical, nil
	default:
		return "", fmt.Errorf("unknown search mode %q: %w", s, domain.ErrInvalidQuery)
	}
}

// Match is one string hit with the concepts that own it.
type Match struct {
	Value    string
	Concepts []string
}

// ConceptDefinitions pairs a concept id with its definitions.
type ConceptDefinitions struct {
	ConceptID   string
	Definitions []domconcept.Definition
}

// Page is a window of concepts with the total hit count.
type Page struct {
	Concepts []*domconcept.Document
	Total    int
}

// Stats describes the stored dataset.
type Stats struct {
	Concepts int
	Strings  int
	// LastRun is nil when no load has completed against this database.
	LastRun *run.Summary
}

// Service answers read queries over a loaded dataset.
type Service struct {
	concepts        ConceptReader
	strings         StringReader
	meta            SummaryReader
	defaultPageSize int
	maxPageSize     int
	maxBunchSize    int
}

// New creates a lookup service. meta can be nil.
func New(concepts ConceptReader, strs StringReader, meta SummaryReader) *Service {
	return &Service{
		concepts:        concepts,
		strings:         strs,
		meta:            meta,
		defaultPageSize: 20,
		maxPageSize:     100,
		maxBunchSize:    100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithMaxBunchSize limits the number of ids per bunch request.
func (s *Service) WithMaxBunchSize(n int) *Service {
	if n > 0 {
		s.maxBunchSize = n
	}
	return s
}

// Concept returns one concept document.
func (s *Service) Concept(ctx context.Context, id string) (*domconcept.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("concept id is required: %w", domain.ErrInvalidQuery)
	}
	doc, err := s.concepts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get concept %s: %w", id, err)
	}
	return doc, nil
}

// Concepts returns the documents for ids in request order; unknown ids are skipped.
func (s *Service) Concepts(ctx context.Context, ids []string) ([]*domconcept.Document, error) {
	ids, err := s.normalizeIDs(ids)
	if err != nil {
		return nil, err
	}
	docs, err := s.concepts.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get concepts: %w", err)
	}
	return docs, nil
}

// Definitions returns the definitions of each known concept in ids.
func (s *Service) Definitions(ctx context.Context, ids []string) ([]ConceptDefinitions, error) {
	docs, err := s.Concepts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return definitionsOf(docs), nil
}

// Related returns the ids of concepts linked from id, optionally restricted to one label.
func (s *Service) Related(ctx context.Context, id, label string) ([]string, error) {
	if label != "" && !relation.IsLabel(label) {
		return nil, fmt.Errorf("unknown relation label %q: %w", label, domain.ErrInvalidQuery)
	}
	doc, err := s.Concept(ctx, id)
	if err != nil {
		return nil, err
	}
	related := doc.RelatedIDs(label)
	if related == nil {
		related = []string{}
	}
	return related, nil
}

// String returns the index entry for an exact surface form.
func (s *Service) String(ctx context.Context, value string) (*domstr.Entry, error) {
	if value == "" {
		return nil, fmt.Errorf("string value is required: %w", domain.ErrInvalidQuery)
	}
	e, err := s.strings.ByValue(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("get string: %w", err)
	}
	return e, nil
}

// StringsByID returns the entries for synthetic ids in request order; unknown ids are skipped.
func (s *Service) StringsByID(ctx context.Context, ids []int) ([]*domstr.Entry, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one id is required: %w", domain.ErrInvalidQuery)
	}
	if len(ids) > s.maxBunchSize {
		return nil, fmt.Errorf("at most %d ids per request: %w", s.maxBunchSize, domain.ErrInvalidQuery)
	}

	out := make([]*domstr.Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.strings.Get(ctx, id)
		if errors.Is(err, domain.ErrStringNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get string %d: %w", id, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// ConceptsForString returns every concept whose strings contain value.
func (s *Service) ConceptsForString(ctx context.Context, value string) ([]*domconcept.Document, error) {
	e, err := s.String(ctx, value)
	if err != nil {
		return nil, err
	}
	docs, err := s.concepts.GetMany(ctx, e.Concepts())
	if err != nil {
		return nil, fmt.Errorf("get concepts: %w", err)
	}
	return docs, nil
}

// DefinitionsForString returns the definitions of every concept owning value.
func (s *Service) DefinitionsForString(ctx context.Context, value string) ([]ConceptDefinitions, error) {
	docs, err := s.ConceptsForString(ctx, value)
	if err != nil {
		return nil, err
	}
	return definitionsOf(docs), nil
}

// SearchStrings finds strings matching q and returns them with their owning concepts.
func (s *Service) SearchStrings(ctx context.Context, q string, mode SearchMode, limit int) ([]Match, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidQuery)
	}
	limit = s.clampLimit(limit)

	var (
		entries []*domstr.Entry
		err     error
	)
	switch mode {
	case ModeLexical:
		entries, err = s.strings.ByLexical(ctx, q, limit)
	case ModeSubstring, "":
		entries, err = s.strings.SearchSubstring(ctx, q, limit)
	default:
		return nil, fmt.Errorf("unknown search mode %q: %w", mode, domain.ErrInvalidQuery)
	}
	if err != nil {
		return nil, fmt.Errorf("search strings: %w", err)
	}

	matches := make([]Match, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, Match{Value: e.Value(), Concepts: e.Concepts()})
	}
	return matches, nil
}

// BySemanticType lists concepts of one semantic type.
func (s *Service) BySemanticType(ctx context.Context, name string, offset, limit int) (Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Page{}, fmt.Errorf("semantic type is required: %w", domain.ErrInvalidQuery)
	}
	if offset < 0 {
		return Page{}, fmt.Errorf("offset must not be negative: %w", domain.ErrInvalidQuery)
	}
	docs, total, err := s.concepts.BySemanticType(ctx, name, offset, s.clampLimit(limit))
	if err != nil {
		return Page{}, fmt.Errorf("list semantic type %q: %w", name, err)
	}
	return Page{Concepts: docs, Total: total}, nil
}

// Stats counts stored documents and loads the last run summary.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error

	if st.Concepts, err = s.concepts.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count concepts: %w", err)
	}
	if st.Strings, err = s.strings.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("count strings: %w", err)
	}
	if s.meta != nil {
		summary, ok, err := s.meta.Load(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("load run summary: %w", err)
		}
		if ok {
			st.LastRun = summary
		}
	}
	return st, nil
}

func (s *Service) normalizeIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one concept id is required: %w", domain.ErrInvalidQuery)
	}
	if len(out) > s.maxBunchSize {
		return nil, fmt.Errorf("at most %d ids per request: %w", s.maxBunchSize, domain.ErrInvalidQuery)
	}
	return out, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultPageSize
	}
	return min(limit, s.maxPageSize)
}

func definitionsOf(docs []*domconcept.Document) []ConceptDefinitions {
	out := make([]ConceptDefinitions, 0, len(docs))
	for _, d := range docs {
		defs := d.Definitions()
		if defs == nil {
			defs = []domconcept.Definition{}
		}
		out = append(out, ConceptDefinitions{ConceptID: d.ID(), Definitions: defs})
	}
	return out
}
