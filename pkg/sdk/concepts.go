package umlsdex

import (
	"context"
	"fmt"
	"time"
)

// ConceptService reads concept documents.
type ConceptService struct {
	svc lookupUseCase
	obs *observer
}

// Get returns one concept by CUI.
func (s *ConceptService) Get(ctx context.Context, id string) (_ Concept, err error) {
	start := time.Now()
	defer func() { s.obs.observe("concept_get", start, err) }()

	doc, err := s.svc.Concept(ctx, id)
	if err != nil {
		return Concept{}, fmt.Errorf("get concept %s: %w", id, err)
	}
	return conceptFromDomain(doc), nil
}

// GetMany returns the concepts that exist among ids, in request order. Missing ids are skipped.
func (s *ConceptService) GetMany(ctx context.Context, ids []string) (_ []Concept, err error) {
	start := time.Now()
	defer func() { s.obs.observe("concept_get_many", start, err) }()

	docs, err := s.svc.Concepts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get concepts: %w", err)
	}
	return conceptsFromDomain(docs), nil
}

// Definitions returns the definitions of each existing concept among ids.
func (s *ConceptService) Definitions(ctx context.Context, ids []string) (_ []ConceptDefinitions, err error) {
	start := time.Now()
	defer func() { s.obs.observe("concept_definitions", start, err) }()

	defs, err := s.svc.Definitions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get definitions: %w", err)
	}
	return conceptDefinitionsFromDomain(defs), nil
}

// Related returns the targets of a concept's outgoing edges. An empty label returns all of them.
func (s *ConceptService) Related(ctx context.Context, id, label string) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("concept_related", start, err) }()

	ids, err := s.svc.Related(ctx, id, label)
	if err != nil {
		return nil, fmt.Errorf("related %s: %w", id, err)
	}
	return ids, nil
}

// BySemanticType pages through concepts carrying a semantic type name.
func (s *ConceptService) BySemanticType(
	ctx context.Context, name string, offset, limit int,
) (_ ConceptPage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("concept_by_semantic_type", start, err) }()

	page, err := s.svc.BySemanticType(ctx, name, offset, limit)
	if err != nil {
		return ConceptPage{}, fmt.Errorf("semantic type %q: %w", name, err)
	}
	return ConceptPage{Concepts: conceptsFromDomain(page.Concepts), Total: page.Total}, nil
}
