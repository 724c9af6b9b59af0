package chi

import (
	"time"

	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
	lookupuc "github.com/kailas-cloud/umlsdex/internal/usecase/lookup"
)

// ErrorCode is a machine-readable error category.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest      ErrorCode = "bad_request"
	ErrorCodeUnauthorized    ErrorCode = "unauthorized"
	ErrorCodeConceptNotFound ErrorCode = "concept_not_found"
	ErrorCodeStringNotFound  ErrorCode = "string_not_found"
	ErrorCodeNotLoaded       ErrorCode = "dataset_not_loaded"
	ErrorCodeInternalError   ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DefinitionResponse is one language-tagged definition.
type DefinitionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// RelationResponse is one outgoing edge.
type RelationResponse struct {
	Target    string `json:"target"`
	Label     string `json:"label"`
	Attribute string `json:"attribute,omitempty"`
}

// ConceptResponse is a concept document.
type ConceptResponse struct {
	ID            string               `json:"id"`
	Preferred     string               `json:"preferred,omitempty"`
	Strings       []string             `json:"strings"`
	Definitions   []DefinitionResponse `json:"definitions"`
	Relations     []RelationResponse   `json:"relations"`
	SemanticTypes []string             `json:"semantic_types,omitempty"`
}

// ConceptListResponse wraps a list of concepts.
type ConceptListResponse struct {
	Items []ConceptResponse `json:"items"`
	Total int               `json:"total"`
}

// RelatedResponse lists related concept ids.
type RelatedResponse struct {
	ID      string   `json:"id"`
	Label   string   `json:"label,omitempty"`
	Related []string `json:"related"`
}

// StringResponse is a string index entry.
type StringResponse struct {
	ID       int      `json:"id"`
	Value    string   `json:"value"`
	Lower    string   `json:"lower"`
	Concepts []string `json:"concepts"`
}

// StringListResponse wraps a list of string entries.
type StringListResponse struct {
	Items []StringResponse `json:"items"`
}

// ConceptDefinitionsResponse groups definitions by concept.
type ConceptDefinitionsResponse struct {
	ConceptID   string               `json:"concept_id"`
	Definitions []DefinitionResponse `json:"definitions"`
}

// DefinitionsListResponse wraps definitions of several concepts.
type DefinitionsListResponse struct {
	Items []ConceptDefinitionsResponse `json:"items"`
}

// MatchResponse is one string search hit.
type MatchResponse struct {
	Value    string   `json:"value"`
	Concepts []string `json:"concepts"`
}

// SearchResponse wraps string search hits.
type SearchResponse struct {
	Query string          `json:"query"`
	Mode  string          `json:"mode"`
	Items []MatchResponse `json:"items"`
}

// RunResponse describes the last completed load.
type RunResponse struct {
	Version     string         `json:"version"`
	Languages   []string       `json:"languages"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Concepts    int            `json:"concepts"`
	Strings     int            `json:"strings"`
	Definitions int            `json:"definitions"`
	Relations   int            `json:"relations"`
	Dropped     map[string]int `json:"dropped"`
}

// StatsResponse describes the stored dataset.
type StatsResponse struct {
	Concepts int          `json:"concepts"`
	Strings  int          `json:"strings"`
	LastRun  *RunResponse `json:"last_run,omitempty"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func conceptToResponse(d *domconcept.Document) ConceptResponse {
	resp := ConceptResponse{
		ID:            d.ID(),
		Preferred:     d.Preferred(),
		Strings:       d.Strings(),
		Definitions:   make([]DefinitionResponse, len(d.Definitions())),
		Relations:     make([]RelationResponse, len(d.Relations())),
		SemanticTypes: d.SemanticTypes(),
	}
	if resp.Strings == nil {
		resp.Strings = []string{}
	}
	for i, def := range d.Definitions() {
		resp.Definitions[i] = DefinitionResponse{Text: def.Text, Language: def.Language}
	}
	for i, rel := range d.Relations() {
		resp.Relations[i] = RelationResponse{Target: rel.Target, Label: rel.Label, Attribute: rel.Attribute}
	}
	return resp
}

func conceptsToResponse(docs []*domconcept.Document, total int) ConceptListResponse {
	items := make([]ConceptResponse, len(docs))
	for i, d := range docs {
		items[i] = conceptToResponse(d)
	}
	return ConceptListResponse{Items: items, Total: total}
}

func stringToResponse(e *domstr.Entry) StringResponse {
	concepts := e.Concepts()
	if concepts == nil {
		concepts = []string{}
	}
	return StringResponse{ID: e.ID(), Value: e.Value(), Lower: e.Lower(), Concepts: concepts}
}

func definitionsToResponse(defs []lookupuc.ConceptDefinitions) DefinitionsListResponse {
	items := make([]ConceptDefinitionsResponse, len(defs))
	for i, cd := range defs {
		out := make([]DefinitionResponse, len(cd.Definitions))
		for j, def := range cd.Definitions {
			out[j] = DefinitionResponse{Text: def.Text, Language: def.Language}
		}
		items[i] = ConceptDefinitionsResponse{ConceptID: cd.ConceptID, Definitions: out}
	}
	return DefinitionsListResponse{Items: items}
}

func runToResponse(s *run.Summary) *RunResponse {
	if s == nil {
		return nil
	}
	dropped := s.Dropped
	if dropped == nil {
		dropped = map[string]int{}
	}
	return &RunResponse{
		Version:     s.Version,
		Languages:   s.Languages,
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		Concepts:    s.Concepts,
		Strings:     s.Strings,
		Definitions: s.Definitions,
		Relations:   s.Relations,
		Dropped:     dropped,
	}
}
