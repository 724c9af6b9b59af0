package umlsdex

import (
	"time"

	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
	lookupuc "github.com/kailas-cloud/umlsdex/internal/usecase/lookup"
)

// SearchMode controls how Strings().Search matches the query.
type SearchMode string

// Search mode constants.
const (
	ModeSubstring SearchMode = "substring"
	ModeLexical   SearchMode = "lexical"
)

// Concept is a denormalized concept document.
type Concept struct {
	ID            string
	Preferred     string
	Strings       []string
	Definitions   []Definition
	Relations     []Relation
	SemanticTypes []string
}

// Definition is a definition text with its detected ISO 639-1 language ("und" if unknown).
type Definition struct {
	Text     string
	Language string
}

// Relation is an outgoing edge. Label is the relation's readable name, Attribute the raw RELA code.
type Relation struct {
	Target    string
	Label     string
	Attribute string
}

// StringEntry is one distinct surface string and the concepts that carry it.
type StringEntry struct {
	ID       int
	Value    string
	Concepts []string
}

// Match is a search hit.
type Match struct {
	Value    string
	Concepts []string
}

// ConceptDefinitions pairs a concept id with its definitions.
type ConceptDefinitions struct {
	ConceptID   string
	Definitions []Definition
}

// ConceptPage is a window of concepts plus the total number of hits.
type ConceptPage struct {
	Concepts []Concept
	Total    int
}

// LoadOptions controls Load. Tables are processed unless explicitly skipped.
type LoadOptions struct {
	// Languages lists UMLS language codes to keep (ENG, SPA, ...). Required.
	Languages              []string
	SkipDefinitions        bool
	SkipSemanticTypes      bool
	SkipRelations          bool
	StripHTML              bool
	FilterDetectedLanguage bool
}

// LoadSummary reports a completed load.
type LoadSummary struct {
	Version     string
	Languages   []string
	StartedAt   time.Time
	FinishedAt  time.Time
	Concepts    int
	Strings     int
	Definitions int
	Relations   int
	// Dropped counts skipped rows per "<table>.<reason>".
	Dropped map[string]int
}

// Stats describes the stored dataset. LastLoad is nil before the first load.
type Stats struct {
	Concepts int
	Strings  int
	LastLoad *LoadSummary
}

func conceptFromDomain(d *domconcept.Document) Concept {
	c := Concept{
		ID:            d.ID(),
		Preferred:     d.Preferred(),
		Strings:       d.Strings(),
		Definitions:   definitionsFromDomain(d.Definitions()),
		SemanticTypes: d.SemanticTypes(),
	}
	for _, r := range d.Relations() {
		c.Relations = append(c.Relations, Relation{Target: r.Target, Label: r.Label, Attribute: r.Attribute})
	}
	return c
}

func conceptsFromDomain(docs []*domconcept.Document) []Concept {
	out := make([]Concept, len(docs))
	for i, d := range docs {
		out[i] = conceptFromDomain(d)
	}
	return out
}

func definitionsFromDomain(defs []domconcept.Definition) []Definition {
	if len(defs) == 0 {
		return nil
	}
	out := make([]Definition, len(defs))
	for i, d := range defs {
		out[i] = Definition{Text: d.Text, Language: d.Language}
	}
	return out
}

func conceptDefinitionsFromDomain(in []lookupuc.ConceptDefinitions) []ConceptDefinitions {
	out := make([]ConceptDefinitions, len(in))
	for i, cd := range in {
		out[i] = ConceptDefinitions{ConceptID: cd.ConceptID, Definitions: definitionsFromDomain(cd.Definitions)}
	}
	return out
}

func entryFromDomain(e *domstr.Entry) StringEntry {
	return StringEntry{ID: e.ID(), Value: e.Value(), Concepts: e.Concepts()}
}

func summaryFromDomain(s *run.Summary) *LoadSummary {
	if s == nil {
		return nil
	}
	return &LoadSummary{
		Version:     s.Version,
		Languages:   s.Languages,
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		Concepts:    s.Concepts,
		Strings:     s.Strings,
		Definitions: s.Definitions,
		Relations:   s.Relations,
		Dropped:     s.Dropped,
	}
}
