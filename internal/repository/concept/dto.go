package concept

import (
	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
)

// conceptJSON is the stored shape of a concept document.
type conceptJSON struct {
	ID            string           `json:"id"`
	Preferred     string           `json:"preferred,omitempty"`
	Strings       []string         `json:"strings"`
	Definitions   []definitionJSON `json:"definitions"`
	Relations     []relationJSON   `json:"relations"`
	SemanticTypes []string         `json:"semantic_types,omitempty"`
}

type definitionJSON struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type relationJSON struct {
	Target    string `json:"target"`
	Label     string `json:"label"`
	Attribute string `json:"attribute,omitempty"`
}

func toJSON(doc *domconcept.Document) conceptJSON {
	out := conceptJSON{
		ID:            doc.ID(),
		Preferred:     doc.Preferred(),
		Strings:       doc.Strings(),
		Definitions:   make([]definitionJSON, len(doc.Definitions())),
		Relations:     make([]relationJSON, len(doc.Relations())),
		SemanticTypes: doc.SemanticTypes(),
	}
	if out.Strings == nil {
		out.Strings = []string{}
	}
	for i, d := range doc.Definitions() {
		out.Definitions[i] = definitionJSON{Text: d.Text, Language: d.Language}
	}
	for i, r := range doc.Relations() {
		out.Relations[i] = relationJSON{Target: r.Target, Label: r.Label, Attribute: r.Attribute}
	}
	return out
}

func fromJSON(c conceptJSON) *domconcept.Document {
	defs := make([]domconcept.Definition, len(c.Definitions))
	for i, d := range c.Definitions {
		defs[i] = domconcept.Definition{Text: d.Text, Language: d.Language}
	}
	rels := make([]domconcept.Relation, len(c.Relations))
	for i, r := range c.Relations {
		rels[i] = domconcept.Relation{Target: r.Target, Label: r.Label, Attribute: r.Attribute}
	}
	return domconcept.Reconstruct(c.ID, c.Preferred, c.Strings, defs, rels, c.SemanticTypes)
}
