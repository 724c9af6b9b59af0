package concept

// Definition is a definition text with the language guessed for it.
type Definition struct {
	Text     string
	Language string
}

// Relation is a directed edge from the owning concept to Target.
// Attribute carries the raw secondary code (RELA) and never changes Label.
type Relation struct {
	Target    string
	Label     string
	Attribute string
}

// Document is the concept aggregate. Strings behave as an ordered set.
type Document struct {
	id            string
	preferred     string
	strings       []string
	stringSet     map[string]struct{}
	definitions   []Definition
	relations     []Relation
	semanticTypes []string
}

// New creates an empty document for a concept id.
func New(id string) *Document {
	return &Document{id: id, stringSet: make(map[string]struct{})}
}

// Reconstruct creates a Document from stored fields (storage hydration, no validation).
func Reconstruct(
	id, preferred string, strs []string, defs []Definition, rels []Relation, semTypes []string,
) *Document {
	d := New(id)
	d.preferred = preferred
	for _, s := range strs {
		d.AddString(s)
	}
	d.definitions = defs
	d.relations = rels
	d.semanticTypes = semTypes
	return d
}

// ID returns the concept identifier.
func (d *Document) ID() string { return d.id }

// Preferred returns the preferred surface form, or "" when none was marked.
func (d *Document) Preferred() string { return d.preferred }

// Strings returns surface forms in first-seen order.
func (d *Document) Strings() []string { return d.strings }

// Definitions returns definitions in source order.
func (d *Document) Definitions() []Definition { return d.definitions }

// Relations returns outgoing edges in source order.
func (d *Document) Relations() []Relation { return d.relations }

// SemanticTypes returns semantic type names in source order.
func (d *Document) SemanticTypes() []string { return d.semanticTypes }

// HasStrings reports whether at least one surface form survived filtering.
func (d *Document) HasStrings() bool { return len(d.strings) > 0 }

// HasString reports whether s is one of the document's surface forms.
func (d *Document) HasString(s string) bool {
	_, ok := d.stringSet[s]
	return ok
}

// AddString inserts s unless a byte-identical string is already present. Returns true if added.
func (d *Document) AddString(s string) bool {
	if _, ok := d.stringSet[s]; ok {
		return false
	}
	d.stringSet[s] = struct{}{}
	d.strings = append(d.strings, s)
	return true
}

// MarkPreferred sets the preferred form once; later calls are ignored.
func (d *Document) MarkPreferred(s string) {
	if d.preferred == "" {
		d.preferred = s
	}
}

// AddDefinition appends a definition.
func (d *Document) AddDefinition(def Definition) {
	d.definitions = append(d.definitions, def)
}

// AddRelation appends an edge.
func (d *Document) AddRelation(rel Relation) {
	d.relations = append(d.relations, rel)
}

// AddSemanticType appends a semantic type name unless already present.
func (d *Document) AddSemanticType(name string) {
	for _, t := range d.semanticTypes {
		if t == name {
			return
		}
	}
	d.semanticTypes = append(d.semanticTypes, name)
}

// RelatedIDs returns edge targets, optionally restricted to one label ("" means all).
func (d *Document) RelatedIDs(label string) []string {
	var out []string
	for _, r := range d.relations {
		if label == "" || r.Label == label {
			out = append(out, r.Target)
		}
	}
	return out
}
