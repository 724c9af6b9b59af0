package concept

// Accumulator holds every concept document of a run, keyed by id, in insertion order.
// It is passed explicitly into each folding step; it is not safe for concurrent use.
type Accumulator struct {
	docs  map[string]*Document
	order []string
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{docs: make(map[string]*Document)}
}

// Get returns the document for id.
func (a *Accumulator) Get(id string) (*Document, bool) {
	d, ok := a.docs[id]
	return d, ok
}

// GetOrCreate returns the document for id, creating an empty one on first use.
func (a *Accumulator) GetOrCreate(id string) *Document {
	if d, ok := a.docs[id]; ok {
		return d
	}
	d := New(id)
	a.docs[id] = d
	a.order = append(a.order, id)
	return d
}

// Eligible reports whether id has a document with at least one surviving string.
func (a *Accumulator) Eligible(id string) bool {
	d, ok := a.docs[id]
	return ok && d.HasStrings()
}

// Len returns the number of documents.
func (a *Accumulator) Len() int { return len(a.order) }

// All returns documents in insertion order.
func (a *Accumulator) All() []*Document {
	out := make([]*Document, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.docs[id])
	}
	return out
}
