package stringindex

import "github.com/kailas-cloud/umlsdex/internal/domain/concept"

// Index is the reverse mapping of one run: distinct strings to their owning concepts.
type Index struct {
	entries []*Entry
	byValue map[string]*Entry
}

// Build walks docs in order and their strings in order. The first occurrence of a value
// takes the next id starting at FirstID; every occurrence records its concept once.
func Build(docs []*concept.Document) *Index {
	idx := &Index{byValue: make(map[string]*Entry)}
	next := FirstID
	for _, d := range docs {
		for _, s := range d.Strings() {
			e, ok := idx.byValue[s]
			if !ok {
				e = New(next, s)
				next++
				idx.byValue[s] = e
				idx.entries = append(idx.entries, e)
			}
			e.AddConcept(d.ID())
		}
	}
	return idx
}

// Entries returns entries in id order.
func (i *Index) Entries() []*Entry { return i.entries }

// Lookup returns the entry for an exact value.
func (i *Index) Lookup(value string) (*Entry, bool) {
	e, ok := i.byValue[value]
	return e, ok
}

// Len returns the number of distinct strings.
func (i *Index) Len() int { return len(i.entries) }
