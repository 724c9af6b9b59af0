package stringindex

import (
	"strconv"
	"strings"
	"unicode"
)

// FirstID is the id given to the first distinct string of a run. Ids are dense from here.
const FirstID = 1

// Entry maps one distinct surface string to the concepts that contain it.
type Entry struct {
	id         int
	value      string
	lower      string
	concepts   []string
	conceptSet map[string]struct{}
}

// New creates an entry without owners.
func New(id int, value string) *Entry {
	return &Entry{
		id:         id,
		value:      value,
		lower:      Lexical(value),
		conceptSet: make(map[string]struct{}),
	}
}

// Reconstruct creates an Entry from stored fields (storage hydration).
func Reconstruct(id int, value, lower string, concepts []string) *Entry {
	e := New(id, value)
	if lower != "" {
		e.lower = lower
	}
	for _, c := range concepts {
		e.AddConcept(c)
	}
	return e
}

// ID returns the synthetic identifier.
func (e *Entry) ID() int { return e.id }

// Key returns the identifier formatted for use in store keys.
func (e *Entry) Key() string { return strconv.Itoa(e.id) }

// Value returns the exact string text.
func (e *Entry) Value() string { return e.value }

// Lower returns the lexical form of the value.
func (e *Entry) Lower() string { return e.lower }

// Concepts returns owning concept ids in first-seen order.
func (e *Entry) Concepts() []string { return e.concepts }

// AddConcept records an owning concept. Returns false if it was already recorded.
func (e *Entry) AddConcept(id string) bool {
	if _, ok := e.conceptSet[id]; ok {
		return false
	}
	e.conceptSet[id] = struct{}{}
	e.concepts = append(e.concepts, id)
	return true
}

// HasConcept reports whether id owns the string.
func (e *Entry) HasConcept(id string) bool {
	_, ok := e.conceptSet[id]
	return ok
}

// Lexical lower-cases s, replaces every non-word rune with a space and collapses whitespace.
// "Tumor, Malignant (NOS)" -> "tumor malignant nos".
func Lexical(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}
