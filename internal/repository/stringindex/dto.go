package stringindex

import (
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
)

// entryJSON is the stored shape of a string index entry.
type entryJSON struct {
	ID       int      `json:"id"`
	Value    string   `json:"value"`
	Lower    string   `json:"lower"`
	Concepts []string `json:"concepts"`
}

func toJSON(e *domstr.Entry) entryJSON {
	concepts := e.Concepts()
	if concepts == nil {
		concepts = []string{}
	}
	return entryJSON{ID: e.ID(), Value: e.Value(), Lower: e.Lower(), Concepts: concepts}
}

func fromJSON(e entryJSON) *domstr.Entry {
	return domstr.Reconstruct(e.ID, e.Value, e.Lower, e.Concepts)
}
