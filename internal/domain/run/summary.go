package run

import (
	"sort"
	"time"
)

// Drop reasons recorded while folding source rows.
const (
	ReasonLanguage           = "language"
	ReasonNoise              = "noise"
	ReasonEmptyID            = "empty_id"
	ReasonMalformed          = "malformed"
	ReasonUnknownRelation    = "unknown_relation"
	ReasonIneligibleEndpoint = "ineligible_endpoint"
	ReasonDefinitionLanguage = "definition_language"
	ReasonEmptyText          = "empty_text"
	ReasonIneligibleConcept  = "ineligible_concept"
)

// Summary describes one completed load.
type Summary struct {
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

// Drop increments the skip counter for table and reason.
func (s *Summary) Drop(table, reason string) {
	if s.Dropped == nil {
		s.Dropped = make(map[string]int)
	}
	s.Dropped[DropKey(table, reason)]++
}

// DroppedFor returns the skip count for table and reason.
func (s *Summary) DroppedFor(table, reason string) int {
	return s.Dropped[DropKey(table, reason)]
}

// TotalDropped sums all skip counters.
func (s *Summary) TotalDropped() int {
	n := 0
	for _, v := range s.Dropped {
		n += v
	}
	return n
}

// DropKeys returns the recorded skip counter keys in sorted order.
func (s *Summary) DropKeys() []string {
	keys := make([]string, 0, len(s.Dropped))
	for k := range s.Dropped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Duration is the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// DropKey joins table and reason into a counter key.
func DropKey(table, reason string) string {
	return table + "." + reason
}
