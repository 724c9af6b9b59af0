package stringindex

import (
	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/domain"
)

const (
	valueField = "value"
	lowerField = "lower"
	textField  = "text"
)

// buildIndex defines string:idx. textSearchEnabled adds a TEXT field over $.value for
// substring queries; valkey-search has no TEXT support.
func buildIndex(keys domain.Keyspace, textSearchEnabled bool) (*db.IndexDefinition, error) {
	b := db.NewIndex(keys.StringIndex()).
		Prefix(keys.StringPrefix()).
		TagAs("$.value", valueField, true).
		TagAs("$.lower", lowerField, false)
	if textSearchEnabled {
		b = b.TextAs("$.value", textField)
	}
	return b.Build()
}
