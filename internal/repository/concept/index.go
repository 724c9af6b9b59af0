package concept

import (
	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/domain"
)

const (
	idField           = "id"
	semanticTypeField = "semtype"
)

// buildIndex defines concept:idx: exact id lookups and semantic type filtering.
func buildIndex(keys domain.Keyspace) (*db.IndexDefinition, error) {
	return db.NewIndex(keys.ConceptIndex()).
		Prefix(keys.ConceptPrefix()).
		TagAs("$.id", idField, true).
		TagAs("$.semantic_types[*]", semanticTypeField, false).
		Build()
}
