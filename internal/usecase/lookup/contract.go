package lookup

import (
	"context"

	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
)

// ConceptReader reads stored concept documents.
type ConceptReader interface {
	Get(ctx context.Context, id string) (*domconcept.Document, error)
	GetMany(ctx context.Context, ids []string) ([]*domconcept.Document, error)
	BySemanticType(ctx context.Context, name string, offset, limit int) ([]*domconcept.Document, int, error)
	Count(ctx context.Context) (int, error)
}

// StringReader reads the string index.
type StringReader interface {
	Get(ctx context.Context, id int) (*domstr.Entry, error)
	ByValue(ctx context.Context, value string) (*domstr.Entry, error)
	ByLexical(ctx context.Context, s string, limit int) ([]*domstr.Entry, error)
	SearchSubstring(ctx context.Context, term string, limit int) ([]*domstr.Entry, error)
	Count(ctx context.Context) (int, error)
}

// SummaryReader loads the summary of the last completed load.
type SummaryReader interface {
	Load(ctx context.Context) (*run.Summary, bool, error)
}
