package umlsdex

import (
	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConceptNotFound = domain.ErrConceptNotFound
	ErrStringNotFound  = domain.ErrStringNotFound
	ErrUnknownLanguage = domain.ErrUnknownLanguage
	ErrInvalidQuery    = domain.ErrInvalidQuery
	ErrPersistence     = domain.ErrPersistence
	// ErrNotLoaded is returned by lookups against a database no load has completed on.
	ErrNotLoaded = db.ErrIndexNotFound
)
