package ingest

import (
	"context"
	"time"

	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
)

// ConceptWriter replaces the concept collection.
type ConceptWriter interface {
	Clear(ctx context.Context) (int, error)
	PutMany(ctx context.Context, docs []*domconcept.Document) error
	CreateIndex(ctx context.Context) error
}

// StringWriter replaces the string index collection.
type StringWriter interface {
	Clear(ctx context.Context) (int, error)
	PutMany(ctx context.Context, entries []*domstr.Entry) error
	CreateIndex(ctx context.Context) error
}

// MetaWriter records the run summary.
type MetaWriter interface {
	Save(ctx context.Context, s *run.Summary) error
}

// Observer receives loader instrumentation. *metrics.Loader satisfies it.
type Observer interface {
	RowRead(table string)
	RowDropped(table, reason string)
	BatchWritten(collection string, size int, took time.Duration)
	StageDone(stage string, took time.Duration)
}

type nopObserver struct{}

func (nopObserver) RowRead(string) {}
func (nopObserver) RowDropped(string, string) {}
func (nopObserver) BatchWritten(string, int, time.Duration) {}
func (nopObserver) StageDone(string, time.Duration) {}
