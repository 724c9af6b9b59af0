package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/umlsdex/internal/domain"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
)

// DefaultBatchSize is the number of documents per pipelined write.
const DefaultBatchSize = 500

// Write stages, reported in PersistenceError and stage metrics.
const (
	StageClearConcepts = "clear_concepts"
	StageClearStrings  = "clear_strings"
	StageWriteConcepts = "write_concepts"
	StageWriteStrings  = "write_strings"
	StageIndexConcepts = "index_concepts"
	StageIndexStrings  = "index_strings"
	StageSaveMeta      = "save_meta"
)

// Collection names used in write metrics.
const (
	CollectionConcepts = "concept"
	CollectionStrings  = "string"
)

// Persister replaces the stored dataset with the result of one fold.
// Any store failure aborts with *domain.PersistenceError; nothing is rolled back.
type Persister struct {
	concepts  ConceptWriter
	strings   StringWriter
	meta      MetaWriter
	batchSize int
	obs       Observer
	logger    *zap.Logger
}

// NewPersister creates a persister. meta may be nil to skip the run summary.
func NewPersister(concepts ConceptWriter, strs StringWriter, meta MetaWriter, logger *zap.Logger) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		concepts:  concepts,
		strings:   strs,
		meta:      meta,
		batchSize: DefaultBatchSize,
		obs:       nopObserver{},
		logger:    logger,
	}
}

// WithBatchSize sets the write batch size.
func (p *Persister) WithBatchSize(n int) *Persister {
	if n > 0 {
		p.batchSize = n
	}
	return p
}

// WithObserver sets the metrics sink.
func (p *Persister) WithObserver(o Observer) *Persister {
	if o != nil {
		p.obs = o
	}
	return p
}

// Persist clears both collections, bulk-writes the result, rebuilds the indices and saves the summary.
func (p *Persister) Persist(ctx context.Context, res *Result) error {
	steps := []struct {
		stage string
		fn    func(context.Context) error
	}{
		{StageClearConcepts, func(ctx context.Context) error { return p.clear(ctx, p.concepts.Clear) }},
		{StageClearStrings, func(ctx context.Context) error { return p.clear(ctx, p.strings.Clear) }},
		{StageWriteConcepts, func(ctx context.Context) error {
			return writeBatches(ctx, res.Concepts, p.batchSize, p.concepts.PutMany, p.observeBatch(CollectionConcepts))
		}},
		{StageWriteStrings, func(ctx context.Context) error {
			return writeBatches(ctx, res.Strings.Entries(), p.batchSize, p.strings.PutMany, p.observeBatch(CollectionStrings))
		}},
		{StageIndexConcepts, p.concepts.CreateIndex},
		{StageIndexStrings, p.strings.CreateIndex},
		{StageSaveMeta, func(ctx context.Context) error { return p.saveMeta(ctx, res.Summary) }},
	}

	for _, s := range steps {
		start := time.Now()
		if err := s.fn(ctx); err != nil {
			return domain.NewPersistenceError(s.stage, err)
		}
		took := time.Since(start)
		p.obs.StageDone(s.stage, took)
		p.logger.Info("Write stage done", zap.String("stage", s.stage), zap.Duration("duration", took))
	}
	return nil
}

func (p *Persister) clear(ctx context.Context, fn func(context.Context) (int, error)) error {
	n, err := fn(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("Cleared keys", zap.Int("deleted", n))
	return nil
}

func (p *Persister) saveMeta(ctx context.Context, s *run.Summary) error {
	if p.meta == nil || s == nil {
		return nil
	}
	s.FinishedAt = time.Now().UTC()
	return p.meta.Save(ctx, s)
}

func (p *Persister) observeBatch(collection string) func(int, time.Duration) {
	return func(n int, took time.Duration) {
		p.obs.BatchWritten(collection, n, took)
	}
}

func writeBatches[T any](
	ctx context.Context, items []T, size int,
	put func(context.Context, []T) error, observe func(int, time.Duration),
) error {
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, len(items))
		began := time.Now()
		if err := put(ctx, items[start:end]); err != nil {
			return fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		observe(end-start, time.Since(began))
	}
	return nil
}
