package ingest

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.uber.org/zap"

	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
	"github.com/kailas-cloud/umlsdex/internal/langid"
	"github.com/kailas-cloud/umlsdex/internal/rrf"
	"github.com/kailas-cloud/umlsdex/internal/version"
)

// Fold stages, reported in stage metrics.
const (
	StageFoldStrings       = "fold_strings"
	StageFoldDefinitions   = "fold_definitions"
	StageFoldSemanticTypes = "fold_semantic_types"
	StageFoldRelations     = "fold_relations"
	StageBuildStrings      = "build_strings"
)

// Options controls what a load reads and how.
type Options struct {
	Languages              []string
	ProcessDefinitions     bool
	ProcessSemanticTypes   bool
	ProcessRelations       bool
	StripHTML              bool
	FilterDetectedLanguage bool
	ProgressEvery          int
}

// Sources are the record streams of one load. A nil stream is skipped.
type Sources struct {
	Strings       iter.Seq2[rrf.Record, error]
	Definitions   iter.Seq2[rrf.Record, error]
	SemanticTypes iter.Seq2[rrf.Record, error]
	Relations     iter.Seq2[rrf.Record, error]
}

// DirSources opens the standard tables under a META directory, honouring the Process* options.
func DirSources(dir string, opts Options) Sources {
	src := Sources{Strings: rrf.NewTable(dir, rrf.MRCONSO).Records()}
	if opts.ProcessDefinitions {
		src.Definitions = rrf.NewTable(dir, rrf.MRDEF).Records()
	}
	if opts.ProcessSemanticTypes {
		src.SemanticTypes = rrf.NewTable(dir, rrf.MRSTY).Records()
	}
	if opts.ProcessRelations {
		src.Relations = rrf.NewTable(dir, rrf.MRREL).Records()
	}
	return src
}

// Result is the derived dataset of one fold.
type Result struct {
	// Concepts holds every concept that kept at least one string, in first-seen order.
	Concepts []*domconcept.Document
	Strings  *domstr.Index
	Summary  *run.Summary
}

// Pipeline folds source tables into concept documents and a string index, then persists them.
type Pipeline struct {
	opts      Options
	langs     *LanguageFilter
	tagger    *DefinitionTagger
	persister *Persister
	obs       Observer
	logger    *zap.Logger
}

// New creates a pipeline. persister may be nil when only Fold is used.
func New(opts Options, detector langid.Detector, persister *Persister, logger *zap.Logger) (*Pipeline, error) {
	langs, err := NewLanguageFilter(opts.Languages)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tagger := NewDefinitionTagger(detector)
	if opts.StripHTML {
		tagger.WithPreprocessor(StripHTML)
	}
	if opts.FilterDetectedLanguage {
		tagger.WithLanguageFilter(langs)
	}

	return &Pipeline{
		opts:      opts,
		langs:     langs,
		tagger:    tagger,
		persister: persister,
		obs:       nopObserver{},
		logger:    logger,
	}, nil
}

// WithObserver sets the metrics sink for folding and writing.
func (p *Pipeline) WithObserver(o Observer) *Pipeline {
	if o != nil {
		p.obs = o
		if p.persister != nil {
			p.persister.WithObserver(o)
		}
	}
	return p
}

// Run folds src and replaces the stored dataset with the result.
func (p *Pipeline) Run(ctx context.Context, src Sources) (*run.Summary, error) {
	if p.persister == nil {
		return nil, errors.New("pipeline has no persister")
	}
	res, err := p.Fold(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := p.persister.Persist(ctx, res); err != nil {
		return nil, err
	}
	p.logSummary(res.Summary)
	return res.Summary, nil
}

// Fold reads every source in order MRCONSO, MRDEF, MRSTY, MRREL and builds the string index.
// Nothing touches the store.
func (p *Pipeline) Fold(ctx context.Context, src Sources) (*Result, error) {
	summary := &run.Summary{
		Version:   version.Version,
		Languages: p.langs.Languages(),
		StartedAt: time.Now().UTC(),
	}
	acc := domconcept.NewAccumulator()
	folder := NewFolder(p.langs, p.tagger, summary, p.logger).
		WithObserver(p.obs).
		WithProgressEvery(p.opts.ProgressEvery)

	stages := []struct {
		name    string
		records iter.Seq2[rrf.Record, error]
		fold    func(context.Context, *domconcept.Accumulator, iter.Seq2[rrf.Record, error]) error
	}{
		{StageFoldStrings, src.Strings, folder.Strings},
		{StageFoldDefinitions, src.Definitions, folder.Definitions},
		{StageFoldSemanticTypes, src.SemanticTypes, folder.SemanticTypes},
		{StageFoldRelations, src.Relations, folder.Relations},
	}
	for _, s := range stages {
		if s.records == nil {
			continue
		}
		start := time.Now()
		if err := s.fold(ctx, acc, s.records); err != nil {
			return nil, err
		}
		p.obs.StageDone(s.name, time.Since(start))
	}

	start := time.Now()
	docs := make([]*domconcept.Document, 0, acc.Len())
	for _, d := range acc.All() {
		if !d.HasStrings() {
			summary.Drop(TableConcept, run.ReasonIneligibleConcept)
			p.obs.RowDropped(TableConcept, run.ReasonIneligibleConcept)
			continue
		}
		docs = append(docs, d)
		summary.Definitions += len(d.Definitions())
		summary.Relations += len(d.Relations())
	}
	idx := domstr.Build(docs)
	p.obs.StageDone(StageBuildStrings, time.Since(start))

	summary.Concepts = len(docs)
	summary.Strings = idx.Len()

	return &Result{Concepts: docs, Strings: idx, Summary: summary}, nil
}

func (p *Pipeline) logSummary(s *run.Summary) {
	fields := []zap.Field{
		zap.Strings("languages", s.Languages),
		zap.Int("concepts", s.Concepts),
		zap.Int("strings", s.Strings),
		zap.Int("definitions", s.Definitions),
		zap.Int("relations", s.Relations),
		zap.Int("dropped", s.TotalDropped()),
	}
	for _, k := range s.DropKeys() {
		fields = append(fields, zap.Int("dropped."+k, s.Dropped[k]))
	}
	p.logger.Info("Load complete", fields...)
}
