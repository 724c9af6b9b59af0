package ingest

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/umlsdex/internal/domain"
	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/relation"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	"github.com/kailas-cloud/umlsdex/internal/rrf"
)

// Table names used in drop counters and metrics.
const (
	TableStrings       = "MRCONSO"
	TableDefinitions   = "MRDEF"
	TableSemanticTypes = "MRSTY"
	TableRelations     = "MRREL"
	TableConcept       = "concept"
)

// preferredTermStatus marks the preferred term of a concept in MRCONSO TS.
const preferredTermStatus = "P"

// Folder merges source rows into an accumulator and counts every skipped row.
type Folder struct {
	langs         *LanguageFilter
	tagger        *DefinitionTagger
	summary       *run.Summary
	obs           Observer
	logger        *zap.Logger
	progressEvery int
}

// NewFolder creates a folder that records drops into summary.
func NewFolder(langs *LanguageFilter, tagger *DefinitionTagger, summary *run.Summary, logger *zap.Logger) *Folder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tagger == nil {
		tagger = NewDefinitionTagger(nil)
	}
	return &Folder{
		langs:   langs,
		tagger:  tagger,
		summary: summary,
		obs:     nopObserver{},
		logger:  logger,
	}
}

// WithObserver sets the metrics sink.
func (f *Folder) WithObserver(o Observer) *Folder {
	if o != nil {
		f.obs = o
	}
	return f
}

// WithProgressEvery logs progress every n rows per table (0 disables).
func (f *Folder) WithProgressEvery(n int) *Folder {
	f.progressEvery = n
	return f
}

// Strings folds MRCONSO rows: language and length filtering, string dedup, preferred form.
func (f *Folder) Strings(ctx context.Context, acc *domconcept.Accumulator, records iter.Seq2[rrf.Record, error]) error {
	return f.each(ctx, TableStrings, records, func(rec rrf.Record) {
		cui := rec.Get(rrf.ColCUI)
		str := rec.Get(rrf.ColSTR)

		if !f.langs.Allows(rec.Get(rrf.ColLAT)) {
			f.drop(TableStrings, run.ReasonLanguage)
			return
		}
		if !KeepString(str) {
			f.drop(TableStrings, run.ReasonNoise)
			return
		}
		if cui == "" {
			f.warn(TableStrings, run.ReasonEmptyID, rec)
			return
		}
		if str == "" {
			f.drop(TableStrings, run.ReasonEmptyText)
			return
		}

		doc := acc.GetOrCreate(cui)
		doc.AddString(str)
		if rec.Get(rrf.ColTS) == preferredTermStatus {
			doc.MarkPreferred(str)
		}
	})
}

// Definitions folds MRDEF rows into language-tagged definitions.
func (f *Folder) Definitions(ctx context.Context, acc *domconcept.Accumulator, records iter.Seq2[rrf.Record, error]) error {
	return f.each(ctx, TableDefinitions, records, func(rec rrf.Record) {
		cui := rec.Get(rrf.ColCUI)
		if cui == "" {
			f.warn(TableDefinitions, run.ReasonEmptyID, rec)
			return
		}
		text := rec.Get(rrf.ColDEF)
		if strings.TrimSpace(text) == "" {
			f.warn(TableDefinitions, run.ReasonEmptyText, rec)
			return
		}

		def, keep := f.tagger.Tag(text)
		if strings.TrimSpace(def.Text) == "" {
			f.drop(TableDefinitions, run.ReasonEmptyText)
			return
		}
		if !keep {
			f.drop(TableDefinitions, run.ReasonDefinitionLanguage)
			return
		}
		acc.GetOrCreate(cui).AddDefinition(def)
	})
}

// SemanticTypes folds MRSTY rows onto concepts that kept at least one string.
func (f *Folder) SemanticTypes(ctx context.Context, acc *domconcept.Accumulator, records iter.Seq2[rrf.Record, error]) error {
	return f.each(ctx, TableSemanticTypes, records, func(rec rrf.Record) {
		cui := rec.Get(rrf.ColCUI)
		if cui == "" {
			f.warn(TableSemanticTypes, run.ReasonEmptyID, rec)
			return
		}
		sty := rec.Get(rrf.ColSTY)
		if sty == "" {
			f.drop(TableSemanticTypes, run.ReasonEmptyText)
			return
		}
		if !acc.Eligible(cui) {
			f.drop(TableSemanticTypes, run.ReasonIneligibleConcept)
			return
		}
		doc, _ := acc.Get(cui)
		doc.AddSemanticType(sty)
	})
}

// Relations folds MRREL rows into labelled edges stored on CUI2 and pointing at CUI1.
// Both endpoints must be eligible; unknown REL codes are skipped with a warning.
func (f *Folder) Relations(ctx context.Context, acc *domconcept.Accumulator, records iter.Seq2[rrf.Record, error]) error {
	return f.each(ctx, TableRelations, records, func(rec rrf.Record) {
		target := rec.Get(rrf.ColCUI1)
		source := rec.Get(rrf.ColCUI2)
		if target == "" || source == "" {
			f.warn(TableRelations, run.ReasonEmptyID, rec)
			return
		}

		code, err := relation.Parse(rec.Get(rrf.ColREL))
		if err != nil {
			f.drop(TableRelations, run.ReasonUnknownRelation)
			f.logger.Warn("Relation skipped",
				zap.Int("line", rec.Line()),
				zap.String("source", source),
				zap.String("target", target),
				zap.Error(err),
			)
			return
		}
		if !acc.Eligible(source) || !acc.Eligible(target) {
			f.drop(TableRelations, run.ReasonIneligibleEndpoint)
			return
		}

		doc, _ := acc.Get(source)
		doc.AddRelation(domconcept.Relation{
			Target:    target,
			Label:     code.Label(),
			Attribute: rec.Get(rrf.ColRELA),
		})
	})
}

func (f *Folder) each(
	ctx context.Context, table string, records iter.Seq2[rrf.Record, error], fn func(rrf.Record),
) error {
	rows := 0
	for rec, err := range records {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("fold %s: %w", table, ctxErr)
		}
		if err != nil {
			var mre *domain.MalformedRecordError
			if !errors.As(err, &mre) {
				return fmt.Errorf("fold %s: %w", table, err)
			}
			rows++
			f.obs.RowRead(table)
			f.drop(table, run.ReasonMalformed)
			f.logger.Warn("Malformed record skipped",
				zap.String("table", table),
				zap.Int("line", mre.Line),
				zap.Int("got", mre.Got),
				zap.Int("want", mre.Want),
			)
			continue
		}

		rows++
		f.obs.RowRead(table)
		fn(rec)

		if f.progressEvery > 0 && rows%f.progressEvery == 0 {
			f.logger.Info("Fold progress", zap.String("table", table), zap.Int("rows", rows))
		}
	}
	f.logger.Info("Table folded", zap.String("table", table), zap.Int("rows", rows))
	return nil
}

func (f *Folder) drop(table, reason string) {
	f.summary.Drop(table, reason)
	f.obs.RowDropped(table, reason)
}

func (f *Folder) warn(table, reason string, rec rrf.Record) {
	f.drop(table, reason)
	f.logger.Warn("Record skipped",
		zap.String("table", table),
		zap.String("reason", reason),
		zap.Int("line", rec.Line()),
	)
}
