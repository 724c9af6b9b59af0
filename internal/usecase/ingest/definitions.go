package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/langid"
)

// Preprocessor rewrites definition text before language detection.
type Preprocessor func(text string) string

// StripHTML reduces markup to its text content with whitespace collapsed.
// Text without '<' or '&' is returned unchanged.
func StripHTML(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// DefinitionTagger attaches a detected language to definition text.
type DefinitionTagger struct {
	detector   langid.Detector
	preprocess Preprocessor
	langs      *LanguageFilter
}

// NewDefinitionTagger creates a tagger. A nil detector tags everything as langid.Undetermined.
func NewDefinitionTagger(detector langid.Detector) *DefinitionTagger {
	if detector == nil {
		detector = langid.DetectorFunc(func(string) langid.Guess {
			return langid.Guess{Code: langid.Undetermined}
		})
	}
	return &DefinitionTagger{detector: detector}
}

// WithPreprocessor sets a rewrite applied before detection.
func (t *DefinitionTagger) WithPreprocessor(p Preprocessor) *DefinitionTagger {
	t.preprocess = p
	return t
}

// WithLanguageFilter rejects definitions whose detected language is not allowed by f.
func (t *DefinitionTagger) WithLanguageFilter(f *LanguageFilter) *DefinitionTagger {
	t.langs = f
	return t
}

// Tag returns the definition for text and whether it should be kept.
// The detected code is always a syntactically valid language code.
func (t *DefinitionTagger) Tag(text string) (domconcept.Definition, bool) {
	if t.preprocess != nil {
		text = t.preprocess(text)
	}
	code := t.detector.Detect(text).Code
	if !langid.ValidCode(code) {
		code = langid.Undetermined
	}
	if t.langs != nil && !t.langs.AllowsISO(code) {
		return domconcept.Definition{Text: text, Language: code}, false
	}
	return domconcept.Definition{Text: text, Language: code}, true
}
