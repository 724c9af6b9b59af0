// Package langid guesses the natural language of a text.
package langid

import (
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/kailas-cloud/umlsdex/internal/domain/language"
)

// Undetermined is returned when no language can be guessed (ISO 639-2 "und").
const Undetermined = "und"

var codeRegex = regexp.MustCompile(`^[a-z]{2,3}$`)

// Guess is a best-guess language code with the classifier's confidence in [0, 1].
type Guess struct {
	Code       string
	Confidence float64
}

// Detector classifies text. It always returns a guess, however weak.
type Detector interface {
	Detect(text string) Guess
}

// DetectorFunc adapts a plain function to Detector.
type DetectorFunc func(text string) Guess

// Detect calls f.
func (f DetectorFunc) Detect(text string) Guess { return f(text) }

// ValidCode reports whether code looks like an ISO 639-1/639-3 code.
func ValidCode(code string) bool { return codeRegex.MatchString(code) }

// WhatLang is the default Detector backed by whatlanggo's trigram classifier.
type WhatLang struct {
	opts whatlanggo.Options
}

// NewWhatLang creates a detector over every language whatlanggo knows.
func NewWhatLang() *WhatLang {
	return &WhatLang{}
}

// Detect returns the ISO 639-1 code of the best candidate, the ISO 639-3 code when the
// language has no two-letter code, or Undetermined. Norwegian variants come back as "no".
func (w *WhatLang) Detect(text string) Guess {
	if strings.TrimSpace(text) == "" {
		return Guess{Code: Undetermined}
	}

	info := whatlanggo.DetectWithOptions(text, w.opts)
	code := language.NormalizeISO(info.Lang.Iso6391())
	if code == "" {
		code = info.Lang.Iso6393()
	}
	if !ValidCode(code) {
		return Guess{Code: Undetermined, Confidence: info.Confidence}
	}
	return Guess{Code: code, Confidence: info.Confidence}
}
