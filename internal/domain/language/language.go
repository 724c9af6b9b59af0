// Package language maps UMLS language codes (MRCONSO LAT) to ISO 639-1 codes.
package language

import (
	"fmt"

	"github.com/kailas-cloud/umlsdex/internal/domain"
)

var umlsToISO = map[string]string{
	"ENG": "en",
	"BAQ": "eu",
	"CHI": "zh",
	"CZE": "cs",
	"DAN": "da",
	"DUT": "nl",
	"EST": "et",
	"FIN": "fi",
	"FRE": "fr",
	"GER": "de",
	"GRE": "el",
	"HEB": "he",
	"HUN": "hu",
	"ITA": "it",
	"JPN": "ja",
	"KOR": "ko",
	"LAV": "lv",
	"NOR": "no",
	"POL": "pl",
	"POR": "pt",
	"RUS": "ru",
	"SPA": "es",
	"SWE": "sv",
	"TUR": "tr",
}

// isoAliases folds written-standard variants into the macrolanguage code UMLS uses.
var isoAliases = map[string]string{
	"nb": "no",
	"nn": "no",
}

// NormalizeISO maps variant ISO 639-1 codes (Norwegian Bokmål, Nynorsk) onto the
// code used in the UMLS table. Other codes are returned unchanged.
func NormalizeISO(code string) string {
	if c, ok := isoAliases[code]; ok {
		return c
	}
	return code
}

// ISO returns the ISO 639-1 code for a UMLS language code.
func ISO(umls string) (string, bool) {
	iso, ok := umlsToISO[umls]
	return iso, ok
}

// IsKnown reports whether code is a UMLS language code.
func IsKnown(code string) bool {
	_, ok := umlsToISO[code]
	return ok
}

// Validate checks that every code is a known UMLS language code.
func Validate(codes []string) error {
	for _, c := range codes {
		if !IsKnown(c) {
			return fmt.Errorf("%q: %w", c, domain.ErrUnknownLanguage)
		}
	}
	return nil
}
