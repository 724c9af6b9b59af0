package relation

import "github.com/kailas-cloud/umlsdex/internal/domain"

// Code is a MRREL REL value.
type Code string

// Relation code constants.
const (
	Parent      Code = "PAR"
	Child       Code = "CHD"
	Broader     Code = "RB"
	Narrower    Code = "RN"
	Synonym     Code = "SY"
	Other       Code = "RO"
	Similar     Code = "RL"
	Related     Code = "RQ"
	Sibling     Code = "SIB"
	Qualifier   Code = "AQ"
	Qualifies   Code = "QB"
	Unspecified Code = "RU"
	NotRelated  Code = "XR"
)

var labels = map[Code]string{
	Parent:      "parent",
	Child:       "child",
	Broader:     "broader",
	Narrower:    "narrower",
	Synonym:     "synonym",
	Other:       "other",
	Similar:     "similar",
	Related:     "related",
	Sibling:     "sibling",
	Qualifier:   "qualifier",
	Qualifies:   "qualifies",
	Unspecified: "unspecified",
	NotRelated:  "notrelated",
}

// Parse maps a raw REL value to a Code. Unknown values return *domain.UnknownRelationCodeError.
func Parse(raw string) (Code, error) {
	c := Code(raw)
	if _, ok := labels[c]; !ok {
		return "", &domain.UnknownRelationCodeError{Code: raw}
	}
	return c, nil
}

// Label returns the human-readable name of the code, or "" for an unknown code.
func (c Code) Label() string { return labels[c] }

// IsValid checks if the code is in the label table.
func (c Code) IsValid() bool {
	_, ok := labels[c]
	return ok
}

// Labels returns every known label.
func Labels() []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l)
	}
	return out
}

// IsLabel reports whether s is one of the known labels.
func IsLabel(s string) bool {
	for _, l := range labels {
		if l == s {
			return true
		}
	}
	return false
}
