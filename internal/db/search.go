package db

// JSONRoot is the path of a whole JSON document, and the field name FT.SEARCH
// uses for it when no RETURN clause is given.
const JSONRoot = "$"

// SearchResult is one page of FT.SEARCH hits plus the total match count.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single matched key.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// JSON returns the raw document of a JSON index hit, or "" when the hit carries none.
func (e SearchEntry) JSON() string {
	return e.Fields[JSONRoot]
}
