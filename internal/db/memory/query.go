package memory

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kailas-cloud/umlsdex/internal/db"
)

// tagQuery is a parsed "@field:{v1 | v2}" expression.
type tagQuery struct {
	field  string
	values []string
}

func parseTagQuery(q string) (*tagQuery, error) {
	rest, ok := strings.CutPrefix(q, "@")
	if !ok {
		return nil, errors.New("only tag queries are supported: " + q)
	}
	field, body, ok := strings.Cut(rest, ":{")
	if !ok || !strings.HasSuffix(body, "}") || field == "" {
		return nil, errors.New("malformed tag query: " + q)
	}
	body = body[:len(body)-1]

	var (
		values []string
		cur    strings.Builder
	)
	escaped := false
	for _, r := range body {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			values = append(values, cur.String())
			cur.Reset()
		case r == ' ':
			// unescaped whitespace separates tokens from '|'
		default:
			cur.WriteRune(r)
		}
	}
	values = append(values, cur.String())

	return &tagQuery{field: field, values: values}, nil
}

// matches reports whether the document's value at the field's JSON path equals one of the
// query values. Array paths ("$.x[*]") match any element.
func (q *tagQuery) matches(doc []byte, f *db.IndexField) bool {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return false
	}

	name := strings.TrimPrefix(f.Name, "$.")
	name = strings.TrimSuffix(name, "[*]")

	var candidates []string
	switch v := m[name].(type) {
	case string:
		candidates = []string{v}
	case []any:
		for _, el := range v {
			if s, ok := el.(string); ok {
				candidates = append(candidates, s)
			}
		}
	}

	for _, c := range candidates {
		for _, want := range q.values {
			if f.TagCaseSensitive && c == want {
				return true
			}
			if !f.TagCaseSensitive && strings.EqualFold(c, want) {
				return true
			}
		}
	}
	return false
}
