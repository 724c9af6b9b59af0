package db

import (
	"fmt"
	"strings"
)

// MatchAll is the FT.SEARCH query that selects every indexed document.
const MatchAll = "*"

// TagQuery builds an exact-match TAG query: @field:{v1 | v2}.
func TagQuery(field string, values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeTag(v)
	}
	return fmt.Sprintf("@%s:{%s}", field, strings.Join(escaped, " | "))
}

// InfixQuery builds a TEXT infix query: @field:(*tok1* *tok2*).
// Every whitespace-separated token must match.
func InfixQuery(field, term string) string {
	tokens := strings.Fields(term)
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = "*" + EscapeQuery(tok) + "*"
	}
	return fmt.Sprintf("@%s:(%s)", field, strings.Join(parts, " "))
}

// EscapeTag escapes TAG punctuation and spaces.
func EscapeTag(s string) string {
	return tagEscaper.Replace(s)
}

// EscapeQuery escapes FT.SEARCH query syntax characters.
func EscapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
	`/`, `\/`,
	` `, `\ `,
)
