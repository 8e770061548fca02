package suggest

import "strings"

// termEscaper escapes the operators of the backend query syntax. A single
// pass never re-escapes an inserted backslash. < and > cannot be escaped
// and are dropped.
var termEscaper = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`,
	`-`, `\-`,
	`&&`, `\&&`,
	`||`, `\||`,
	`!`, `\!`,
	`(`, `\(`,
	`)`, `\)`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
	`"`, `\"`,
	`~`, `\~`,
	`*`, `\*`,
	`?`, `\?`,
	`:`, `\:`,
	`/`, `\/`,
	`<`, ``,
	`>`, ``,
)

// EscapeTerm makes arbitrary user input safe to embed as a query term.
func EscapeTerm(q string) string {
	return termEscaper.Replace(q)
}
