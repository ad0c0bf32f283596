package insight

import (
	"strings"
)

// SpanNameForStatement derives a span name for a SQL statement executed
// against the given database system. The first statement token becomes the
// verb ("postgresql.SELECT"); a COUNT(*) projection is bucketed separately
// ("postgresql.COUNT"); statements with fewer than two tokens, or anything
// else that defeats tokenization, land in "{system}.OTHER".
//
// Classification never fails: an unparsable statement is an OTHER span,
// not an error.
func SpanNameForStatement(system, statement string) string {
	tokens := splitStatement(statement)
	if len(tokens) < 2 {
		return system + ".OTHER"
	}
	if tokens[1] == "COUNT(*)" {
		return system + ".COUNT"
	}
	return system + "." + tokens[0]
}

// splitStatement returns at most the first three whitespace-delimited
// tokens of the statement.
func splitStatement(statement string) []string {
	var tokens []string
	rest := statement
	for len(tokens) < 2 {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return tokens
		}
		i := strings.IndexFunc(rest, isSpace)
		if i < 0 {
			return append(tokens, rest)
		}
		tokens = append(tokens, rest[:i])
		rest = rest[i:]
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		tokens = append(tokens, rest)
	}
	return tokens
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
