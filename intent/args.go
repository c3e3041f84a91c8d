package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedArguments is the structured form of an argument string. Keyword
// values are string, int or float64.
type ParsedArguments struct {
	Positional []string
	Keyword    map[string]any
}

// Keys are Unicode letters, digits and underscores.
var keywordPattern = regexp.MustCompile(`([\p{L}\p{N}_]+)\s*=\s*("[^"]*"|'[^']*'|\S+)`)

// ParseArgs splits s into key=value pairs and positional words. Quoted
// values keep their spaces and any '=' they contain; unquoted values are
// coerced to int, then float64, else kept as text. A repeated key keeps its
// last value.
func ParseArgs(s string) ParsedArguments {
	parsed := ParsedArguments{
		Positional: []string{},
		Keyword:    map[string]any{},
	}

	for _, m := range keywordPattern.FindAllStringSubmatch(s, -1) {
		parsed.Keyword[m[1]] = coerce(m[2])
	}

	rest := keywordPattern.ReplaceAllLiteralString(s, " ")
	parsed.Positional = append(parsed.Positional, strings.Fields(rest)...)
	return parsed
}

func coerce(v string) any {
	if len(v) >= 2 {
		if q := v[0]; (q == '"' || q == '\'') && v[len(v)-1] == q {
			return v[1 : len(v)-1]
		}
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// HasPositional reports whether any positional words were found.
func (p ParsedArguments) HasPositional() bool {
	return len(p.Positional) > 0
}

// HasKeyword reports whether any key=value pairs were found.
func (p ParsedArguments) HasKeyword() bool {
	return len(p.Keyword) > 0
}
