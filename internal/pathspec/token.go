package pathspec

import (
	"regexp"
	"sort"
)

// TokenKind discriminates the two token variants a template parses into.
type TokenKind string

const (
	TokenLiteral  TokenKind = "literal"
	TokenVariable TokenKind = "variable"
)

// Token is one literal run or variable placeholder in a raw template,
// with its source span recorded for diagnostics.
type Token struct {
	Kind    TokenKind
	Content string
	Start   int
	End     int
}

// ParsedTemplate is the tokenized form of a raw template string plus the
// derived set of variable names the tokens reference.
type ParsedTemplate struct {
	Raw    string
	Tokens []Token

	names map[string]struct{}
}

var placeholderPattern = regexp.MustCompile(`\{([A-Z][A-Z0-9_]*)\}`)

// Parse tokenizes a raw template left to right. Text inside braces that
// does not form a valid variable name is kept as literal text; parsing
// never fails.
func Parse(raw string) ParsedTemplate {
	parsed := ParsedTemplate{Raw: raw, names: make(map[string]struct{})}

	cursor := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(raw, -1) {
		start, end := loc[0], loc[1]
		if start > cursor {
			parsed.Tokens = append(parsed.Tokens, Token{
				Kind:    TokenLiteral,
				Content: raw[cursor:start],
				Start:   cursor,
				End:     start,
			})
		}
		name := raw[loc[2]:loc[3]]
		parsed.Tokens = append(parsed.Tokens, Token{
			Kind:    TokenVariable,
			Content: name,
			Start:   start,
			End:     end,
		})
		parsed.names[name] = struct{}{}
		cursor = end
	}
	if cursor < len(raw) {
		parsed.Tokens = append(parsed.Tokens, Token{
			Kind:    TokenLiteral,
			Content: raw[cursor:],
			Start:   cursor,
			End:     len(raw),
		})
	}
	return parsed
}

// Variables returns the referenced variable names in sorted order.
func (p ParsedTemplate) Variables() []string {
	out := make([]string, 0, len(p.names))
	for name := range p.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// References reports whether the token sequence uses the named variable.
func (p ParsedTemplate) References(name string) bool {
	_, ok := p.names[name]
	return ok
}
