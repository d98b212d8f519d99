package lazo

import "strings"

// isSeparator reports whether ch splits top-level tokens.
func isSeparator(ch rune) bool {
	switch ch {
	case ' ', '　', '\n', '\t', '\r':
		return true
	}
	return false
}

// Tokenize splits source text into top-level tokens. A parenthesized or
// bracketed form, including any whitespace inside it, becomes a single token;
// the parser re-tokenizes its interior.
func Tokenize(input string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	depth := 0
	inQuote := false

	for _, ch := range input {
		switch {
		case ch == '"':
			inQuote = !inQuote
			current.WriteRune(ch)
		case inQuote:
			current.WriteRune(ch)
		case ch == '(' || ch == '[':
			depth++
			current.WriteRune(ch)
		case ch == ')' || ch == ']':
			if depth == 0 {
				return nil, syntaxErrorf("duplicate end of parentheses")
			}
			depth--
			current.WriteRune(ch)
		case isSeparator(ch):
			if depth != 0 {
				current.WriteRune(ch)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if inQuote {
		return nil, &SyntaxError{Msg: "unterminated quote", Incomplete: true}
	}
	if depth != 0 {
		return nil, &SyntaxError{Msg: "unterminated parentheses", Incomplete: true}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
