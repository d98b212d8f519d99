package lazo

import (
	"errors"
	"strconv"
	"strings"
)

// Parse turns one token produced by Tokenize into a Value. Parenthesized and
// bracketed tokens are parsed recursively into Expr and List values.
func Parse(token string) (Value, error) {
	token = strings.TrimSpace(token)

	if n, ok := parseNumber(token); ok {
		return NumberVal(n), nil
	}
	switch token {
	case "true":
		return BoolVal(true), nil
	case "false":
		return BoolVal(false), nil
	case "null":
		return NullVal(), nil
	}

	switch {
	case isWrapped(token, '"', '"'):
		return StringVal(token[1 : len(token)-1]), nil
	case isWrapped(token, '(', ')'):
		elems, err := parseSequence(token[1 : len(token)-1])
		if err != nil {
			return Value{}, err
		}
		return ExprVal(elems), nil
	case isWrapped(token, '[', ']'):
		elems, err := parseSequence(token[1 : len(token)-1])
		if err != nil {
			return Value{}, err
		}
		return ListVal(elems), nil
	case strings.HasPrefix(token, "'"):
		return QuotedSymbolVal(token[1:]), nil
	default:
		return SymbolVal(token), nil
	}
}

// ParseAll tokenizes src and parses every top-level token.
func ParseAll(src string) ([]Value, error) {
	return parseSequence(src)
}

func parseSequence(src string) ([]Value, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	elems := make([]Value, 0, len(tokens))
	for _, tok := range tokens {
		v, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return elems, nil
}

func isWrapped(token string, open, close byte) bool {
	return len(token) >= 2 && token[0] == open && token[len(token)-1] == close
}

// parseNumber accepts decimal and exponent literals plus inf, infinity and nan.
// Hexadecimal float syntax is left to the symbol rule. Literals beyond the
// float64 range saturate to an infinity.
func parseNumber(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}
