package parse

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkIdent
	tkNumber
	tkPunct
)

type token struct {
	kind tokenKind
	val  string
	line int
}

func (t token) String() string {
	if t.kind == tkEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.val)
}

// two-character punctuators come first so "..." and friends win over
// their single-character prefixes.
var puncts = []string{
	"...",
	"*", "(", ")", "[", "]", "{", "}", ",", ";", ":", "=",
	"-", "+", "~", "!",
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// tokenize scans src into a token slice ending with a tkEOF token.
// Line comments, block comments and whitespace separate tokens.
func tokenize(src string) ([]token, error) {
	var toks []token
	line := 1
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f':
			i++
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("line %d: unterminated comment", line)
			}
			line += strings.Count(src[i:i+2+end+2], "\n")
			i += 2 + end + 2
			continue
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentCont(src[j]) {
				j++
			}
			toks = append(toks, token{tkIdent, src[i:j], line})
			i = j
			continue
		case isDigit(c):
			j := i + 1
			if c == '0' && j < len(src) && (src[j] == 'x' || src[j] == 'X') {
				j++
				for j < len(src) && isHexDigit(src[j]) {
					j++
				}
			} else {
				for j < len(src) && isDigit(src[j]) {
					j++
				}
			}
			lit := src[i:j]
			// swallow integer suffixes; the literal value is what matters
			for j < len(src) && (src[j] == 'u' || src[j] == 'U' || src[j] == 'l' || src[j] == 'L') {
				j++
			}
			toks = append(toks, token{tkNumber, lit, line})
			i = j
			continue
		}
		matched := false
		for _, p := range puncts {
			if strings.HasPrefix(src[i:], p) {
				toks = append(toks, token{tkPunct, p, line})
				i += len(p)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("line %d: unexpected character %q", line, rune(c))
		}
	}
	toks = append(toks, token{kind: tkEOF, line: line})
	return toks, nil
}
