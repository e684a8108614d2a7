package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokComma
	tokDot
	tokBackslash
	tokArrow
	tokColon
	tokQuestion
	tokBar
	tokTurnstile
)

var tokenNames = map[tokenKind]string{
	tokEOF:       "end of input",
	tokIdent:     "identifier",
	tokLParen:    "'('",
	tokRParen:    "')'",
	tokLBrace:    "'{'",
	tokRBrace:    "'}'",
	tokComma:     "','",
	tokDot:       "'.'",
	tokBackslash: "'\\'",
	tokArrow:     "'->'",
	tokColon:     "':'",
	tokQuestion:  "'?'",
	tokBar:       "'|'",
	tokTurnstile: "'|-'",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

// Position is a 1-based location in the input.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

var punctuation = []struct {
	text string
	kind tokenKind
}{
	// longest first
	{"->", tokArrow},
	{"|-", tokTurnstile},
	{"(", tokLParen},
	{")", tokRParen},
	{"{", tokLBrace},
	{"}", tokRBrace},
	{",", tokComma},
	{".", tokDot},
	{"\\", tokBackslash},
	{":", tokColon},
	{"?", tokQuestion},
	{"|", tokBar},
	{"=", tokIdent},
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lex splits input into tokens, ending with a single EOF token.
func lex(input string) ([]token, error) {
	var toks []token
	line, col := 1, 1
	i := 0
	advance := func(n int) {
		for _, r := range input[i : i+n] {
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		i += n
	}

	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		pos := Position{Offset: i, Line: line, Column: col}

		if unicode.IsSpace(r) {
			advance(size)
			continue
		}

		if isIdentStart(r) {
			j := i
			for j < len(input) {
				rr, size := utf8.DecodeRuneInString(input[j:])
				if !isIdentPart(rr) {
					break
				}
				j += size
			}
			toks = append(toks, token{kind: tokIdent, text: input[i:j], pos: pos})
			advance(j - i)
			continue
		}

		matched := false
		for _, p := range punctuation {
			if strings.HasPrefix(input[i:], p.text) {
				toks = append(toks, token{kind: p.kind, text: p.text, pos: pos})
				advance(len(p.text))
				matched = true
				break
			}
		}
		if !matched {
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r), Source: input}
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: Position{Offset: i, Line: line, Column: col}})
	return toks, nil
}
