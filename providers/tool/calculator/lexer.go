package calculator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leofalp/calcagent/providers/tool"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokFunc
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPow
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int // rune offset in the normalized input
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "fin de la expresión"
	}
	return fmt.Sprintf("'%s'", t.text)
}

// functions lists the only identifiers the lexer accepts.
var functions = map[string]string{
	"sqrt":  "sqrt",
	"raiz":  "sqrt",
	"abs":   "abs",
	"round": "round",
	"floor": "floor",
	"ceil":  "ceil",
	"ln":    "ln",
	"log":   "log",
	"exp":   "exp",
}

var replacer = strings.NewReplacer(
	"×", "*",
	"÷", "/",
	"−", "-",
	"^", "**",
)

// normalize rewrites the typographic operators models copy from prose and
// drops a trailing "=".
func normalize(expression string) string {
	s := strings.TrimSpace(expression)
	s = strings.TrimSpace(strings.TrimSuffix(s, "="))
	return replacer.Replace(s)
}

func lex(input string) ([]token, error) {
	runes := []rune(input)
	tokens := make([]token, 0, len(runes)/2+1)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case isDigit(r) || (r == '.' && i+1 < len(runes) && isDigit(runes[i+1])):
			end := scanNumber(runes, i)
			tokens = append(tokens, token{kind: tokNumber, text: string(runes[i:end]), pos: i})
			i = end

		case unicode.IsLetter(r):
			end := i
			for end < len(runes) && unicode.IsLetter(runes[end]) {
				end++
			}
			word := strings.ToLower(string(runes[i:end]))
			name, ok := functions[word]
			if !ok {
				return nil, fmt.Errorf("%w: identificador no permitido '%s'", tool.ErrInputRejected, string(runes[i:end]))
			}
			tokens = append(tokens, token{kind: tokFunc, text: name, pos: i})
			i = end

		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			tokens = append(tokens, token{kind: tokPow, text: "**", pos: i})
			i += 2

		default:
			kind, ok := operators[r]
			if !ok {
				return nil, fmt.Errorf("%w: carácter no permitido '%c'", tool.ErrInputRejected, r)
			}
			tokens = append(tokens, token{kind: kind, text: string(r), pos: i})
			i++
		}
	}

	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

var operators = map[rune]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'%': tokPercent,
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
}

// scanNumber returns the end of the number starting at i:
// digits ['.' digits] [('e'|'E') ['+'|'-'] digits] or '.' digits.
func scanNumber(runes []rune, i int) int {
	end := skipDigits(runes, i)
	if end < len(runes) && runes[end] == '.' && end+1 < len(runes) && isDigit(runes[end+1]) {
		end = skipDigits(runes, end+1)
	}
	if end < len(runes) && (runes[end] == 'e' || runes[end] == 'E') {
		exp := end + 1
		if exp < len(runes) && (runes[exp] == '+' || runes[exp] == '-') {
			exp++
		}
		if exp < len(runes) && isDigit(runes[exp]) {
			end = skipDigits(runes, exp)
		}
	}
	return end
}

func skipDigits(runes []rune, i int) int {
	for i < len(runes) && isDigit(runes[i]) {
		i++
	}
	return i
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}
