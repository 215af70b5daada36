package phpliteral

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/metraction/ncconf/pkg/literal"
)

type tokenKind int

const (
	tEOF tokenKind = iota
	tString
	tInt
	tFloat
	tName  // identifier or qualified name, e.g. true, array, \PDO
	tVar   // $name
	tPunct // operators and delimiters
)

type token struct {
	kind   tokenKind
	text   string // raw source text
	str    string // decoded string value
	interp bool   // double quoted string with variables
	i      int64
	f      float64
	start  int // byte offsets into src
	end    int
}

// SyntaxError is returned for input that is not a PHP array literal
type SyntaxError struct {
	Pos literal.Pos
	Msg string
}

func (rx *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", rx.Pos.Line, rx.Pos.Column, rx.Msg)
}

type lexer struct {
	src        string
	off        int
	lineStarts []int
}

func newLexer(src string, offset int) *lexer {
	starts := []int{0}
	for k := 0; k < len(src); k++ {
		if src[k] == '\n' {
			starts = append(starts, k+1)
		}
	}
	return &lexer{src: src, off: offset, lineStarts: starts}
}

// return 1-based line and rune column of byte offset
func (rx *lexer) pos(offset int) literal.Pos {
	line := sort.Search(len(rx.lineStarts), func(k int) bool { return rx.lineStarts[k] > offset }) - 1
	column := utf8.RuneCountInString(rx.src[rx.lineStarts[line]:offset]) + 1
	return literal.Pos{Line: line + 1, Column: column}
}

func (rx *lexer) errorf(offset int, format string, args ...any) error {
	return &SyntaxError{Pos: rx.pos(offset), Msg: fmt.Sprintf(format, args...)}
}

func (rx *lexer) skipSpace() error {
	for rx.off < len(rx.src) {
		c := rx.src[rx.off]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			rx.off++
		case c == '#' && !strings.HasPrefix(rx.src[rx.off:], "#["):
			rx.skipLine()
		case strings.HasPrefix(rx.src[rx.off:], "//"):
			rx.skipLine()
		case strings.HasPrefix(rx.src[rx.off:], "/*"):
			end := strings.Index(rx.src[rx.off+2:], "*/")
			if end < 0 {
				return rx.errorf(rx.off, "unterminated comment")
			}
			rx.off += end + 4
		default:
			return nil
		}
	}
	return nil
}

func (rx *lexer) skipLine() {
	end := strings.IndexByte(rx.src[rx.off:], '\n')
	if end < 0 {
		rx.off = len(rx.src)
		return
	}
	rx.off += end + 1
}

var punctuation = []string{"=>", "::", "??", "?:", "...", "(", ")", "[", "]", ",", ";", "=", ".", "-", "+", "*", "/", "%", "?", ":", "|", "&", "!", "<", ">", "^", "~", "@", "{", "}"}

func isNameStart(c byte) bool {
	return c == '_' || c == '\\' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNamePart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func (rx *lexer) next() (token, error) {
	if err := rx.skipSpace(); err != nil {
		return token{}, err
	}
	start := rx.off
	if start >= len(rx.src) {
		return token{kind: tEOF, start: start, end: start}, nil
	}
	c := rx.src[start]
	switch {
	case c == '\'':
		return rx.singleQuoted()
	case c == '"':
		return rx.doubleQuoted()
	case c >= '0' && c <= '9', c == '.' && start+1 < len(rx.src) && rx.src[start+1] >= '0' && rx.src[start+1] <= '9':
		return rx.number()
	case c == '$':
		rx.off++
		for rx.off < len(rx.src) && isNamePart(rx.src[rx.off]) && rx.src[rx.off] != '\\' {
			rx.off++
		}
		if rx.off == start+1 {
			return token{}, rx.errorf(start, "invalid variable")
		}
		return token{kind: tVar, text: rx.src[start:rx.off], start: start, end: rx.off}, nil
	case strings.HasPrefix(rx.src[start:], "<<<"):
		return token{}, rx.errorf(start, "heredoc strings are not supported")
	case isNameStart(c):
		for rx.off < len(rx.src) && isNamePart(rx.src[rx.off]) {
			rx.off++
		}
		return token{kind: tName, text: rx.src[start:rx.off], start: start, end: rx.off}, nil
	}
	for _, p := range punctuation {
		if strings.HasPrefix(rx.src[start:], p) {
			rx.off += len(p)
			return token{kind: tPunct, text: p, start: start, end: rx.off}, nil
		}
	}
	return token{}, rx.errorf(start, "unexpected character %q", c)
}

func (rx *lexer) singleQuoted() (token, error) {
	start := rx.off
	var sb strings.Builder
	k := start + 1
	for k < len(rx.src) {
		c := rx.src[k]
		if c == '\'' {
			rx.off = k + 1
			return token{kind: tString, text: rx.src[start:rx.off], str: sb.String(), start: start, end: rx.off}, nil
		}
		if c == '\\' && k+1 < len(rx.src) && (rx.src[k+1] == '\'' || rx.src[k+1] == '\\') {
			sb.WriteByte(rx.src[k+1])
			k += 2
			continue
		}
		sb.WriteByte(c)
		k++
	}
	return token{}, rx.errorf(start, "unterminated string")
}

func (rx *lexer) doubleQuoted() (token, error) {
	start := rx.off
	var sb strings.Builder
	interp := false
	k := start + 1
	for k < len(rx.src) {
		c := rx.src[k]
		switch {
		case c == '"':
			rx.off = k + 1
			return token{kind: tString, text: rx.src[start:rx.off], str: sb.String(), interp: interp, start: start, end: rx.off}, nil
		case c == '$' && k+1 < len(rx.src) && (isNameStart(rx.src[k+1]) && rx.src[k+1] != '\\' || rx.src[k+1] == '{'):
			interp = true
			sb.WriteByte(c)
			k++
		case c == '{' && k+1 < len(rx.src) && rx.src[k+1] == '$':
			interp = true
			sb.WriteByte(c)
			k++
		case c == '\\' && k+1 < len(rx.src):
			n, size := rx.escape(k)
			sb.WriteString(n)
			k += size
		default:
			sb.WriteByte(c)
			k++
		}
	}
	return token{}, rx.errorf(start, "unterminated string")
}

// decode the escape sequence at k, return the text and the consumed length
func (rx *lexer) escape(k int) (string, int) {
	c := rx.src[k+1]
	switch c {
	case 'n':
		return "\n", 2
	case 't':
		return "\t", 2
	case 'r':
		return "\r", 2
	case 'v':
		return "\v", 2
	case 'e':
		return "\x1b", 2
	case 'f':
		return "\f", 2
	case '\\', '$', '"':
		return string(c), 2
	case 'x':
		end := k + 2
		for end < len(rx.src) && end < k+4 && isHex(rx.src[end]) {
			end++
		}
		if end > k+2 {
			n, _ := strconv.ParseUint(rx.src[k+2:end], 16, 8)
			return string([]byte{byte(n)}), end - k
		}
	case 'u':
		if k+2 < len(rx.src) && rx.src[k+2] == '{' {
			close := strings.IndexByte(rx.src[k+3:], '}')
			if close > 0 {
				if n, err := strconv.ParseUint(rx.src[k+3:k+3+close], 16, 32); err == nil {
					return string(rune(n)), close + 4
				}
			}
		}
	}
	if c >= '0' && c <= '7' {
		end := k + 1
		for end < len(rx.src) && end < k+4 && rx.src[end] >= '0' && rx.src[end] <= '7' {
			end++
		}
		n, _ := strconv.ParseUint(rx.src[k+1:end], 8, 16)
		return string([]byte{byte(n)}), end - k
	}
	// unknown escapes are kept verbatim
	return rx.src[k : k+2], 2
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (rx *lexer) number() (token, error) {
	start := rx.off
	k := start
	for k < len(rx.src) && (isNamePart(rx.src[k]) || rx.src[k] == '.' ||
		((rx.src[k] == '+' || rx.src[k] == '-') && (rx.src[k-1] == 'e' || rx.src[k-1] == 'E') && !isPrefixed(rx.src[start:k]))) {
		if rx.src[k] == '\\' {
			break
		}
		k++
	}
	rx.off = k
	text := rx.src[start:k]
	clean := strings.ReplaceAll(text, "_", "")
	lower := strings.ToLower(clean)

	if !isPrefixed(lower) && strings.ContainsAny(lower, ".e") {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return token{}, rx.errorf(start, "invalid number %s", text)
		}
		return token{kind: tFloat, text: text, f: f, start: start, end: k}, nil
	}

	base := 10
	digits := lower
	switch {
	case strings.HasPrefix(lower, "0x"):
		base, digits = 16, lower[2:]
	case strings.HasPrefix(lower, "0b"):
		base, digits = 2, lower[2:]
	case strings.HasPrefix(lower, "0o"):
		base, digits = 8, lower[2:]
	case len(lower) > 1 && lower[0] == '0':
		base, digits = 8, lower[1:]
	}
	i, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		// php turns integer overflow into float
		if u, uerr := strconv.ParseUint(digits, base, 64); uerr == nil {
			return token{kind: tFloat, text: text, f: float64(u), start: start, end: k}, nil
		}
		if base == 10 {
			if f, ferr := strconv.ParseFloat(digits, 64); ferr == nil {
				return token{kind: tFloat, text: text, f: f, start: start, end: k}, nil
			}
		}
		return token{}, rx.errorf(start, "invalid number %s", text)
	}
	return token{kind: tInt, text: text, i: i, start: start, end: k}, nil
}

func isPrefixed(lower string) bool {
	lower = strings.ToLower(lower)
	return strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o")
}
