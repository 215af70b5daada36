// Package phpliteral statically evaluates the $CONFIG array literal of a config.php.
//
// Only literals are evaluated: strings, numbers, booleans, null, nested arrays
// and class constants. Any other expression, e.g. getenv('DB_HOST') or a
// variable, is kept as an unresolved value carrying its source text.
// No PHP code is executed.
package phpliteral

import (
	"errors"
	"regexp"
	"strings"

	"github.com/metraction/ncconf/pkg/literal"
	"github.com/samber/lo"
)

var (
	ErrNoConfig = errors.New("no $CONFIG assignment found")
	ErrNotArray = errors.New("$CONFIG is not an array literal")
)

var configAssign = regexp.MustCompile(`\$CONFIG\s*=\s*`)

type parser struct {
	lex  *lexer
	tok  token
	prev token
}

// ParseConfig locates the first `$CONFIG = ...` assignment in src and evaluates its array literal
func ParseConfig(src []byte) (*literal.Map, error) {
	text := string(src)
	loc := configAssign.FindStringIndex(text)
	if loc == nil {
		return nil, ErrNoConfig
	}
	value, err := ParseAt(text, loc[1])
	if err != nil {
		return nil, err
	}
	if value.Kind != literal.KindMap {
		return nil, ErrNotArray
	}
	return value.Map, nil
}

// ParseAt evaluates the expression starting at byte offset of src.
// Positions are reported relative to the whole of src.
func ParseAt(src string, offset int) (literal.Value, error) {
	rx := &parser{lex: newLexer(src, offset)}
	if err := rx.advance(); err != nil {
		return literal.Value{}, err
	}
	value, err := rx.expression()
	if err != nil {
		return literal.Value{}, err
	}
	if !rx.isPunct(";") && rx.tok.kind != tEOF {
		return literal.Value{}, rx.lex.errorf(rx.tok.start, "unexpected %q after expression", rx.tok.text)
	}
	return value, nil
}

// ParseExpr evaluates a standalone expression like `['a' => 1]`
func ParseExpr(src string) (literal.Value, error) {
	return ParseAt(src, 0)
}

func (rx *parser) advance() error {
	tok, err := rx.lex.next()
	if err != nil {
		return err
	}
	rx.prev = rx.tok
	rx.tok = tok
	return nil
}

func (rx *parser) isPunct(text string) bool {
	return rx.tok.kind == tPunct && rx.tok.text == text
}

func (rx *parser) expect(text string) error {
	if !rx.isPunct(text) {
		return rx.unexpected("expected " + text)
	}
	return rx.advance()
}

func (rx *parser) unexpected(msg string) error {
	if rx.tok.kind == tEOF {
		return rx.lex.errorf(rx.tok.start, "%s, found end of input", msg)
	}
	return rx.lex.errorf(rx.tok.start, "%s, found %q", msg, rx.tok.text)
}

var binaryOperators = map[string]bool{
	".": true, "+": true, "-": true, "*": true, "/": true, "%": true,
	"??": true, "?:": true, "|": true, "&": true, "^": true, "<": true, ">": true,
}

// expression = unary { binop unary } [ "?" expression ":" expression ]
func (rx *parser) expression() (literal.Value, error) {
	start := rx.tok.start
	value, err := rx.unary()
	if err != nil {
		return value, err
	}
	for rx.tok.kind == tPunct && binaryOperators[rx.tok.text] {
		op := rx.tok.text
		if err := rx.advance(); err != nil {
			return value, err
		}
		rhs, err := rx.unary()
		if err != nil {
			return value, err
		}
		if op == "." && value.Kind == literal.KindString && rhs.Kind == literal.KindString {
			value = literal.String(value.Str + rhs.Str).At(value.Pos)
			continue
		}
		value = rx.unresolvedFrom(start)
	}
	if rx.isPunct("?") {
		if err := rx.advance(); err != nil {
			return value, err
		}
		if _, err := rx.expression(); err != nil {
			return value, err
		}
		if err := rx.expect(":"); err != nil {
			return value, err
		}
		if _, err := rx.expression(); err != nil {
			return value, err
		}
		value = rx.unresolvedFrom(start)
	}
	return value, nil
}

// the source text from start up to the last consumed token
func (rx *parser) unresolvedFrom(start int) literal.Value {
	text := strings.TrimSpace(rx.lex.src[start:rx.prev.end])
	return literal.Unresolved(text).At(rx.lex.pos(start))
}

func (rx *parser) unary() (literal.Value, error) {
	start := rx.tok.start
	if rx.isPunct("-") || rx.isPunct("+") {
		negate := rx.tok.text == "-"
		if err := rx.advance(); err != nil {
			return literal.Value{}, err
		}
		value, err := rx.unary()
		if err != nil {
			return value, err
		}
		pos := rx.lex.pos(start)
		switch value.Kind {
		case literal.KindInt:
			if negate {
				value.Int = -value.Int
			}
			return value.At(pos), nil
		case literal.KindFloat:
			if negate {
				value.Float = -value.Float
			}
			return value.At(pos), nil
		}
		return rx.unresolvedFrom(start), nil
	}
	if rx.isPunct("!") || rx.isPunct("@") || rx.isPunct("~") {
		if err := rx.advance(); err != nil {
			return literal.Value{}, err
		}
		if _, err := rx.unary(); err != nil {
			return literal.Value{}, err
		}
		return rx.unresolvedFrom(start), nil
	}
	return rx.primary()
}

func (rx *parser) primary() (literal.Value, error) {
	tok := rx.tok
	pos := rx.lex.pos(tok.start)
	switch tok.kind {
	case tString:
		if err := rx.advance(); err != nil {
			return literal.Value{}, err
		}
		if tok.interp {
			return literal.Unresolved(tok.text).At(pos), nil
		}
		return literal.String(tok.str).At(pos), nil
	case tInt:
		return literal.Int(tok.i).At(pos), rx.advance()
	case tFloat:
		return literal.Float(tok.f).At(pos), rx.advance()
	case tVar:
		if err := rx.advance(); err != nil {
			return literal.Value{}, err
		}
		if err := rx.postfix(); err != nil {
			return literal.Value{}, err
		}
		return rx.unresolvedFrom(tok.start), nil
	case tName:
		return rx.name()
	case tPunct:
		switch tok.text {
		case "[":
			if err := rx.advance(); err != nil {
				return literal.Value{}, err
			}
			return rx.array("]", pos)
		case "(":
			if err := rx.advance(); err != nil {
				return literal.Value{}, err
			}
			value, err := rx.expression()
			if err != nil {
				return value, err
			}
			return value.At(pos), rx.expect(")")
		}
	}
	return literal.Value{}, rx.unexpected("expected value")
}

// name handles keywords, array(), Class::CONST, bare constants and function calls
func (rx *parser) name() (literal.Value, error) {
	tok := rx.tok
	pos := rx.lex.pos(tok.start)
	if err := rx.advance(); err != nil {
		return literal.Value{}, err
	}
	switch strings.ToLower(tok.text) {
	case "true":
		return literal.Bool(true).At(pos), nil
	case "false":
		return literal.Bool(false).At(pos), nil
	case "null":
		return literal.Null().At(pos), nil
	case "array":
		if rx.isPunct("(") {
			if err := rx.advance(); err != nil {
				return literal.Value{}, err
			}
			return rx.array(")", pos)
		}
	}
	if rx.isPunct("::") {
		if err := rx.advance(); err != nil {
			return literal.Value{}, err
		}
		if rx.tok.kind == tVar {
			// static property
			if err := rx.advance(); err != nil {
				return literal.Value{}, err
			}
			if err := rx.postfix(); err != nil {
				return literal.Value{}, err
			}
			return rx.unresolvedFrom(tok.start), nil
		}
		if rx.tok.kind != tName {
			return literal.Value{}, rx.unexpected("expected constant name")
		}
		name := tok.text + "::" + rx.tok.text
		if err := rx.advance(); err != nil {
			return literal.Value{}, err
		}
		if rx.isPunct("(") {
			// static method call
			if err := rx.postfix(); err != nil {
				return literal.Value{}, err
			}
			return rx.unresolvedFrom(tok.start), nil
		}
		return literal.Constant(name).At(pos), nil
	}
	if rx.isPunct("(") {
		if err := rx.postfix(); err != nil {
			return literal.Value{}, err
		}
		return rx.unresolvedFrom(tok.start), nil
	}
	return literal.Constant(tok.text).At(pos), nil
}

// postfix skips call arguments, subscripts and property access after a variable or function name
func (rx *parser) postfix() error {
	for {
		switch {
		case rx.isPunct("("):
			if err := rx.skipBalanced("(", ")"); err != nil {
				return err
			}
		case rx.isPunct("["):
			if err := rx.skipBalanced("[", "]"); err != nil {
				return err
			}
		case rx.isPunct("-") && strings.HasPrefix(rx.lex.src[rx.tok.start:], "->"):
			if err := rx.advance(); err != nil {
				return err
			}
			if err := rx.expect(">"); err != nil {
				return err
			}
			if rx.tok.kind != tName {
				return rx.unexpected("expected property name")
			}
			if err := rx.advance(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (rx *parser) skipBalanced(open, close string) error {
	depth := 0
	for {
		switch {
		case rx.tok.kind == tEOF:
			return rx.unexpected("expected " + close)
		case rx.isPunct(open):
			depth++
		case rx.isPunct(close):
			depth--
		}
		if err := rx.advance(); err != nil {
			return err
		}
		if depth == 0 {
			return nil
		}
	}
}

// array = [ element { "," element } [ "," ] ] close
func (rx *parser) array(close string, pos literal.Pos) (literal.Value, error) {
	m := literal.NewMap()
	for !rx.isPunct(close) {
		if rx.isPunct("...") {
			return literal.Value{}, rx.unexpected("array unpacking is not supported")
		}
		first, err := rx.expression()
		if err != nil {
			return literal.Value{}, err
		}
		if rx.isPunct("=>") {
			if err := rx.advance(); err != nil {
				return literal.Value{}, err
			}
			value, err := rx.expression()
			if err != nil {
				return literal.Value{}, err
			}
			m.Set(keyOf(first), value)
		} else {
			m.Append(first)
		}
		if rx.isPunct(",") {
			if err := rx.advance(); err != nil {
				return literal.Value{}, err
			}
			continue
		}
		if !rx.isPunct(close) {
			return literal.Value{}, rx.unexpected("expected , or " + close)
		}
	}
	if err := rx.advance(); err != nil {
		return literal.Value{}, err
	}
	m.Pos = pos
	return literal.MapOf(m).At(pos), nil
}

// php key casts: bool and float become int, null becomes ""
func keyOf(value literal.Value) literal.Key {
	var key literal.Key
	switch value.Kind {
	case literal.KindString:
		key = literal.StringKey(value.Str)
	case literal.KindInt:
		key = literal.IntKey(value.Int)
	case literal.KindBool:
		key = literal.IntKey(lo.Ternary[int64](value.Bool, 1, 0))
	case literal.KindFloat:
		key = literal.IntKey(int64(value.Float))
	case literal.KindNull:
		key = literal.StringKey("")
	default:
		// constants and unresolved expressions keep their source text
		key = literal.ConstantKey(value.Str)
	}
	return key.At(value.Pos)
}
