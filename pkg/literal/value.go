// Package literal holds the statically evaluated form of a PHP array literal.
//
// A tree is produced by an evaluator (see internal/phpliteral) and consumed by
// pkg/extract. Values never change after construction.
package literal

import (
	"fmt"
	"strconv"
)

// Kind of a literal value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindMap
	KindConstant   // class constant like \PDO::MYSQL_ATTR_SSL_CA
	KindUnresolved // expression the evaluator could not reduce, e.g. getenv('X')
)

func (rx Kind) String() string {
	switch rx {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindMap:
		return "array"
	case KindConstant:
		return "constant"
	case KindUnresolved:
		return "expression"
	}
	return fmt.Sprintf("kind(%d)", int(rx))
}

// Pos is a 1-based line/column in the source file, zero when unknown
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (rx Pos) IsValid() bool {
	return rx.Line > 0
}

func (rx Pos) String() string {
	if !rx.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", rx.Line, rx.Column)
}

// Value is a tagged union over the literal kinds.
// Str holds the string payload, the constant name or the unresolved expression text.
type Value struct {
	Kind  Kind
	Pos   Pos
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Map   *Map
}

func Null() Value                 { return Value{Kind: KindNull} }
func Bool(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value           { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value       { return Value{Kind: KindFloat, Float: f} }
func String(s string) Value       { return Value{Kind: KindString, Str: s} }
func MapOf(m *Map) Value          { return Value{Kind: KindMap, Map: m} }
func Constant(name string) Value  { return Value{Kind: KindConstant, Str: name} }
func Unresolved(expr string) Value { return Value{Kind: KindUnresolved, Str: expr} }

// At returns a copy of the value located at pos
func (rx Value) At(pos Pos) Value {
	rx.Pos = pos
	return rx
}

func (rx Value) IsNull() bool {
	return rx.Kind == KindNull
}

// Describe renders the value for diagnostics, e.g. `string "abc"`
func (rx Value) Describe() string {
	switch rx.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean " + strconv.FormatBool(rx.Bool)
	case KindInt:
		return "integer " + strconv.FormatInt(rx.Int, 10)
	case KindFloat:
		return "float " + strconv.FormatFloat(rx.Float, 'g', -1, 64)
	case KindString:
		return "string " + strconv.Quote(rx.Str)
	case KindMap:
		return fmt.Sprintf("array with %d entries", rx.Map.Len())
	case KindConstant:
		return "constant " + rx.Str
	case KindUnresolved:
		return "expression " + rx.Str
	}
	return rx.Kind.String()
}
