package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metraction/ncconf/pkg/literal"
)

// error kinds, match with errors.Is
var (
	ErrMissingField         = errors.New("missing field")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrUnsupportedDbType    = errors.New("unsupported database type")
	ErrUnknownConstant      = errors.New("unknown constant")
	ErrEmptySeedList        = errors.New("empty seed list")
	ErrUnresolvedExpression = errors.New("unresolved expression")
)

// Error describes the single root cause of a failed extraction
type Error struct {
	Kind     error       // one of the Err* kinds
	Field    string      // path of the offending field, e.g. redis.cluster['seeds'][0]
	Expected string      // expected literal kind (type mismatch)
	Found    string      // description of the value that was found
	Name     string      // constant or database type name
	Detail   string      // optional free text
	Pos      literal.Pos // zero when the tree carries no positions
}

func (rx *Error) Error() string {
	var sb strings.Builder
	if rx.Field != "" {
		sb.WriteString(rx.Field)
		sb.WriteString(": ")
	}
	switch rx.Kind {
	case ErrMissingField:
		sb.WriteString("required field is missing")
	case ErrTypeMismatch:
		sb.WriteString("expected " + rx.Expected)
		if rx.Found != "" {
			sb.WriteString(", found " + rx.Found)
		}
	case ErrUnsupportedDbType:
		sb.WriteString(fmt.Sprintf("unsupported database type %q", rx.Name))
	case ErrUnknownConstant:
		sb.WriteString(fmt.Sprintf("unknown constant %s", rx.Name))
	case ErrEmptySeedList:
		sb.WriteString("cluster declares no seed nodes")
	case ErrUnresolvedExpression:
		sb.WriteString("value cannot be evaluated statically")
		if rx.Found != "" {
			sb.WriteString(" (" + rx.Found + ")")
		}
	default:
		sb.WriteString(rx.Kind.Error())
	}
	if rx.Detail != "" {
		sb.WriteString(" (" + rx.Detail + ")")
	}
	if rx.Pos.IsValid() {
		sb.WriteString(fmt.Sprintf(" at line %d, column %d", rx.Pos.Line, rx.Pos.Column))
	}
	return sb.String()
}

func (rx *Error) Unwrap() error {
	return rx.Kind
}

func missing(field string, pos literal.Pos) error {
	return &Error{Kind: ErrMissingField, Field: field, Pos: pos}
}

func mismatch(field, expected string, found literal.Value) error {
	return &Error{Kind: ErrTypeMismatch, Field: field, Expected: expected, Found: found.Describe(), Pos: found.Pos}
}

func unresolved(field string, value literal.Value) error {
	return &Error{Kind: ErrUnresolvedExpression, Field: field, Found: value.Str, Pos: value.Pos}
}

func unknownConstant(field, name string, pos literal.Pos) error {
	return &Error{Kind: ErrUnknownConstant, Field: field, Name: name, Pos: pos}
}
