package extract

import (
	"fmt"
	"strconv"

	"github.com/metraction/ncconf/pkg/literal"
)

// section is a map of the tree together with its rendered path
type section struct {
	path string
	m    *literal.Map
	pos  literal.Pos
}

func rootSection(tree *literal.Map) section {
	root := section{m: tree}
	if tree != nil {
		root.pos = tree.Pos
	}
	return root
}

// return the field path of key in this section, e.g. redis['host']
func (rx section) field(key string) string {
	if rx.path == "" {
		return key
	}
	return fmt.Sprintf("%s[%s]", rx.path, quoteKey(literal.StringKey(key)))
}

func (rx section) entryField(key literal.Key) string {
	if rx.path == "" {
		return key.String()
	}
	return fmt.Sprintf("%s[%s]", rx.path, quoteKey(key))
}

func quoteKey(key literal.Key) string {
	if key.Kind == literal.KeyString {
		return "'" + key.Str + "'"
	}
	return key.String()
}

// lookup returns the value at key, absent for missing keys and null values.
// unresolved expressions and unknown constants fail here, so no getter can silently default them.
func (rx section) lookup(key string) (literal.Value, bool, error) {
	value, ok := rx.m.Get(key)
	if !ok || value.IsNull() {
		return literal.Value{}, false, nil
	}
	return value, true, evaluable(rx.field(key), value)
}

// evaluable fails for expressions and for constants the resolver does not know,
// neither has a value without running php
func evaluable(field string, value literal.Value) error {
	switch value.Kind {
	case literal.KindUnresolved:
		return unresolved(field, value)
	case literal.KindConstant:
		if _, ok := ResolveName(value.Str); !ok {
			return unknownConstant(field, value.Str, value.Pos)
		}
	}
	return nil
}

// constants used as scalars evaluate to their integer value
func scalar(field string, value literal.Value) (literal.Value, error) {
	if value.Kind != literal.KindConstant {
		return value, nil
	}
	c, ok := ResolveName(value.Str)
	if !ok {
		return value, unknownConstant(field, value.Str, value.Pos)
	}
	return literal.Int(c.Value).At(value.Pos), nil
}

func (rx section) optString(key string) (*string, literal.Value, error) {
	value, ok, err := rx.lookup(key)
	if !ok || err != nil {
		return nil, value, err
	}
	if value.Kind != literal.KindString {
		return nil, value, mismatch(rx.field(key), "string", value)
	}
	s := value.Str
	return &s, value, nil
}

func (rx section) reqString(key string) (string, literal.Value, error) {
	s, value, err := rx.optString(key)
	if err != nil {
		return "", value, err
	}
	if s == nil {
		return "", value, missing(rx.field(key), rx.pos)
	}
	return *s, value, nil
}

// optional string where the empty string means absent (paths, passwords of cache backends)
func (rx section) optNonEmpty(key string) (*string, error) {
	s, _, err := rx.optString(key)
	if err != nil || s == nil || *s == "" {
		return nil, err
	}
	return s, nil
}

// optPort accepts integers and numeric strings, "" is absent. zeroAbsent treats 0 as absent too.
func (rx section) optPort(key string, zeroAbsent bool) (*uint16, literal.Value, error) {
	value, ok, err := rx.lookup(key)
	if !ok || err != nil {
		return nil, value, err
	}
	field := rx.field(key)
	if value, err = scalar(field, value); err != nil {
		return nil, value, err
	}
	var n int64
	switch value.Kind {
	case literal.KindInt:
		n = value.Int
	case literal.KindString:
		if value.Str == "" {
			return nil, value, nil
		}
		if n, err = strconv.ParseInt(value.Str, 10, 64); err != nil {
			return nil, value, mismatch(field, "port number", value)
		}
	default:
		return nil, value, mismatch(field, "port number", value)
	}
	if n == 0 && zeroAbsent {
		return nil, value, nil
	}
	if n < 1 || n > 65535 {
		return nil, value, mismatch(field, "port number between 1 and 65535", value)
	}
	port := uint16(n)
	return &port, value, nil
}

func (rx section) optUint32(key string) (*uint32, error) {
	value, ok, err := rx.lookup(key)
	if !ok || err != nil {
		return nil, err
	}
	field := rx.field(key)
	if value, err = scalar(field, value); err != nil {
		return nil, err
	}
	var n int64
	switch value.Kind {
	case literal.KindInt:
		n = value.Int
	case literal.KindString:
		if n, err = strconv.ParseInt(value.Str, 10, 64); err != nil {
			return nil, mismatch(field, "non-negative integer", value)
		}
	default:
		return nil, mismatch(field, "non-negative integer", value)
	}
	if n < 0 || n > 0xffffffff {
		return nil, mismatch(field, "non-negative integer", value)
	}
	result := uint32(n)
	return &result, nil
}

// seconds as integer or float
func (rx section) optSeconds(key string) (*float64, error) {
	value, ok, err := rx.lookup(key)
	if !ok || err != nil {
		return nil, err
	}
	if value, err = scalar(rx.field(key), value); err != nil {
		return nil, err
	}
	var f float64
	switch value.Kind {
	case literal.KindInt:
		f = float64(value.Int)
	case literal.KindFloat:
		f = value.Float
	default:
		return nil, mismatch(rx.field(key), "number of seconds", value)
	}
	if f < 0 {
		return nil, mismatch(rx.field(key), "non-negative number of seconds", value)
	}
	return &f, nil
}

// booleans, php also accepts 0 and 1 for flags
func flag(field string, value literal.Value) (bool, error) {
	if err := evaluable(field, value); err != nil {
		return false, err
	}
	value, err := scalar(field, value)
	if err != nil {
		return false, err
	}
	switch value.Kind {
	case literal.KindBool:
		return value.Bool, nil
	case literal.KindInt:
		if value.Int == 0 || value.Int == 1 {
			return value.Int == 1, nil
		}
	}
	return false, mismatch(field, "boolean", value)
}

func (rx section) optBool(key string, defval bool) (bool, error) {
	value, ok, err := rx.lookup(key)
	if !ok || err != nil {
		return defval, err
	}
	return flag(rx.field(key), value)
}

func (rx section) optMap(key string) (section, bool, error) {
	value, ok, err := rx.lookup(key)
	if !ok || err != nil {
		return section{}, false, err
	}
	if value.Kind != literal.KindMap {
		return section{}, false, mismatch(rx.field(key), "array", value)
	}
	return section{path: rx.field(key), m: value.Map, pos: value.Pos}, true, nil
}
