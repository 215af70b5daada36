package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// numberic types
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// convert to T or default, values out of range of T give the default
func ToNumOr[T Numeric](input string, defval T) T {
	input = strings.TrimSpace(input)
	typ := reflect.TypeOf(defval)
	switch typ.Kind() {
	case reflect.Float32, reflect.Float64:
		if v, err := strconv.ParseFloat(input, typ.Bits()); err == nil {
			return T(v)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v, err := strconv.ParseUint(input, 10, typ.Bits()); err == nil {
			return T(v)
		}
	default:
		if v, err := strconv.ParseInt(input, 10, typ.Bits()); err == nil {
			return T(v)
		}
	}
	return defval
}
