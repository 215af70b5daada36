package literal

import (
	"strconv"
)

type KeyKind int

const (
	KeyString KeyKind = iota
	KeyInt
	KeyConstant
)

// Key of a map entry. Numeric string keys are stored as integers, as PHP does.
type Key struct {
	Kind KeyKind
	Str  string
	Int  int64
	Pos  Pos
}

func StringKey(s string) Key {
	if i, ok := canonicalInt(s); ok {
		return Key{Kind: KeyInt, Int: i}
	}
	return Key{Kind: KeyString, Str: s}
}

func IntKey(i int64) Key          { return Key{Kind: KeyInt, Int: i} }
func ConstantKey(name string) Key { return Key{Kind: KeyConstant, Str: name} }

// At returns a copy of the key located at pos
func (rx Key) At(pos Pos) Key {
	rx.Pos = pos
	return rx
}

func (rx Key) String() string {
	switch rx.Kind {
	case KeyInt:
		return strconv.FormatInt(rx.Int, 10)
	case KeyConstant:
		return rx.Str
	}
	return rx.Str
}

func (rx Key) id() string {
	switch rx.Kind {
	case KeyInt:
		return "i:" + strconv.FormatInt(rx.Int, 10)
	case KeyConstant:
		return "c:" + rx.Str
	}
	return "s:" + rx.Str
}

// "10" is an int key in PHP, "010" and "1.5" are not
func canonicalInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(i, 10) != s {
		return 0, false
	}
	return i, true
}

type Entry struct {
	Key   Key
	Value Value
}

// Map is an insertion ordered PHP array
type Map struct {
	Pos     Pos // position of the array literal, zero for decoded trees
	entries []Entry
	index   map[string]int
	nextInt int64
}

func NewMap() *Map {
	return &Map{index: map[string]int{}}
}

// Set adds or replaces an entry. A replaced entry keeps the position of the first one.
func (rx *Map) Set(key Key, value Value) {
	id := key.id()
	if k, ok := rx.index[id]; ok {
		rx.entries[k].Value = value
		return
	}
	rx.index[id] = len(rx.entries)
	rx.entries = append(rx.entries, Entry{Key: key, Value: value})
	if key.Kind == KeyInt && key.Int >= rx.nextInt {
		rx.nextInt = key.Int + 1
	}
}

// Append adds value under the next free integer key, like $a[] = value
func (rx *Map) Append(value Value) Key {
	key := IntKey(rx.nextInt)
	rx.Set(key, value)
	return key
}

// Get returns the value at string key name
func (rx *Map) Get(name string) (Value, bool) {
	return rx.Lookup(StringKey(name))
}

func (rx *Map) Lookup(key Key) (Value, bool) {
	if rx == nil {
		return Value{}, false
	}
	k, ok := rx.index[key.id()]
	if !ok {
		return Value{}, false
	}
	return rx.entries[k].Value, true
}

func (rx *Map) Entries() []Entry {
	if rx == nil {
		return nil
	}
	return rx.entries
}

func (rx *Map) Len() int {
	if rx == nil {
		return 0
	}
	return len(rx.entries)
}

// Merge returns a new map with the entries of rx overridden by other (top level only)
func (rx *Map) Merge(other *Map) *Map {
	result := NewMap()
	if rx != nil {
		result.Pos = rx.Pos
	}
	for _, entry := range rx.Entries() {
		result.Set(entry.Key, entry.Value)
	}
	for _, entry := range other.Entries() {
		result.Set(entry.Key, entry.Value)
	}
	return result
}
