package phpliteral

import (
	"errors"
	"testing"

	"github.com/metraction/ncconf/pkg/literal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalars(t *testing.T) {

	tests := []struct {
		src  string
		want literal.Value
	}{
		{`'abc'`, literal.String("abc")},
		{`'it\'s \\ \n'`, literal.String(`it's \ \n`)},
		{`"a\tb\n"`, literal.String("a\tb\n")},
		{`"\x41\101\u{1F600}"`, literal.String("AA\U0001F600")},
		{`"\q"`, literal.String(`\q`)},
		{`42`, literal.Int(42)},
		{`-42`, literal.Int(-42)},
		{`0x1F`, literal.Int(31)},
		{`0755`, literal.Int(493)},
		{`0o17`, literal.Int(15)},
		{`0b101`, literal.Int(5)},
		{`1_000`, literal.Int(1000)},
		{`1.5`, literal.Float(1.5)},
		{`-2.5e3`, literal.Float(-2500)},
		{`.5`, literal.Float(0.5)},
		{`9223372036854775808`, literal.Float(9223372036854775808)},
		{`true`, literal.Bool(true)},
		{`FALSE`, literal.Bool(false)},
		{`Null`, literal.Null()},
		{`'a' . 'b' . "c"`, literal.String("abc")},
		{`\PDO::MYSQL_ATTR_SSL_CA`, literal.Constant(`\PDO::MYSQL_ATTR_SSL_CA`)},
		{`RedisCluster::FAILOVER_ERROR`, literal.Constant(`RedisCluster::FAILOVER_ERROR`)},
		{`PHP_EOL`, literal.Constant(`PHP_EOL`)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseExpr(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.Str, got.Str)
			assert.Equal(t, tt.want.Int, got.Int)
			assert.Equal(t, tt.want.Float, got.Float)
			assert.Equal(t, tt.want.Bool, got.Bool)
		})
	}
}

func TestParseUnresolved(t *testing.T) {

	tests := []struct {
		src  string
		text string
	}{
		{`getenv('DB_HOST')`, `getenv('DB_HOST')`},
		{`$_ENV['X']`, `$_ENV['X']`},
		{`"host-$suffix"`, `"host-$suffix"`},
		{`'a' . getenv('B')`, `'a' . getenv('B')`},
		{`getenv('P') ?: 'fallback'`, `getenv('P') ?: 'fallback'`},
		{`$x ? 1 : 2`, `$x ? 1 : 2`},
		{`60 * 60`, `60 * 60`},
		{`\OC::$SERVERROOT . '/data'`, `\OC::$SERVERROOT . '/data'`},
		{`Foo::bar()`, `Foo::bar()`},
		{`$this->value`, `$this->value`},
		{`!empty($x)`, `!empty($x)`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseExpr(tt.src)
			require.NoError(t, err)
			assert.Equal(t, literal.KindUnresolved, got.Kind)
			assert.Equal(t, tt.text, got.Str)
		})
	}
}

func TestParseArray(t *testing.T) {

	got, err := ParseExpr(`array(
		'dbtype' => 'mysql',
		'redis' => [ 'host' => 'localhost', 'port' => 6379, ],
		'list' => ['a', 'b', 5 => 'c', 'd'],
		"10" => 'numeric',
		\PDO::MYSQL_ATTR_SSL_CA => '/ca.pem',
		true => 'one',
	)`)
	require.NoError(t, err)
	require.Equal(t, literal.KindMap, got.Kind)

	tree := got.Map
	assert.Equal(t, 6, tree.Len())

	value, ok := tree.Get("dbtype")
	assert.True(t, ok)
	assert.Equal(t, "mysql", value.Str)

	redis, ok := tree.Get("redis")
	require.True(t, ok)
	port, ok := redis.Map.Get("port")
	assert.True(t, ok)
	assert.Equal(t, int64(6379), port.Int)

	// implicit keys continue after the largest int key
	list, _ := tree.Get("list")
	keys := []string{}
	for _, entry := range list.Map.Entries() {
		keys = append(keys, entry.Key.String())
	}
	assert.Equal(t, []string{"0", "1", "5", "6"}, keys)

	// "10" is an integer key
	value, ok = tree.Lookup(literal.IntKey(10))
	assert.True(t, ok)
	assert.Equal(t, "numeric", value.Str)

	value, ok = tree.Lookup(literal.ConstantKey(`\PDO::MYSQL_ATTR_SSL_CA`))
	assert.True(t, ok)
	assert.Equal(t, "/ca.pem", value.Str)

	value, ok = tree.Lookup(literal.IntKey(1))
	assert.True(t, ok)
	assert.Equal(t, "one", value.Str)
}

func TestParseDuplicateKeys(t *testing.T) {

	got, err := ParseExpr(`['a' => 1, 'b' => 2, 'a' => 3]`)
	require.NoError(t, err)

	entries := got.Map.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key.Str)
	assert.Equal(t, int64(3), entries[0].Value.Int)
}

func TestParsePositions(t *testing.T) {

	src := "<?php\n// comment\n$CONFIG = array (\n  'dbtype' => 'pgsql',\n\t'dbport' => 'abc',\n  'ünï' => 'x', 'y' => 1,\n);\n"
	tree, err := ParseConfig([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, literal.Pos{Line: 3, Column: 11}, tree.Pos)

	value, _ := tree.Get("dbtype")
	assert.Equal(t, literal.Pos{Line: 4, Column: 15}, value.Pos)

	value, _ = tree.Get("dbport")
	assert.Equal(t, literal.Pos{Line: 5, Column: 14}, value.Pos)

	// columns count runes, not bytes
	value, _ = tree.Get("y")
	assert.Equal(t, literal.Pos{Line: 6, Column: 24}, value.Pos)

	entries := tree.Entries()
	assert.Equal(t, literal.Pos{Line: 4, Column: 3}, entries[0].Key.Pos)
}

func TestParseConfig(t *testing.T) {

	tree, err := ParseConfig([]byte(`<?php
$CONFIG = [
  # hash comment
  'dbtype' => 'sqlite3', /* block
  comment */
  'datadirectory' => '/var/www/data',
];
`))
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Len())

	_, err = ParseConfig([]byte("<?php\n$OTHER = [];\n"))
	assert.True(t, errors.Is(err, ErrNoConfig))

	_, err = ParseConfig([]byte("<?php\n$CONFIG = 'x';\n"))
	assert.True(t, errors.Is(err, ErrNotArray))
}

func TestParseSyntaxErrors(t *testing.T) {

	tests := []struct {
		src  string
		line int
	}{
		{"[\n'a' => 'b'", 2},
		{"['a' => 'b' 'c']", 1},
		{"[\n\n'unterminated]", 3},
		{"[/* open", 1},
		{"[...$x]", 1},
		{"<<<EOT\nx\nEOT", 1},
		{"['a' => ]", 1},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ParseExpr(tt.src)
			var serr *SyntaxError
			require.True(t, errors.As(err, &serr), "got %v", err)
			assert.Equal(t, tt.line, serr.Pos.Line)
		})
	}
}
