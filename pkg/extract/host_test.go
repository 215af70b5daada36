package extract

import (
	"testing"

	"github.com/metraction/ncconf/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHost(t *testing.T) {

	tests := []struct {
		input string
		host  model.DbHost
		port  *uint16
	}{
		{"localhost", model.TCPHost("localhost"), nil},
		{"db:3307", model.TCPHost("db"), lo.ToPtr[uint16](3307)},
		{"db:", model.TCPHost("db"), nil},
		{"10.0.0.1:5432", model.TCPHost("10.0.0.1"), lo.ToPtr[uint16](5432)},
		{"/run/mysqld/mysqld.sock", model.SocketHost("/run/mysqld/mysqld.sock"), nil},
		{"localhost:/tmp/my.sock", model.SocketHost("/tmp/my.sock"), nil},
		{"[::1]", model.TCPHost("::1"), nil},
		{"[::1]:3306", model.TCPHost("::1"), lo.ToPtr[uint16](3306)},
		{"fe80::1", model.TCPHost("fe80::1"), nil},
		{"2001:db8::1:5432", model.TCPHost("2001:db8::1:5432"), nil},
		{"fe80::1%eth0", model.TCPHost("fe80::1%eth0"), nil},
		{"[fe80::1%eth0]:5432", model.TCPHost("fe80::1%eth0"), lo.ToPtr[uint16](5432)},
		{":3306", model.TCPHost("localhost"), lo.ToPtr[uint16](3306)},
		{":", model.TCPHost("localhost"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parts, err := splitHost(tt.input, "localhost")
			require.NoError(t, err)
			assert.Equal(t, tt.host, parts.Host)
			assert.Equal(t, tt.port, parts.Port)
		})
	}

	for _, input := range []string{"db:abc", "db:0", "db:70000", "[::1]:", ":x"} {
		_, err := splitHost(input, "localhost")
		assert.ErrorIs(t, err, errInvalidPort, input)
	}
	for _, input := range []string{"db:3306:x", "a:b:c", "[::1", "[::1]x", "[db]:3306", "[10.0.0.1]"} {
		_, err := splitHost(input, "localhost")
		assert.ErrorIs(t, err, errInvalidHost, input)
	}
}

func TestSplitSeed(t *testing.T) {

	seed, err := splitSeed("db1:6380")
	require.NoError(t, err)
	assert.Equal(t, model.Seed{Host: "db1", Port: 6380}, seed)

	seed, err = splitSeed("[fd00::2]:7000")
	require.NoError(t, err)
	assert.Equal(t, model.Seed{Host: "fd00::2", Port: 7000}, seed)

	seed, err = splitSeed("fd00::2:7000")
	require.NoError(t, err)
	assert.Equal(t, model.Seed{Host: "fd00::2", Port: 7000}, seed)

	for _, input := range []string{"db1", ":6380", "db1:", "db1:x"} {
		_, err := splitSeed(input)
		assert.ErrorIs(t, err, errInvalidPort, input)
	}
	for _, input := range []string{"[]:6380", "db:1:6379"} {
		_, err := splitSeed(input)
		assert.ErrorIs(t, err, errInvalidHost, input)
	}
}

func TestSocketDir(t *testing.T) {

	assert.Equal(t, "/var/run/postgresql", socketDir("/var/run/postgresql/.s.PGSQL.5432"))
	assert.Equal(t, "/var/run/postgresql", socketDir("/var/run/postgresql"))
}

func TestStripTLSScheme(t *testing.T) {

	host, secure := stripTLSScheme("tls://redis.internal")
	assert.Equal(t, "redis.internal", host)
	assert.True(t, secure)

	host, secure = stripTLSScheme("rediss://redis.internal")
	assert.Equal(t, "redis.internal", host)
	assert.True(t, secure)

	host, secure = stripTLSScheme("redis.internal")
	assert.Equal(t, "redis.internal", host)
	assert.False(t, secure)
}
