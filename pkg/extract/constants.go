package extract

import (
	"strconv"
	"strings"

	"github.com/metraction/ncconf/pkg/literal"
	"github.com/metraction/ncconf/pkg/model"
)

type ConstantKind int

const (
	ConstantDriverOption ConstantKind = iota + 1
	ConstantFailover
)

// DriverOption identifies a recognized dbdriveroptions key
type DriverOption int

const (
	OptionUnknown DriverOption = iota
	OptionSSLKey
	OptionSSLCert
	OptionSSLCA
	OptionSSLVerifyServerCert
)

// Constant is a resolved class constant
type Constant struct {
	Name     string
	Value    int64
	Kind     ConstantKind
	Option   DriverOption         // set for ConstantDriverOption
	Failover model.FailoverPolicy // set for ConstantFailover
}

// read-only after init
var constants = map[string]Constant{}

func init() {
	for _, c := range []Constant{
		{Name: `PDO::MYSQL_ATTR_SSL_KEY`, Value: 1007, Kind: ConstantDriverOption, Option: OptionSSLKey},
		{Name: `PDO::MYSQL_ATTR_SSL_CERT`, Value: 1008, Kind: ConstantDriverOption, Option: OptionSSLCert},
		{Name: `PDO::MYSQL_ATTR_SSL_CA`, Value: 1009, Kind: ConstantDriverOption, Option: OptionSSLCA},
		{Name: `PDO::MYSQL_ATTR_SSL_VERIFY_SERVER_CERT`, Value: 1014, Kind: ConstantDriverOption, Option: OptionSSLVerifyServerCert},
		{Name: `RedisCluster::FAILOVER_NONE`, Value: 0, Kind: ConstantFailover, Failover: model.FailoverNone},
		{Name: `RedisCluster::FAILOVER_ERROR`, Value: 1, Kind: ConstantFailover, Failover: model.FailoverError},
		{Name: `RedisCluster::FAILOVER_DISTRIBUTE`, Value: 2, Kind: ConstantFailover, Failover: model.FailoverDistribute},
		// replicas only, closest policy we model is distribute
		{Name: `RedisCluster::FAILOVER_DISTRIBUTE_SLAVES`, Value: 3, Kind: ConstantFailover, Failover: model.FailoverDistribute},
	} {
		constants[c.Name] = c
	}
}

func canonicalName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), `\`)
}

// ResolveName looks up a class constant, with or without leading backslash
func ResolveName(name string) (Constant, bool) {
	c, ok := constants[canonicalName(name)]
	return c, ok
}

// Resolve maps a constant expression to a known constant or fails with ErrUnknownConstant
func Resolve(value literal.Value) (Constant, error) {
	if value.Kind != literal.KindConstant {
		return Constant{}, &Error{Kind: ErrUnknownConstant, Name: value.Describe(), Pos: value.Pos}
	}
	c, ok := ResolveName(value.Str)
	if !ok {
		return Constant{}, unknownConstant("", value.Str, value.Pos)
	}
	return c, nil
}

func byValue(kind ConstantKind, value int64) (Constant, bool) {
	for _, c := range constants {
		if c.Kind == kind && c.Value == value {
			return c, true
		}
	}
	return Constant{}, false
}

// return the driver option a dbdriveroptions key stands for, OptionUnknown if not recognized.
// integer keys appear when the tree comes from executing php
func driverOption(key literal.Key) DriverOption {
	var c Constant
	var ok bool
	switch key.Kind {
	case literal.KeyConstant:
		c, ok = ResolveName(key.Str)
	case literal.KeyInt:
		c, ok = byValue(ConstantDriverOption, key.Int)
	}
	if !ok || c.Kind != ConstantDriverOption {
		return OptionUnknown
	}
	return c.Option
}

// resolve a failover_mode value
func failoverPolicy(field string, value literal.Value) (model.FailoverPolicy, error) {
	switch value.Kind {
	case literal.KindConstant:
		c, ok := ResolveName(value.Str)
		if !ok || c.Kind != ConstantFailover {
			return "", unknownConstant(field, value.Str, value.Pos)
		}
		return c.Failover, nil
	case literal.KindInt:
		c, ok := byValue(ConstantFailover, value.Int)
		if !ok {
			return "", unknownConstant(field, strconv.FormatInt(value.Int, 10), value.Pos)
		}
		return c.Failover, nil
	case literal.KindUnresolved:
		return "", unresolved(field, value)
	}
	return "", mismatch(field, "RedisCluster failover constant", value)
}
