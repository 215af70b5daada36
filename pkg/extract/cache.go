package extract

import (
	"fmt"

	"github.com/metraction/ncconf/pkg/literal"
	"github.com/metraction/ncconf/pkg/model"
)

const (
	keyRedis        = "redis"
	keyRedisCluster = "redis.cluster"

	defaultRedisHost = "127.0.0.1"
)

// ExtractCache reads the redis or redis.cluster section, nil if neither is configured.
// A cluster section wins over a single one.
func (rx *Extractor) ExtractCache(tree *literal.Map) (*model.CacheConfig, error) {
	root := rootSection(tree)

	cluster, ok, err := root.optMap(keyRedisCluster)
	if err != nil {
		return nil, err
	}
	if ok {
		if _, single := tree.Get(keyRedis); single {
			rx.logger.Debug().Msg("both redis and redis.cluster configured, using cluster")
		}
		result, err := rx.cluster(cluster)
		if err != nil {
			return nil, err
		}
		return &model.CacheConfig{Cluster: result}, nil
	}

	single, ok, err := root.optMap(keyRedis)
	if err != nil || !ok {
		return nil, err
	}
	result, err := rx.node(single)
	if err != nil {
		return nil, err
	}
	return &model.CacheConfig{Single: result}, nil
}

func (rx *Extractor) node(sec section) (*model.CacheNode, error) {
	result := model.CacheNode{}

	raw, hostValue, err := sec.optString("host")
	if err != nil {
		return nil, err
	}
	host := defaultRedisHost
	if raw != nil && *raw != "" {
		host = *raw
	}
	host, result.Secure = stripTLSScheme(host)
	parts, err := splitHost(host, defaultRedisHost)
	if err != nil {
		return nil, mismatch(sec.field("host"), "hostname, host:port or socket path", hostValue)
	}
	result.Host = parts.Host

	// phpredis wants port 0 for sockets
	explicit, portValue, err := sec.optPort("port", true)
	if err != nil {
		return nil, err
	}
	if !parts.Host.IsSocket() {
		if parts.Port != nil && explicit != nil && *parts.Port != *explicit {
			return nil, &Error{
				Kind:     ErrTypeMismatch,
				Field:    sec.field("port"),
				Expected: fmt.Sprintf("port %d as given in host", *parts.Port),
				Found:    portValue.Describe(),
				Pos:      portValue.Pos,
			}
		}
		result.Port = parts.Port
		if result.Port == nil {
			result.Port = explicit
		}
	}

	if result.Username, err = sec.optNonEmpty("user"); err != nil {
		return nil, err
	}
	if result.Password, err = sec.optNonEmpty("password"); err != nil {
		return nil, err
	}
	if result.DatabaseIndex, err = sec.optUint32("dbindex"); err != nil {
		return nil, err
	}
	if result.DatabaseIndex == nil {
		if result.DatabaseIndex, err = sec.optUint32("database_index"); err != nil {
			return nil, err
		}
	}
	if result.Timeout, err = sec.optSeconds("timeout"); err != nil {
		return nil, err
	}
	if result.ReadTimeout, err = sec.optSeconds("read_timeout"); err != nil {
		return nil, err
	}
	if result.TLS, err = rx.tlsContext(sec); err != nil {
		return nil, err
	}
	result.Secure = result.Secure || result.TLS != nil

	rx.logger.Debug().
		Str("host", result.Host.String()).
		Bool("secure", result.Secure).
		Msg("redis section")
	return &result, nil
}

func (rx *Extractor) cluster(sec section) (*model.CacheCluster, error) {
	result := model.CacheCluster{Failover: model.FailoverNone}

	seeds, ok, err := sec.optMap("seeds")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missing(sec.field("seeds"), sec.pos)
	}
	if seeds.m.Len() == 0 {
		return nil, &Error{Kind: ErrEmptySeedList, Field: seeds.path, Pos: seeds.pos}
	}
	for _, entry := range seeds.m.Entries() {
		field := seeds.entryField(entry.Key)
		value := entry.Value
		switch value.Kind {
		case literal.KindString:
		case literal.KindUnresolved:
			return nil, unresolved(field, value)
		default:
			return nil, mismatch(field, "host:port string", value)
		}
		raw, secure := stripTLSScheme(value.Str)
		seed, err := splitSeed(raw)
		if err != nil {
			return nil, mismatch(field, "host:port string", value)
		}
		result.Secure = result.Secure || secure
		result.Seeds = append(result.Seeds, seed)
	}

	if result.Username, err = sec.optNonEmpty("user"); err != nil {
		return nil, err
	}
	if result.Password, err = sec.optNonEmpty("password"); err != nil {
		return nil, err
	}
	if result.Timeout, err = sec.optSeconds("timeout"); err != nil {
		return nil, err
	}
	if result.ReadTimeout, err = sec.optSeconds("read_timeout"); err != nil {
		return nil, err
	}
	if value, ok, err := sec.lookup("failover_mode"); err != nil {
		return nil, err
	} else if ok {
		if result.Failover, err = failoverPolicy(sec.field("failover_mode"), value); err != nil {
			return nil, err
		}
	}
	if result.TLS, err = rx.tlsContext(sec); err != nil {
		return nil, err
	}
	result.Secure = result.Secure || result.TLS != nil

	rx.logger.Debug().
		Int("seeds", len(result.Seeds)).
		Str("failover", string(result.Failover)).
		Bool("secure", result.Secure).
		Msg("redis cluster section")
	return &result, nil
}

// tlsContext reads ssl_context, nil when absent or when it only holds defaults
func (rx *Extractor) tlsContext(sec section) (*model.TLSContext, error) {
	block, ok, err := sec.optMap("ssl_context")
	if !ok || err != nil {
		return nil, err
	}
	result := model.TLSContext{}
	if result.LocalCert, err = block.optNonEmpty("local_cert"); err != nil {
		return nil, err
	}
	if result.LocalKey, err = block.optNonEmpty("local_pk"); err != nil {
		return nil, err
	}
	if result.CAFile, err = block.optNonEmpty("cafile"); err != nil {
		return nil, err
	}
	if result.VerifyPeer, err = block.optBool("verify_peer", true); err != nil {
		return nil, err
	}
	if result.VerifyPeerName, err = block.optBool("verify_peer_name", true); err != nil {
		return nil, err
	}
	if result.IsDefault() {
		rx.logger.Debug().Str("field", block.path).Msg("empty ssl context dropped")
		return nil, nil
	}
	return &result, nil
}
