package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/metraction/ncconf/internal/integrations"
	"github.com/metraction/ncconf/internal/utils"
	"github.com/metraction/ncconf/pkg/dsn"
	"github.com/metraction/ncconf/pkg/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrKeyNotFound = errors.New("key not found")

// check keys expire quickly, they never collide with nextcloud keys
const checkPrefix = "ncconf:check:"

// redis cache of an extracted config, single node or cluster

type Cache struct {
	Config   model.CacheConfig
	Endpoint string // uri with masked password

	rdb    redis.UniversalClient
	logger *zerolog.Logger
}

func NewCache(config model.CacheConfig, logger *zerolog.Logger) (*Cache, error) {

	logger.Debug().
		Bool("cluster", config.IsCluster()).
		Msg("NewCache() ..")

	// prepare client, does not connect
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return &Cache{
		Config:   config,
		Endpoint: dsn.Mask(dsn.CacheURI(config)),
		rdb:      client,
		logger:   logger,
	}, nil
}

func newClient(config model.CacheConfig) (redis.UniversalClient, error) {
	uri := dsn.CacheURI(config)
	if uri == "" {
		return nil, errors.New("cache config holds neither node nor cluster")
	}

	if config.Cluster != nil {
		options, err := redis.ParseClusterURL(uri)
		if err != nil {
			return nil, err
		}
		// seeds differ in name, the dialer takes the name of each node address
		if options.TLSConfig != nil {
			options.TLSConfig.ServerName = ""
		}
		if err := applyTLS(&options.TLSConfig, config.Cluster.TLS, ""); err != nil {
			return nil, err
		}
		// php RedisCluster reads from replicas for the distribute policies only
		options.ReadOnly = config.Cluster.Failover == model.FailoverDistribute
		options.RouteRandomly = options.ReadOnly
		return redis.NewClusterClient(options), nil
	}

	options, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}
	if err := applyTLS(&options.TLSConfig, config.Single.TLS, config.Single.Host.Address); err != nil {
		return nil, err
	}
	return redis.NewClient(options), nil
}

// replace the tls config the uri produced (rediss://) by one loaded from the ssl context
func applyTLS(target **tls.Config, sslContext *model.TLSContext, serverName string) error {
	if sslContext == nil {
		return nil
	}
	config, err := integrations.TLSConfig(integrations.TLSFiles{
		CertFile:       sslContext.LocalCert,
		KeyFile:        sslContext.LocalKey,
		CAFile:         sslContext.CAFile,
		VerifyPeer:     sslContext.VerifyPeer,
		VerifyPeerName: sslContext.VerifyPeerName,
		ServerName:     serverName,
	})
	if err != nil {
		return fmt.Errorf("redis tls: %w", err)
	}
	*target = config
	return nil
}

func (rx Cache) ServiceName() string {
	return "cache"
}

func (rx *Cache) Connect(ctx context.Context) error {

	if err := rx.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connect (ping): %w", err)
	}
	return nil
}

func (rx *Cache) CheckConnected(ctx context.Context) error {
	return rx.rdb.Ping(ctx).Err()
}

func (rx *Cache) Close() {
	if rx.rdb != nil {
		rx.rdb.Close()
	}
}

// retrieve memory usage
func (rx *Cache) UsedMemory(ctx context.Context) (string, string, string) {

	memUsed := "N/A"
	memPeak := "N/A"
	memSystem := "N/A"

	if info, err := rx.rdb.Info(ctx, "memory").Result(); err == nil {
		for _, line := range strings.Split(info, "\n") {
			var parts []string
			line = strings.TrimSpace(line)
			if parts = strings.Split(line, "used_memory_human:"); len(parts) == 2 {
				memUsed = parts[1]
			}
			if parts = strings.Split(line, "used_memory_peak_human:"); len(parts) == 2 {
				memPeak = parts[1]
			}
			if parts = strings.Split(line, "total_system_memory_human:"); len(parts) == 2 {
				memSystem = parts[1]
			}
		}
	}
	return memUsed, memPeak, memSystem
}

func (rx Cache) Version(ctx context.Context) string {
	info, err := rx.rdb.Info(ctx, "server").Result()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(info, "\n") {
		if strings.HasPrefix(line, "redis_version:") {
			return strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
		}
	}
	return "redis_version not found"
}

func (rx Cache) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := rx.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// key not found
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return []byte(result), nil
}

// set key and expire.
func (rx Cache) SetExpire(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return rx.rdb.Set(ctx, key, data, ttl).Err()
}

// write, read back and delete a short lived key, nextcloud needs a writable cache
func (rx Cache) CheckWrite(ctx context.Context) error {
	key := checkPrefix + utils.Hostname()
	value := []byte(time.Now().UTC().Format(time.RFC3339Nano))

	if err := rx.SetExpire(ctx, key, value, 10*time.Second); err != nil {
		return fmt.Errorf("write check: %w", err)
	}
	result, err := rx.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read back: %w", err)
	}
	if string(result) != string(value) {
		return fmt.Errorf("read back: got %q, want %q", result, value)
	}
	return rx.rdb.Del(ctx, key).Err()
}
