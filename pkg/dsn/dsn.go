// Package dsn renders extracted connection settings as URIs for connector libraries.
//
// All functions are pure. Credentials are percent-encoded as URI user info,
// IPv6 hosts are bracketed and absent ports are left out so the connector
// applies its own default.
package dsn

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/metraction/ncconf/pkg/model"
	"github.com/samber/lo"
)

// ordered query parameters, '/' is left readable
type params []string

func (rx *params) add(key, value string) {
	*rx = append(*rx, url.QueryEscape(key)+"="+strings.ReplaceAll(url.QueryEscape(value), "%2F", "/"))
}

func (rx params) String() string {
	if len(rx) == 0 {
		return ""
	}
	return "?" + strings.Join(rx, "&")
}

// return user info with trailing @, empty if there are no credentials
func userInfo(username, password *string) string {
	if username == nil && password == nil {
		return ""
	}
	user := ""
	if username != nil {
		user = *username
	}
	if password == nil {
		return url.User(user).String() + "@"
	}
	return url.UserPassword(user, *password).String() + "@"
}

// return an ipv6 literal in brackets with its zone escaped, [fe80::1%25eth0]
func bracketHost(host string) string {
	if !model.TCPHost(host).IsIPv6() {
		return host
	}
	return "[" + strings.Replace(host, "%", "%25", 1) + "]"
}

// return host[:port] with ipv6 literals in brackets
func hostPort(host model.DbHost, port *uint16) string {
	name := bracketHost(host.Address)
	if port == nil {
		return name
	}
	return name + ":" + strconv.Itoa(int(*port))
}

func seconds(f float64) string {
	return time.Duration(f * float64(time.Second)).String()
}

// DatabaseURI renders mysql://, postgresql:// or sqlite:// URIs.
// Socket hosts use localhost as host and pass the path as socket (mysql) or host (postgres) parameter.
func DatabaseURI(db model.DatabaseConfig) string {
	switch db.Kind {
	case model.DbKindSqlite:
		return "sqlite://" + db.SqlitePath()
	case model.DbKindMysql:
		return serverURI("mysql", db, mysqlParams(db))
	case model.DbKindPostgres:
		return serverURI("postgresql", db, postgresParams(db))
	}
	return ""
}

func serverURI(scheme string, db model.DatabaseConfig, query params) string {
	host := "localhost"
	if !db.Host.IsSocket() {
		host = hostPort(db.Host, db.Port)
	}
	return scheme + "://" + userInfo(db.Username, db.Password) + host + "/" + url.PathEscape(db.DatabaseName) + query.String()
}

func mysqlParams(db model.DatabaseConfig) params {
	query := params{}
	switch {
	case db.TLS != nil && db.TLS.HasPaths():
		query.add("ssl-mode", lo.Ternary(db.TLS.VerifyServerCert, "verify_identity", "verify_ca"))
		addPath(&query, "ssl-ca", db.TLS.CAPath)
		addPath(&query, "ssl-cert", db.TLS.CertPath)
		addPath(&query, "ssl-key", db.TLS.KeyPath)
	case db.TLS == nil && db.Host.IsIP():
		// certificates are not issued for ip addresses, unless verification is off tls cannot work
		query.add("ssl-mode", "disabled")
	}
	if db.Host.IsSocket() {
		query.add("socket", db.Host.Address)
	}
	return query
}

func postgresParams(db model.DatabaseConfig) params {
	query := params{}
	switch {
	case db.TLS != nil && db.TLS.HasPaths():
		query.add("sslmode", lo.Ternary(db.TLS.VerifyServerCert, "verify-full", "verify-ca"))
		addPath(&query, "sslrootcert", db.TLS.CAPath)
		addPath(&query, "sslcert", db.TLS.CertPath)
		addPath(&query, "sslkey", db.TLS.KeyPath)
	case db.TLS == nil && db.Host.IsIP():
		query.add("sslmode", "disable")
	}
	if db.Host.IsSocket() {
		query.add("host", db.Host.Address)
	}
	return query
}

func addPath(query *params, key string, value *string) {
	if value != nil {
		query.add(key, *value)
	}
}

// CacheURI renders go-redis style URIs:
//
//	redis://:pass@host:6379/1         single node
//	unix://:pass@/run/redis.sock?db=1 socket
//	rediss://:pass@seed1:6380?addr=seed2:6381   cluster
func CacheURI(cache model.CacheConfig) string {
	if cache.Cluster != nil {
		return clusterURI(*cache.Cluster)
	}
	if cache.Single != nil {
		return nodeURI(*cache.Single)
	}
	return ""
}

func redisScheme(secure bool) string {
	return lo.Ternary(secure, "rediss", "redis")
}

func nodeURI(node model.CacheNode) string {
	query := params{}
	if node.Host.IsSocket() {
		if node.DatabaseIndex != nil {
			query.add("db", strconv.FormatUint(uint64(*node.DatabaseIndex), 10))
		}
		timeouts(&query, node.Timeout, node.ReadTimeout)
		socket := (&url.URL{Path: node.Host.Address}).EscapedPath()
		return "unix://" + userInfo(node.Username, node.Password) + socket + query.String()
	}
	path := ""
	if node.DatabaseIndex != nil {
		path = "/" + strconv.FormatUint(uint64(*node.DatabaseIndex), 10)
	}
	timeouts(&query, node.Timeout, node.ReadTimeout)
	return redisScheme(node.Secure) + "://" + userInfo(node.Username, node.Password) + hostPort(node.Host, node.Port) + path + query.String()
}

func clusterURI(cluster model.CacheCluster) string {
	if len(cluster.Seeds) == 0 {
		return ""
	}
	query := params{}
	// addr values are plain host:port, the query escaping covers the zone
	for _, seed := range cluster.Seeds[1:] {
		query.add("addr", net.JoinHostPort(seed.Host, strconv.Itoa(int(seed.Port))))
	}
	timeouts(&query, cluster.Timeout, cluster.ReadTimeout)
	return redisScheme(cluster.Secure) + "://" + userInfo(cluster.Username, cluster.Password) + seedAddr(cluster.Seeds[0]) + query.String()
}

func seedAddr(seed model.Seed) string {
	return bracketHost(seed.Host) + ":" + strconv.Itoa(int(seed.Port))
}

// php uses 0 for "no timeout", it is left out so the client default applies
func timeouts(query *params, timeout, readTimeout *float64) {
	if lo.FromPtr(timeout) > 0 {
		query.add("dial_timeout", seconds(*timeout))
	}
	if lo.FromPtr(readTimeout) > 0 {
		query.add("read_timeout", seconds(*readTimeout))
	}
}
