package extract

import (
	"errors"
	"net/netip"
	"path"
	"strconv"
	"strings"

	"github.com/metraction/ncconf/pkg/model"
)

var (
	errInvalidPort = errors.New("invalid port")
	errInvalidHost = errors.New("invalid host")
)

type hostParts struct {
	Host model.DbHost
	Port *uint16 // port embedded in the host string
}

// splitHost classifies a host string, an empty host name before a port becomes defval:
//
//	/run/mysqld/mysqld.sock   socket
//	[::1] or [::1]:3306       tcp, ipv6
//	fe80::1, fe80::1%eth0     tcp, bare ipv6 is never split
//	db:3306                   tcp with port
//	:3306                     tcp, defval with port
//	localhost:/tmp/my.sock    socket
func splitHost(raw, defval string) (hostParts, error) {
	if strings.HasPrefix(raw, "/") {
		return hostParts{Host: model.SocketHost(raw)}, nil
	}
	if strings.HasPrefix(raw, "[") {
		end := strings.IndexByte(raw, ']')
		if end < 0 {
			return hostParts{}, errInvalidHost
		}
		host := raw[1:end]
		if addr, err := netip.ParseAddr(host); err != nil || !addr.Is6() {
			return hostParts{}, errInvalidHost
		}
		rest := raw[end+1:]
		if rest == "" {
			return hostParts{Host: model.TCPHost(host)}, nil
		}
		if !strings.HasPrefix(rest, ":") {
			return hostParts{}, errInvalidHost
		}
		port, err := parsePort(rest[1:])
		if err != nil {
			return hostParts{}, err
		}
		return hostParts{Host: model.TCPHost(host), Port: &port}, nil
	}
	if strings.Count(raw, ":") > 1 {
		if _, err := netip.ParseAddr(raw); err != nil {
			return hostParts{}, errInvalidHost
		}
		return hostParts{Host: model.TCPHost(raw)}, nil
	}
	name, rest, found := strings.Cut(raw, ":")
	if name == "" {
		name = defval
	}
	if !found || rest == "" {
		return hostParts{Host: model.TCPHost(name)}, nil
	}
	if strings.HasPrefix(rest, "/") {
		return hostParts{Host: model.SocketHost(rest)}, nil
	}
	port, err := parsePort(rest)
	if err != nil {
		return hostParts{}, err
	}
	return hostParts{Host: model.TCPHost(name), Port: &port}, nil
}

func parsePort(input string) (uint16, error) {
	n, err := strconv.ParseUint(input, 10, 16)
	if err != nil || n == 0 {
		return 0, errInvalidPort
	}
	return uint16(n), nil
}

// splitSeed splits "host:port" on the last colon, brackets around ipv6 hosts are removed
func splitSeed(raw string) (model.Seed, error) {
	k := strings.LastIndexByte(raw, ':')
	if k <= 0 {
		return model.Seed{}, errInvalidPort
	}
	port, err := parsePort(raw[k+1:])
	if err != nil {
		return model.Seed{}, err
	}
	host := strings.TrimSuffix(strings.TrimPrefix(raw[:k], "["), "]")
	if host == "" {
		return model.Seed{}, errInvalidHost
	}
	if strings.Contains(host, ":") {
		if _, err := netip.ParseAddr(host); err != nil {
			return model.Seed{}, errInvalidHost
		}
	}
	return model.Seed{Host: host, Port: port}, nil
}

// postgres clients want the socket directory, not the socket file (.s.PGSQL.5432)
func socketDir(socket string) string {
	if strings.HasPrefix(path.Base(socket), ".s.") {
		return path.Dir(socket)
	}
	return socket
}

// strip tls:// or rediss:// from a redis host, true if one was present
func stripTLSScheme(host string) (string, bool) {
	for _, scheme := range []string{"tls://", "rediss://"} {
		if strings.HasPrefix(host, scheme) {
			return strings.TrimPrefix(host, scheme), true
		}
	}
	return host, false
}
