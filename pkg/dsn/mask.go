package dsn

import (
	"net/url"
	"strings"

	"github.com/kos-v/dsnparser"
	"github.com/samber/lo"
)

// Mask returns uri with the password replaced by ***, input that does not parse is returned as is
func Mask(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.User == nil {
		return uri
	}
	if _, ok := parsed.User.Password(); !ok {
		return uri
	}
	// the password appears percent-encoded in uri, it is re-rendered instead of replaced
	parsed.User = url.UserPassword(parsed.User.Username(), "***")
	return strings.Replace(parsed.String(), ":%2A%2A%2A@", ":***@", 1)
}

// Endpoint returns "host:port" of uri, the socket path for socket and sqlite uris or defval
func Endpoint(uri, defval string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return defval
	}
	if parsed.Scheme == "unix" || parsed.Scheme == "sqlite" {
		return parsed.Path
	}
	if socket := lo.CoalesceOrEmpty(parsed.Query().Get("socket"), parsed.Query().Get("host")); socket != "" {
		return socket
	}
	dsn := dsnparser.Parse(uri)
	if dsn == nil || dsn.GetHost() == "" {
		return defval
	}
	if dsn.GetPort() != "" {
		return dsn.GetHost() + ":" + dsn.GetPort()
	}
	return dsn.GetHost()
}
