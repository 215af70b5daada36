package dsn

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/metraction/ncconf/pkg/model"
	"github.com/samber/lo"
)

const mysqlDefaultPort = 3306

// MySQLDSN renders the go-sql-driver form, user:pass@tcp(host:3306)/db?...
// tlsConfig is passed through as the tls parameter, it is either a registered
// config name or one of true, false, skip-verify, preferred. Empty omits it.
func MySQLDSN(db model.DatabaseConfig, tlsConfig string) string {
	cfg := mysql.NewConfig()
	cfg.User = lo.FromPtr(db.Username)
	cfg.Passwd = lo.FromPtr(db.Password)
	cfg.DBName = db.DatabaseName
	if db.Host.IsSocket() {
		cfg.Net = "unix"
		cfg.Addr = db.Host.Address
	} else {
		cfg.Net = "tcp"
		port := int(lo.FromPtrOr(db.Port, mysqlDefaultPort))
		cfg.Addr = net.JoinHostPort(db.Host.Address, strconv.Itoa(port))
	}
	cfg.TLSConfig = tlsConfig
	cfg.ParseTime = true
	return cfg.FormatDSN()
}
