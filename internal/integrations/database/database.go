// Package database opens gorm connections for an extracted database config.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/metraction/ncconf/internal/integrations"
	"github.com/metraction/ncconf/pkg/dsn"
	"github.com/metraction/ncconf/pkg/model"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrUnsupported = errors.New("unsupported database kind")

// name the mysql tls config is registered under
const mysqlTLSName = "ncconf"

// nextcloud creates <prefix>appconfig on install
const installedTable = "appconfig"

var versionQuery = map[model.DbKind]string{
	model.DbKindPostgres: "SELECT version()",
	model.DbKindMysql:    "SELECT VERSION()",
	model.DbKindSqlite:   "SELECT sqlite_version()",
}

var tablesQuery = map[model.DbKind]string{
	model.DbKindPostgres: "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name",
	model.DbKindMysql:    "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name",
	model.DbKindSqlite:   "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name",
}

type Database struct {
	Config   model.DatabaseConfig
	Endpoint string // uri with masked password

	dialector gorm.Dialector
	db        *gorm.DB
	logger    *zerolog.Logger
}

// prepare database, does not connect
func NewDatabase(config model.DatabaseConfig, logger *zerolog.Logger) (*Database, error) {
	return NewDatabaseConn(config, nil, logger)
}

// prepare database on an existing connection pool, conn may be nil
func NewDatabaseConn(config model.DatabaseConfig, conn gorm.ConnPool, logger *zerolog.Logger) (*Database, error) {

	logger.Debug().
		Str("kind", string(config.Kind)).
		Msg("NewDatabase() ..")

	dialector, err := Dialector(config, conn)
	if err != nil {
		return nil, err
	}
	return &Database{
		Config:    config,
		Endpoint:  dsn.Mask(dsn.DatabaseURI(config)),
		dialector: dialector,
		logger:    logger,
	}, nil
}

// return the gorm dialector for config, using conn instead of opening a new pool if given
func Dialector(config model.DatabaseConfig, conn gorm.ConnPool) (gorm.Dialector, error) {
	switch config.Kind {
	case model.DbKindPostgres:
		return postgres.New(postgres.Config{DSN: dsn.DatabaseURI(config), Conn: conn}), nil
	case model.DbKindMysql:
		tlsName, err := mysqlTLS(config)
		if err != nil {
			return nil, err
		}
		return mysql.New(mysql.Config{
			DSN:                       dsn.MySQLDSN(config, tlsName),
			Conn:                      conn,
			SkipInitializeWithVersion: true,
		}), nil
	case model.DbKindSqlite:
		if conn != nil {
			return &sqlite.Dialector{Conn: conn}, nil
		}
		// mode=rw, a missing database file is an error and not created
		return sqlite.Open("file:" + config.SqlitePath() + "?mode=rw"), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, config.Kind)
}

// return the tls parameter of the mysql dsn, registering a tls config when certificates are given
func mysqlTLS(config model.DatabaseConfig) (string, error) {
	switch {
	case config.TLS != nil && config.TLS.HasPaths():
		tlsConfig, err := integrations.TLSConfig(integrations.TLSFiles{
			CertFile:       config.TLS.CertPath,
			KeyFile:        config.TLS.KeyPath,
			CAFile:         config.TLS.CAPath,
			VerifyPeer:     true,
			VerifyPeerName: config.TLS.VerifyServerCert,
			ServerName:     config.Host.Address,
		})
		if err != nil {
			return "", fmt.Errorf("mysql tls: %w", err)
		}
		if err := gomysql.RegisterTLSConfig(mysqlTLSName, tlsConfig); err != nil {
			return "", fmt.Errorf("mysql tls: %w", err)
		}
		return mysqlTLSName, nil
	case config.TLS != nil:
		return lo.Ternary(config.TLS.VerifyServerCert, "true", "skip-verify"), nil
	case config.Host.IsSocket():
		return "", nil
	case config.Host.IsIP():
		return "false", nil
	}
	return "preferred", nil
}

func (rx Database) ServiceName() string {
	return "database"
}

// open the pool (once) and ping
func (rx *Database) Connect(ctx context.Context) error {

	if rx.db == nil {
		db, err := gorm.Open(rx.dialector, &gorm.Config{
			Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
			DisableAutomaticPing: true,
		})
		if err != nil {
			return fmt.Errorf("database open: %w", err)
		}
		rx.db = db
	}
	if err := rx.CheckConnected(ctx); err != nil {
		return fmt.Errorf("database connect (ping): %w", err)
	}
	return nil
}

func (rx *Database) CheckConnected(ctx context.Context) error {
	if rx.db == nil {
		return errors.New("not connected")
	}
	sqlDB, err := rx.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (rx *Database) Close() {
	if rx.db == nil {
		return
	}
	if sqlDB, err := rx.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// return the server version, empty if it cannot be read
func (rx *Database) Version(ctx context.Context) string {
	var version string
	if err := rx.db.WithContext(ctx).Raw(versionQuery[rx.Config.Kind]).Scan(&version).Error; err != nil {
		rx.logger.Debug().Err(err).Msg("version query failed")
		return ""
	}
	return version
}

// return the tables carrying the configured table prefix
func (rx *Database) Tables(ctx context.Context) ([]string, error) {
	var names []string
	if err := rx.db.WithContext(ctx).Raw(tablesQuery[rx.Config.Kind]).Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return lo.Filter(names, func(name string, _ int) bool {
		return strings.HasPrefix(name, rx.Config.TablePrefix)
	}), nil
}

// return true if the tables of an installed instance exist
func (rx *Database) Installed(ctx context.Context) (bool, error) {
	tables, err := rx.Tables(ctx)
	if err != nil {
		return false, err
	}
	return lo.Contains(tables, rx.Config.TablePrefix+installedTable), nil
}
