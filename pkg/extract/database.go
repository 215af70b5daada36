package extract

import (
	"fmt"
	"strings"

	"github.com/metraction/ncconf/pkg/literal"
	"github.com/metraction/ncconf/pkg/model"
)

const (
	defaultDbHost     = "localhost"
	defaultSqliteName = "owncloud"
)

func dbKind(name string) (model.DbKind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return model.DbKindMysql, true
	case "pgsql", "postgres", "postgresql":
		return model.DbKindPostgres, true
	case "sqlite", "sqlite3":
		return model.DbKindSqlite, true
	}
	return "", false
}

// ExtractDatabase reads the db* keys of the top level config array
func (rx *Extractor) ExtractDatabase(tree *literal.Map) (model.DatabaseConfig, error) {
	root := rootSection(tree)
	result := model.DatabaseConfig{}

	dbtype, value, err := root.reqString("dbtype")
	if err != nil {
		return result, err
	}
	kind, ok := dbKind(dbtype)
	if !ok {
		return result, &Error{Kind: ErrUnsupportedDbType, Field: "dbtype", Name: dbtype, Pos: value.Pos}
	}
	result.Kind = kind

	prefix, _, err := root.optString("dbtableprefix")
	if err != nil {
		return result, err
	}
	if prefix != nil {
		result.TablePrefix = *prefix
	}

	if kind == model.DbKindSqlite {
		return rx.sqlite(root, result)
	}

	if result.DatabaseName, _, err = root.reqString("dbname"); err != nil {
		return result, err
	}
	username, _, err := root.reqString("dbuser")
	if err != nil {
		return result, err
	}
	result.Username = &username
	if result.Password, _, err = root.optString("dbpassword"); err != nil {
		return result, err
	}

	if err := rx.dbHost(root, &result); err != nil {
		return result, err
	}

	if result.TLS, err = rx.driverOptions(root); err != nil {
		return result, err
	}

	rx.logger.Debug().
		Str("kind", string(result.Kind)).
		Str("host", result.Host.String()).
		Bool("tls", result.TLS != nil).
		Msg("database section")
	return result, nil
}

func (rx *Extractor) sqlite(root section, result model.DatabaseConfig) (model.DatabaseConfig, error) {
	name, _, err := root.optString("dbname")
	if err != nil {
		return result, err
	}
	result.DatabaseName = defaultSqliteName
	if name != nil && *name != "" {
		result.DatabaseName = *name
	}
	if result.DataDirectory, _, err = root.reqString("datadirectory"); err != nil {
		return result, err
	}
	result.Host = model.TCPHost(defaultDbHost)

	rx.logger.Debug().Str("path", result.SqlitePath()).Msg("database section (sqlite)")
	return result, nil
}

// dbHost resolves dbhost and dbport into host and port
func (rx *Extractor) dbHost(root section, result *model.DatabaseConfig) error {
	raw, hostValue, err := root.optString("dbhost")
	if err != nil {
		return err
	}
	host := defaultDbHost
	if raw != nil && *raw != "" {
		host = *raw
	}
	parts, err := splitHost(host, defaultDbHost)
	if err != nil {
		return mismatch("dbhost", "hostname, host:port or socket path", hostValue)
	}

	explicit, portValue, err := root.optPort("dbport", false)
	if err != nil {
		return err
	}

	if parts.Host.IsSocket() {
		if result.Kind == model.DbKindPostgres {
			parts.Host = model.SocketHost(socketDir(parts.Host.Address))
		}
		if explicit != nil {
			rx.logger.Debug().Uint16("dbport", *explicit).Msg("dbport ignored for socket host")
		}
		result.Host = parts.Host
		return nil
	}

	if parts.Port != nil && explicit != nil && *parts.Port != *explicit {
		return &Error{
			Kind:     ErrTypeMismatch,
			Field:    "dbport",
			Expected: fmt.Sprintf("port %d as given in dbhost", *parts.Port),
			Found:    portValue.Describe(),
			Pos:      portValue.Pos,
		}
	}
	result.Host = parts.Host
	result.Port = parts.Port
	if result.Port == nil {
		result.Port = explicit
	}
	return nil
}

// driverOptions reads the tls related PDO options, other options are ignored
func (rx *Extractor) driverOptions(root section) (*model.DbTLS, error) {
	options, ok, err := root.optMap("dbdriveroptions")
	if !ok || err != nil {
		return nil, err
	}
	tls := model.DbTLS{VerifyServerCert: true}
	seen := false
	for _, entry := range options.m.Entries() {
		option := driverOption(entry.Key)
		field := options.entryField(entry.Key)
		if option == OptionUnknown {
			rx.logger.Debug().Str("key", entry.Key.String()).Msg("driver option ignored")
			continue
		}
		seen = true
		value := entry.Value
		if err := evaluable(field, value); err != nil {
			return nil, err
		}
		if option == OptionSSLVerifyServerCert {
			if tls.VerifyServerCert, err = flag(field, value); err != nil {
				return nil, err
			}
			continue
		}
		if value.IsNull() {
			continue
		}
		if value.Kind != literal.KindString {
			return nil, mismatch(field, "string", value)
		}
		if value.Str == "" {
			continue
		}
		path := value.Str
		switch option {
		case OptionSSLKey:
			tls.KeyPath = &path
		case OptionSSLCert:
			tls.CertPath = &path
		case OptionSSLCA:
			tls.CAPath = &path
		}
	}
	if !seen {
		return nil, nil
	}
	return &tls, nil
}
