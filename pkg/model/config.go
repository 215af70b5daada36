package model

import (
	"net/netip"
	"path"
	"strings"
)

// Config holds the connection settings extracted from a config.php
type Config struct {
	Database     DatabaseConfig `json:"database" yaml:"database"`
	Cache        *CacheConfig   `json:"cache,omitempty" yaml:"cache,omitempty"`
	OverwriteURL *string        `json:"overwriteUrl,omitempty" yaml:"overwriteUrl,omitempty"`
}

type DbKind string

const (
	DbKindSqlite   DbKind = "sqlite"
	DbKindMysql    DbKind = "mysql"
	DbKindPostgres DbKind = "postgres"
)

type HostKind string

const (
	HostTCP    HostKind = "tcp"
	HostSocket HostKind = "socket"
)

// DbHost is either a hostname/ip or the filesystem path of a unix socket
type DbHost struct {
	Kind    HostKind `json:"kind" yaml:"kind"`
	Address string   `json:"address" yaml:"address"`
}

func TCPHost(name string) DbHost {
	return DbHost{Kind: HostTCP, Address: name}
}

func SocketHost(path string) DbHost {
	return DbHost{Kind: HostSocket, Address: path}
}

func (rx DbHost) IsSocket() bool {
	return rx.Kind == HostSocket
}

// return true if host is an IPv6 literal, zoned or not (needs brackets in URIs)
func (rx DbHost) IsIPv6() bool {
	if rx.IsSocket() {
		return false
	}
	addr, err := netip.ParseAddr(rx.Address)
	return err == nil && addr.Is6()
}

// return true if host is an ip address rather than a name
func (rx DbHost) IsIP() bool {
	if rx.IsSocket() {
		return false
	}
	_, err := netip.ParseAddr(rx.Address)
	return err == nil
}

func (rx DbHost) String() string {
	if rx.IsSocket() {
		return "unix:" + rx.Address
	}
	return rx.Address
}

// DbTLS holds the PDO mysql ssl driver options
type DbTLS struct {
	KeyPath          *string `json:"keyPath,omitempty" yaml:"keyPath,omitempty"`
	CertPath         *string `json:"certPath,omitempty" yaml:"certPath,omitempty"`
	CAPath           *string `json:"caPath,omitempty" yaml:"caPath,omitempty"`
	VerifyServerCert bool    `json:"verifyServerCert" yaml:"verifyServerCert"`
}

// return true if any certificate path is set
func (rx DbTLS) HasPaths() bool {
	return rx.KeyPath != nil || rx.CertPath != nil || rx.CAPath != nil
}

type DatabaseConfig struct {
	Kind          DbKind  `json:"kind" yaml:"kind"`
	Host          DbHost  `json:"host" yaml:"host"`
	Port          *uint16 `json:"port,omitempty" yaml:"port,omitempty"`
	DatabaseName  string  `json:"databaseName" yaml:"databaseName"`
	Username      *string `json:"username,omitempty" yaml:"username,omitempty"`
	Password      *string `json:"password,omitempty" yaml:"password,omitempty"`
	TablePrefix   string  `json:"tablePrefix" yaml:"tablePrefix"`
	TLS           *DbTLS  `json:"tls,omitempty" yaml:"tls,omitempty"`
	DataDirectory string  `json:"dataDirectory,omitempty" yaml:"dataDirectory,omitempty"` // sqlite only
}

// return the sqlite database file, <datadirectory>/<dbname>.db
func (rx DatabaseConfig) SqlitePath() string {
	return path.Join(strings.TrimRight(rx.DataDirectory, "/"), rx.DatabaseName+".db")
}
