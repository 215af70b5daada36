package model

type FailoverPolicy string

const (
	FailoverNone       FailoverPolicy = "none"
	FailoverError      FailoverPolicy = "error"
	FailoverDistribute FailoverPolicy = "distribute"
)

// CacheConfig holds exactly one of Single or Cluster
type CacheConfig struct {
	Single  *CacheNode    `json:"single,omitempty" yaml:"single,omitempty"`
	Cluster *CacheCluster `json:"cluster,omitempty" yaml:"cluster,omitempty"`
}

func (rx CacheConfig) IsCluster() bool {
	return rx.Cluster != nil
}

// Endpoint is one reachable cache address
type Endpoint struct {
	Host DbHost
	Port *uint16
}

// return all endpoints of the cache, the node or the cluster seeds
func (rx CacheConfig) Nodes() []Endpoint {
	if rx.Cluster != nil {
		result := make([]Endpoint, 0, len(rx.Cluster.Seeds))
		for _, seed := range rx.Cluster.Seeds {
			port := seed.Port
			result = append(result, Endpoint{Host: TCPHost(seed.Host), Port: &port})
		}
		return result
	}
	if rx.Single != nil {
		return []Endpoint{{Host: rx.Single.Host, Port: rx.Single.Port}}
	}
	return nil
}

// TLSContext mirrors the php stream ssl context used by phpredis
type TLSContext struct {
	LocalCert      *string `json:"localCert,omitempty" yaml:"localCert,omitempty"`
	LocalKey       *string `json:"localKey,omitempty" yaml:"localKey,omitempty"`
	CAFile         *string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	VerifyPeer     bool    `json:"verifyPeer" yaml:"verifyPeer"`
	VerifyPeerName bool    `json:"verifyPeerName" yaml:"verifyPeerName"`
}

// return true if nothing differs from an absent context
func (rx TLSContext) IsDefault() bool {
	return rx.LocalCert == nil && rx.LocalKey == nil && rx.CAFile == nil && rx.VerifyPeer && rx.VerifyPeerName
}

type CacheNode struct {
	Host          DbHost      `json:"host" yaml:"host"`
	Port          *uint16     `json:"port,omitempty" yaml:"port,omitempty"`
	Username      *string     `json:"username,omitempty" yaml:"username,omitempty"`
	Password      *string     `json:"password,omitempty" yaml:"password,omitempty"`
	DatabaseIndex *uint32     `json:"databaseIndex,omitempty" yaml:"databaseIndex,omitempty"`
	Timeout       *float64    `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	ReadTimeout   *float64    `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	Secure        bool        `json:"secure" yaml:"secure"` // tls:// scheme or ssl context given
	TLS           *TLSContext `json:"tls,omitempty" yaml:"tls,omitempty"`
}

type Seed struct {
	Host string `json:"host" yaml:"host"`
	Port uint16 `json:"port" yaml:"port"`
}

type CacheCluster struct {
	Seeds       []Seed         `json:"seeds" yaml:"seeds"`
	Username    *string        `json:"username,omitempty" yaml:"username,omitempty"`
	Password    *string        `json:"password,omitempty" yaml:"password,omitempty"`
	Timeout     *float64       `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	ReadTimeout *float64       `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	Failover    FailoverPolicy `json:"failover" yaml:"failover"`
	Secure      bool           `json:"secure" yaml:"secure"`
	TLS         *TLSContext    `json:"tls,omitempty" yaml:"tls,omitempty"`
}
