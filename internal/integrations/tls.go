package integrations

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
)

var ErrNoCertificates = errors.New("no certificates found")

// TLSFiles names the certificate files and verification flags of a connection
type TLSFiles struct {
	CertFile       *string
	KeyFile        *string // when nil the key is read from CertFile
	CAFile         *string
	VerifyPeer     bool
	VerifyPeerName bool
	ServerName     string
}

// return a tls config loading the given files. With VerifyPeerName off the chain is still
// verified, the server name is not.
func TLSConfig(files TLSFiles) (*tls.Config, error) {

	config := &tls.Config{
		ServerName: files.ServerName,
		MinVersion: tls.VersionTLS12,
	}

	if files.CertFile != nil {
		keyFile := lo.FromPtrOr(files.KeyFile, *files.CertFile)
		cert, err := tls.LoadX509KeyPair(*files.CertFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate %s: %w", *files.CertFile, err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	if files.CAFile != nil {
		data, err := os.ReadFile(*files.CAFile)
		if err != nil {
			return nil, fmt.Errorf("load ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(data) {
			return nil, fmt.Errorf("%w in %s", ErrNoCertificates, *files.CAFile)
		}
		config.RootCAs = pool
	}

	switch {
	case !files.VerifyPeer:
		config.InsecureSkipVerify = true
	case !files.VerifyPeerName:
		config.InsecureSkipVerify = true
		config.VerifyPeerCertificate = verifyChain(config.RootCAs)
	}
	return config, nil
}

// verify the certificate chain against roots (system pool if nil), ignoring the host name
func verifyChain(roots *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(raw [][]byte, _ [][]*x509.Certificate) error {
		if len(raw) == 0 {
			return ErrNoCertificates
		}
		certs := make([]*x509.Certificate, 0, len(raw))
		for _, data := range raw {
			cert, err := x509.ParseCertificate(data)
			if err != nil {
				return err
			}
			certs = append(certs, cert)
		}
		intermediates := x509.NewCertPool()
		for _, cert := range certs[1:] {
			intermediates.AddCert(cert)
		}
		_, err := certs[0].Verify(x509.VerifyOptions{Roots: roots, Intermediates: intermediates})
		return err
	}
}
