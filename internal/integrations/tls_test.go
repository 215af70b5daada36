package integrations

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCertificate creates a self signed certificate, returns the cert, key and combined pem files
func writeCertificate(t *testing.T) (string, string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "db.example.com"},
		DNSNames:              []string{"db.example.com"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	keyDer, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPem := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPem := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer})

	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	bothFile := filepath.Join(dir, "both.pem")
	require.NoError(t, os.WriteFile(certFile, certPem, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPem, 0o600))
	require.NoError(t, os.WriteFile(bothFile, append(certPem, keyPem...), 0o600))
	return certFile, keyFile, bothFile
}

func TestTLSConfig(t *testing.T) {

	certFile, keyFile, bothFile := writeCertificate(t)

	config, err := TLSConfig(TLSFiles{VerifyPeer: true, VerifyPeerName: true, ServerName: "db.example.com"})
	require.NoError(t, err)
	assert.False(t, config.InsecureSkipVerify)
	assert.Equal(t, "db.example.com", config.ServerName)
	assert.Nil(t, config.RootCAs)
	assert.Empty(t, config.Certificates)

	config, err = TLSConfig(TLSFiles{CertFile: &certFile, KeyFile: &keyFile, CAFile: &certFile, VerifyPeer: true, VerifyPeerName: true})
	require.NoError(t, err)
	assert.Len(t, config.Certificates, 1)
	assert.NotNil(t, config.RootCAs)

	// key in the certificate file
	config, err = TLSConfig(TLSFiles{CertFile: &bothFile, VerifyPeer: true, VerifyPeerName: true})
	require.NoError(t, err)
	assert.Len(t, config.Certificates, 1)

	config, err = TLSConfig(TLSFiles{VerifyPeer: false, VerifyPeerName: true})
	require.NoError(t, err)
	assert.True(t, config.InsecureSkipVerify)
	assert.Nil(t, config.VerifyPeerCertificate)
}

func TestTLSConfigVerifyChain(t *testing.T) {

	certFile, keyFile, _ := writeCertificate(t)
	otherFile, _, _ := writeCertificate(t)

	config, err := TLSConfig(TLSFiles{CAFile: &certFile, VerifyPeer: true, VerifyPeerName: false, ServerName: "10.0.0.1"})
	require.NoError(t, err)
	assert.True(t, config.InsecureSkipVerify)
	require.NotNil(t, config.VerifyPeerCertificate)

	// trusted chain passes whatever the name
	pair, err := TLSConfig(TLSFiles{CertFile: &certFile, KeyFile: &keyFile, VerifyPeer: true, VerifyPeerName: true})
	require.NoError(t, err)
	assert.NoError(t, config.VerifyPeerCertificate(pair.Certificates[0].Certificate, nil))

	// other ca fails
	config, err = TLSConfig(TLSFiles{CAFile: &otherFile, VerifyPeer: true, VerifyPeerName: false})
	require.NoError(t, err)
	assert.Error(t, config.VerifyPeerCertificate(pair.Certificates[0].Certificate, nil))
	assert.True(t, errors.Is(config.VerifyPeerCertificate(nil, nil), ErrNoCertificates))
}

func TestTLSConfigErrors(t *testing.T) {

	_, err := TLSConfig(TLSFiles{CAFile: lo.ToPtr("/does/not/exist.pem"), VerifyPeer: true})
	assert.ErrorContains(t, err, "load ca file")

	empty := filepath.Join(t.TempDir(), "empty.pem")
	require.NoError(t, os.WriteFile(empty, []byte("nothing"), 0o600))
	_, err = TLSConfig(TLSFiles{CAFile: &empty, VerifyPeer: true})
	assert.True(t, errors.Is(err, ErrNoCertificates))

	_, err = TLSConfig(TLSFiles{CertFile: &empty, VerifyPeer: true})
	assert.ErrorContains(t, err, "load client certificate")
}
