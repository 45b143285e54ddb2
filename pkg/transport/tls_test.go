package transport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestCert generates a self-signed certificate for 127.0.0.1 and
// writes cert and key PEM files into a test temp dir.
func writeTestCert(t *testing.T) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "tether-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	require.NoError(t, os.WriteFile(certFile, certPEM, 0600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0600))
	return certFile, keyFile
}

func TestNewClientTLSConfigNilConfig(t *testing.T) {
	_, err := NewClientTLSConfig(nil)
	var secErr *SecurityConfigError
	require.ErrorAs(t, err, &secErr)
}

func TestNewClientTLSConfigCertWithoutKey(t *testing.T) {
	_, err := NewClientTLSConfig(&TLSConfig{CertFile: "client.pem"})
	var secErr *SecurityConfigError
	require.ErrorAs(t, err, &secErr)
}

func TestNewClientTLSConfigMissingFiles(t *testing.T) {
	_, err := NewClientTLSConfig(&TLSConfig{
		CertFile: "/nonexistent/client.pem",
		KeyFile:  "/nonexistent/client.key",
	})
	var secErr *SecurityConfigError
	require.ErrorAs(t, err, &secErr)
	assert.Contains(t, secErr.Error(), "security configuration")
}

func TestNewClientTLSConfigBadCABundle(t *testing.T) {
	dir := t.TempDir()
	caFile := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(caFile, []byte("not a certificate"), 0600))

	_, err := NewClientTLSConfig(&TLSConfig{CAFile: caFile})
	var secErr *SecurityConfigError
	require.ErrorAs(t, err, &secErr)
}

func TestNewClientTLSConfigUnsupportedCipherSuite(t *testing.T) {
	_, err := NewClientTLSConfig(&TLSConfig{CipherSuites: []uint16{0xFFFF}})
	var secErr *SecurityConfigError
	require.ErrorAs(t, err, &secErr)
}

func TestNewClientTLSConfigVersionBounds(t *testing.T) {
	_, err := NewClientTLSConfig(&TLSConfig{
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS12,
	})
	var secErr *SecurityConfigError
	require.ErrorAs(t, err, &secErr)
}

func TestNewClientTLSConfigDefaults(t *testing.T) {
	cfg, err := NewClientTLSConfig(&TLSConfig{ServerName: "peer.example"})
	require.NoError(t, err)

	// Unset suites and versions mean platform defaults.
	assert.Nil(t, cfg.CipherSuites)
	assert.Zero(t, cfg.MinVersion)
	assert.Zero(t, cfg.MaxVersion)
	assert.Equal(t, "peer.example", cfg.ServerName)
	assert.Empty(t, cfg.Certificates)
}

func TestNewClientTLSConfigFullMaterial(t *testing.T) {
	certFile, keyFile := writeTestCert(t)

	id, ok := CipherSuiteByName("TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256")
	require.True(t, ok)

	cfg, err := NewClientTLSConfig(&TLSConfig{
		CertFile:     certFile,
		KeyFile:      keyFile,
		CAFile:       certFile, // self-signed: cert is its own CA
		ServerName:   "localhost",
		MinVersion:   tls.VersionTLS12,
		CipherSuites: []uint16{id},
	})
	require.NoError(t, err)

	assert.Len(t, cfg.Certificates, 1)
	assert.NotNil(t, cfg.RootCAs)
	assert.Equal(t, []uint16{id}, cfg.CipherSuites)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

func TestCipherSuiteByName(t *testing.T) {
	id, ok := CipherSuiteByName("TLS_AES_128_GCM_SHA256")
	assert.True(t, ok)
	assert.Equal(t, uint16(tls.TLS_AES_128_GCM_SHA256), id)

	_, ok = CipherSuiteByName("TLS_NOT_A_SUITE")
	assert.False(t, ok)
}
