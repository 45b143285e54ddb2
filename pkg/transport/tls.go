package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// SecurityConfigError indicates invalid TLS material or settings: a missing
// or unparsable key pair, an unreadable CA bundle, or an unknown cipher
// suite or protocol version. It is returned at construction time and is not
// retryable.
type SecurityConfigError struct {
	Err error
}

// Error returns the error text.
func (e *SecurityConfigError) Error() string {
	return "security configuration: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *SecurityConfigError) Unwrap() error {
	return e.Err
}

// securityConfigErrorf wraps a formatted error as a SecurityConfigError.
func securityConfigErrorf(format string, args ...any) error {
	return &SecurityConfigError{Err: fmt.Errorf(format, args...)}
}

// TLSConfig holds configuration for outbound TLS connections.
// Zero values fall back to platform defaults.
type TLSConfig struct {
	// CertFile and KeyFile are paths to the client certificate and key in
	// PEM format. Both or neither must be set.
	CertFile string
	KeyFile  string

	// CAFile is a path to a PEM bundle of trusted CA certificates for
	// verifying the server. When empty the system pool is used.
	CAFile string

	// ServerName is the expected server name for certificate verification
	// and SNI.
	ServerName string

	// CipherSuites restricts the enabled TLS 1.0-1.2 cipher suites.
	// When empty the platform's supported defaults are used.
	// TLS 1.3 suites are not configurable and always enabled.
	CipherSuites []uint16

	// MinVersion and MaxVersion bound the enabled protocol versions
	// (tls.VersionTLS12 etc.). When zero the platform defaults apply.
	MinVersion uint16
	MaxVersion uint16

	// InsecureSkipVerify disables certificate verification.
	// Only for testing - never use in production!
	InsecureSkipVerify bool
}

// NewClientTLSConfig creates a client-mode *tls.Config from cfg.
// All failures are *SecurityConfigError.
func NewClientTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, securityConfigErrorf("TLSConfig is required")
	}
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, securityConfigErrorf("cert file and key file must be set together")
	}

	tlsConfig := &tls.Config{
		ServerName:         cfg.ServerName,
		MinVersion:         cfg.MinVersion,
		MaxVersion:         cfg.MaxVersion,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, securityConfigErrorf("load key pair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, securityConfigErrorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, securityConfigErrorf("no certificates found in %s", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if len(cfg.CipherSuites) > 0 {
		suites, err := validateCipherSuites(cfg.CipherSuites)
		if err != nil {
			return nil, err
		}
		tlsConfig.CipherSuites = suites
	}

	if cfg.MinVersion != 0 && cfg.MaxVersion != 0 && cfg.MinVersion > cfg.MaxVersion {
		return nil, securityConfigErrorf("min version %x exceeds max version %x",
			cfg.MinVersion, cfg.MaxVersion)
	}

	return tlsConfig, nil
}

// validateCipherSuites checks that every requested suite ID is supported
// by the platform.
func validateCipherSuites(ids []uint16) ([]uint16, error) {
	supported := make(map[uint16]bool)
	for _, s := range tls.CipherSuites() {
		supported[s.ID] = true
	}
	for _, s := range tls.InsecureCipherSuites() {
		supported[s.ID] = true
	}

	for _, id := range ids {
		if !supported[id] {
			return nil, securityConfigErrorf("unsupported cipher suite 0x%04x", id)
		}
	}
	return ids, nil
}

// CipherSuiteByName returns the ID of the named cipher suite
// (e.g. "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256").
func CipherSuiteByName(name string) (uint16, bool) {
	for _, s := range tls.CipherSuites() {
		if s.Name == name {
			return s.ID, true
		}
	}
	for _, s := range tls.InsecureCipherSuites() {
		if s.Name == name {
			return s.ID, true
		}
	}
	return 0, false
}
