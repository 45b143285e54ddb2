// Package config loads initiator configuration from YAML files.
//
// A minimal configuration names the candidate peers:
//
//	peers:
//	  - host: trading-a.example.com
//	    port: 9440
//	  - host: trading-b.example.com
//	    port: 9440
//	reconnect_intervals: [1, 5, 30]
//	tls:
//	  enabled: true
//	  ca_file: /etc/tether/ca.pem
//
// Config.InitiatorConfig turns a validated file into an initiator.Config;
// the caller supplies the session and connection handler.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tetherlink/tether-go/pkg/initiator"
	"github.com/tetherlink/tether-go/pkg/transport"
)

// Validation errors.
var (
	// ErrNoPeers indicates an empty peer list.
	ErrNoPeers = errors.New("at least one peer is required")

	// ErrUnknownCipherSuite indicates an unrecognized cipher suite name.
	ErrUnknownCipherSuite = errors.New("unknown cipher suite")

	// ErrUnknownTLSVersion indicates an unrecognized TLS version string.
	ErrUnknownTLSVersion = errors.New("unknown TLS version")
)

// Duration wraps time.Duration with YAML unmarshalling from strings
// like "500ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Peer is one candidate endpoint.
type Peer struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TLSSettings configures transport encryption.
type TLSSettings struct {
	Enabled            bool     `yaml:"enabled"`
	CertFile           string   `yaml:"cert_file"`
	KeyFile            string   `yaml:"key_file"`
	CAFile             string   `yaml:"ca_file"`
	ServerName         string   `yaml:"server_name"`
	MinVersion         string   `yaml:"min_version"`
	MaxVersion         string   `yaml:"max_version"`
	CipherSuites       []string `yaml:"cipher_suites"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
}

// SocketSettings configures TCP socket options.
type SocketSettings struct {
	NoDelay         *bool    `yaml:"no_delay"`
	KeepAlivePeriod Duration `yaml:"keep_alive_period"`
	ReadBufferSize  int      `yaml:"read_buffer_size"`
	WriteBufferSize int      `yaml:"write_buffer_size"`
}

// Config is the on-disk initiator configuration.
type Config struct {
	// Peers is the ordered candidate list.
	Peers []Peer `yaml:"peers"`

	// LocalAddress optionally binds outbound connections.
	LocalAddress string `yaml:"local_address"`

	// ReconnectIntervals is the retry schedule in seconds.
	// Empty uses the default schedule.
	ReconnectIntervals []int `yaml:"reconnect_intervals"`

	// Period between supervisor ticks (default 1s).
	Period Duration `yaml:"period"`

	// PollTimeout bounds the per-tick wait on a pending connect (default 2s).
	PollTimeout Duration `yaml:"poll_timeout"`

	// ConnectTimeout bounds a single dial (default 30s).
	ConnectTimeout Duration `yaml:"connect_timeout"`

	// MaxMessageSize is the maximum framed message size in bytes.
	MaxMessageSize uint32 `yaml:"max_message_size"`

	// TLS configures transport encryption.
	TLS *TLSSettings `yaml:"tls"`

	// Socket configures TCP socket options.
	Socket *SocketSettings `yaml:"socket"`

	// EventLogFile optionally enables the CBOR event log.
	EventLogFile string `yaml:"event_log_file"`
}

// Load reads and parses a configuration file, then validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for static errors.
func (c *Config) Validate() error {
	if len(c.Peers) == 0 {
		return ErrNoPeers
	}
	for _, p := range c.Peers {
		if p.Host == "" {
			return fmt.Errorf("peer host must not be empty")
		}
		if p.Port <= 0 || p.Port > 65535 {
			return fmt.Errorf("peer %s: invalid port %d", p.Host, p.Port)
		}
	}
	if len(c.ReconnectIntervals) > 0 {
		if _, err := initiator.ScheduleFromSeconds(c.ReconnectIntervals); err != nil {
			return err
		}
	}
	if c.TLS != nil && c.TLS.Enabled {
		if _, err := c.TLS.transportConfig(); err != nil {
			return err
		}
	}
	return nil
}

// transportConfig translates TLS settings into a transport.TLSConfig.
func (t *TLSSettings) transportConfig() (*transport.TLSConfig, error) {
	cfg := &transport.TLSConfig{
		CertFile:           t.CertFile,
		KeyFile:            t.KeyFile,
		CAFile:             t.CAFile,
		ServerName:         t.ServerName,
		InsecureSkipVerify: t.InsecureSkipVerify,
	}

	var err error
	if cfg.MinVersion, err = tlsVersion(t.MinVersion); err != nil {
		return nil, err
	}
	if cfg.MaxVersion, err = tlsVersion(t.MaxVersion); err != nil {
		return nil, err
	}

	for _, name := range t.CipherSuites {
		id, ok := transport.CipherSuiteByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCipherSuite, name)
		}
		cfg.CipherSuites = append(cfg.CipherSuites, id)
	}
	return cfg, nil
}

// tlsVersion maps a version string to the crypto/tls constant.
// Empty means "platform default" and maps to zero.
func tlsVersion(s string) (uint16, error) {
	switch s {
	case "":
		return 0, nil
	case "1.2":
		return 0x0303, nil // tls.VersionTLS12
	case "1.3":
		return 0x0304, nil // tls.VersionTLS13
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownTLSVersion, s)
	}
}

// InitiatorConfig builds an initiator.Config from the file configuration.
// The session and handler collaborators come from the hosting application.
func (c *Config) InitiatorConfig(session initiator.Session, handler transport.Handler) (initiator.Config, error) {
	if err := c.Validate(); err != nil {
		return initiator.Config{}, err
	}

	addresses := make([]initiator.Candidate, len(c.Peers))
	for i, p := range c.Peers {
		addresses[i] = initiator.NewCandidate(p.Host, p.Port)
	}

	cfg := initiator.Config{
		Session:        session,
		Handler:        handler,
		Addresses:      addresses,
		LocalAddr:      c.LocalAddress,
		Period:         c.Period.Std(),
		PollTimeout:    c.PollTimeout.Std(),
		ConnectTimeout: c.ConnectTimeout.Std(),
		MaxMessageSize: c.MaxMessageSize,
	}

	if len(c.ReconnectIntervals) > 0 {
		schedule, err := initiator.ScheduleFromSeconds(c.ReconnectIntervals)
		if err != nil {
			return initiator.Config{}, err
		}
		cfg.Schedule = schedule
	}

	if c.TLS != nil && c.TLS.Enabled {
		tlsCfg, err := c.TLS.transportConfig()
		if err != nil {
			return initiator.Config{}, err
		}
		cfg.TLS = tlsCfg
	}

	if c.Socket != nil {
		cfg.Socket = transport.SocketOptions{
			NoDelay:         c.Socket.NoDelay,
			KeepAlivePeriod: c.Socket.KeepAlivePeriod.Std(),
			ReadBufferSize:  c.Socket.ReadBufferSize,
			WriteBufferSize: c.Socket.WriteBufferSize,
		}
	}

	return cfg, nil
}
