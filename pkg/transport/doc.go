// Package transport provides the outbound transport layer for tether.
//
// The transport layer handles:
//   - TCP dialing with an optional local bind address and socket options
//   - Optional TLS with client-mode handshake
//   - Length-prefixed message framing
//   - Connection lifetime (close-once semantics, liveness)
//
// # Stack
//
//	┌────────────────────────────────┐
//	│     Application Messages       │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│       TLS (optional)           │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// The Connector owns the dial pipeline. It is configured once at
// construction (TLS material, socket options, timeouts) and must not be
// reconfigured while a dial is in flight. Dispose cancels its base context,
// which aborts in-flight dials and prevents new ones.
//
// TLS configuration errors are static misconfiguration and surface as
// *SecurityConfigError from NewConnector, never from a dial.
package transport
