// Package log provides structured event logging for connection supervision.
//
// Events capture the lifecycle of outbound connection attempts: issuance,
// pending polls, establishment, failures, and supervisor state changes.
// Applications receive events through the Logger interface and can route
// them to slog (SlogAdapter), to a CBOR-encoded file (FileLogger), or to
// several sinks at once (MultiLogger).
//
// The CBOR encoding uses integer map keys for compactness, so log files
// stay small even at one event per reconnect tick. Reader streams events
// back out of a log file with optional filtering.
package log
