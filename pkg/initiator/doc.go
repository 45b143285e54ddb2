// Package initiator maintains a long-lived outbound connection to one of
// several candidate peer addresses.
//
// This package handles:
//   - Reconnect scheduling from an ordered list of retry intervals
//   - Round-robin address failover with DNS re-resolution after failure
//   - A single in-flight connect attempt, polled with a bounded wait
//   - Start/stop lifecycle driven by a periodic task scheduler
//
// # Reconnection Strategy
//
// The supervisor is driven by short periodic ticks (1s by default). Each
// tick either polls the pending connect attempt or, when the retry interval
// for the current consecutive-failure count has elapsed and the logical
// session is enabled and inside its activity window, issues a new attempt
// against the next candidate address.
//
// Retry delays come from the configured Schedule: failure #1 waits the
// first entry, failure #2 the second, and so on, sticking at the last entry
// once the schedule is exhausted. A successful connect resets the count.
//
// # Address Failover
//
// Candidates are tried in strict round-robin order. After any failure the
// attempted address is marked unresolved so the next visit performs a fresh
// DNS lookup, picking up peers whose IP changed between attempts.
//
// # Handoff
//
// On success the established transport is handed to the configured Handler
// and never touched again by the supervisor, except to observe liveness.
// Runtime connect errors are absorbed into events and retry state; only
// construction-time configuration errors surface to the caller.
package initiator
