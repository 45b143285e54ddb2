package initiator

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tetherlink/tether-go/pkg/log"
	"github.com/tetherlink/tether-go/pkg/transport"
)

// Supervisor defaults.
const (
	// DefaultPollTimeout bounds how long a single tick waits on a pending
	// connect attempt. Kept well below typical retry intervals so one slow
	// attempt cannot starve the periodic driver.
	DefaultPollTimeout = 2 * time.Second

	// DefaultPeriod is the interval between supervisor ticks.
	DefaultPeriod = 1 * time.Second
)

// Supervisor is the reconnect state machine. It owns at most one in-flight
// connect attempt and all retry state. Run is invoked periodically by the
// scheduler; every state transition happens under one mutex, so overlapping
// ticks never interleave.
type Supervisor struct {
	mu sync.Mutex

	session  Session
	handler  transport.Handler
	rotation *Rotation
	schedule Schedule
	logger   log.Logger
	dial     dialFunc

	pollTimeout time.Duration

	// Retry state, owned exclusively by this supervisor.
	pending         *attempt
	conn            *transport.Conn
	failureCount    int
	lastAttemptTime time.Time
	lastConnectTime time.Time

	// Clock indirection for tests.
	now func() time.Time
}

// newSupervisor wires a supervisor from already-validated parts.
func newSupervisor(session Session, handler transport.Handler, rotation *Rotation,
	schedule Schedule, logger log.Logger, dial dialFunc, pollTimeout time.Duration) *Supervisor {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Supervisor{
		session:     session,
		handler:     handler,
		rotation:    rotation,
		schedule:    schedule,
		logger:      logger,
		dial:        dial,
		pollTimeout: pollTimeout,
		now:         time.Now,
	}
}

// Run executes one supervisor tick: poll the pending attempt if there is
// one, otherwise issue a new attempt when the retry policy says it is time.
// Runtime connect errors never escape; they become events and retry state.
func (s *Supervisor) Run() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		if s.shouldReconnect() {
			s.connect()
		}
		return
	}
	s.pollPending()
}

// connect issues a new attempt against the next candidate, then polls once
// immediately. Connects frequently complete fast on local networks; the
// immediate poll avoids an extra full tick of latency.
func (s *Supervisor) connect() {
	s.lastAttemptTime = s.now()
	target := s.rotation.Next()

	s.logger.Log(log.Event{
		Timestamp:  s.lastAttemptTime,
		Category:   log.CategoryAttempt,
		RemoteAddr: target.Addr(),
		Message:    fmt.Sprintf("connecting to %s", target),
		Attempt:    &log.AttemptEvent{FailureCount: s.failureCount},
	})

	s.pending = newAttempt(target, s.lastAttemptTime, s.dial)
	s.pollPending()
}

// pollPending waits on the pending attempt for at most pollTimeout.
func (s *Supervisor) pollPending() {
	res, completed := s.pending.poll(s.pollTimeout)
	if !completed {
		// Still pending: informational only. No counter increment, no
		// address advance; the attempt is polled again next tick.
		elapsed := s.now().Sub(s.pending.started)
		s.logger.Log(log.Event{
			Timestamp:  s.now(),
			Category:   log.CategoryInfo,
			RemoteAddr: s.pending.target.Addr(),
			Message: fmt.Sprintf("pending connection not established after %d ms",
				elapsed.Milliseconds()),
			Attempt: &log.AttemptEvent{
				FailureCount: s.failureCount,
				Elapsed:      elapsed,
			},
		})
		return
	}

	if res.err != nil {
		s.handleConnectError(res.err)
		return
	}

	conn := res.conn
	s.pending = nil
	s.conn = conn
	s.failureCount = 0
	s.lastConnectTime = s.now()

	s.logger.Log(log.Event{
		Timestamp:    s.lastConnectTime,
		Category:     log.CategoryConnected,
		ConnectionID: conn.ID(),
		RemoteAddr:   conn.RemoteAddr().String(),
		LocalAddr:    conn.LocalAddr().String(),
	})

	// Ownership of the transport passes to the session layer here.
	s.handler.OnConnected(conn)
}

// handleConnectError absorbs a failed attempt: bump the failure count, force
// re-resolution of the attempted address, emit one diagnostic event, and
// return to idle so the next due tick retries.
func (s *Supervisor) handleConnectError(err error) {
	s.failureCount++
	target := s.pending.target
	s.pending = nil

	s.rotation.MarkUnresolved()
	nextDelay := s.schedule.Delay(s.failureCount)

	s.logger.Log(log.Event{
		Timestamp:  s.now(),
		Category:   log.CategoryError,
		RemoteAddr: target.Addr(),
		Message: fmt.Sprintf("connection to %s failed (next retry in %v)",
			target, nextDelay),
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Target:  target.Addr(),
			Network: isNetworkError(err),
		},
	})
}

// shouldReconnect reports whether an idle tick should issue a new attempt.
func (s *Supervisor) shouldReconnect() bool {
	if s.conn != nil && s.conn.Active() {
		return false
	}
	return s.timeForReconnect() &&
		s.session.Enabled() && s.session.InActivityWindow()
}

// timeForReconnect reports whether the retry delay for the current failure
// count has elapsed since the last attempt.
func (s *Supervisor) timeForReconnect() bool {
	return s.now().Sub(s.lastAttemptTime) >= s.schedule.Delay(s.failureCount)
}

// isNetworkError classifies the failure at the point it is observed:
// network I/O (refused, timeout, unreachable, resolution) versus any other
// cause.
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// FailureCount returns the consecutive connect failure count.
func (s *Supervisor) FailureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureCount
}

// LastAttemptTime returns when the last connect attempt was issued.
// Zero if no attempt has been made.
func (s *Supervisor) LastAttemptTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAttemptTime
}

// LastConnectTime returns when the last successful connect completed.
// Zero if no connect has succeeded.
func (s *Supervisor) LastConnectTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastConnectTime
}

// Connecting reports whether a connect attempt is currently in flight.
func (s *Supervisor) Connecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}
