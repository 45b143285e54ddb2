package initiator

import (
	"context"
	"time"

	"github.com/tetherlink/tether-go/pkg/transport"
)

// dialFunc establishes a connection to an address. The connector provides
// the production implementation; tests substitute stubs.
type dialFunc func(ctx context.Context, address string) (*transport.Conn, error)

// attemptResult is the terminal outcome of a connect attempt.
type attemptResult struct {
	conn *transport.Conn
	err  error
}

// attempt is a single outstanding connect operation. The dial runs on its
// own goroutine and delivers its result on a buffered channel, so the
// supervisor can poll with a bounded wait instead of blocking a full tick.
type attempt struct {
	target  Candidate
	started time.Time
	ch      chan attemptResult
}

// newAttempt issues a dial against the target and returns immediately.
func newAttempt(target Candidate, started time.Time, dial dialFunc) *attempt {
	a := &attempt{
		target:  target,
		started: started,
		ch:      make(chan attemptResult, 1),
	}
	go func() {
		conn, err := dial(context.Background(), target.Addr())
		a.ch <- attemptResult{conn: conn, err: err}
	}()
	return a
}

// poll waits up to timeout for the attempt to reach a terminal state.
// The second return value is false while the attempt is still pending.
func (a *attempt) poll(timeout time.Duration) (attemptResult, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-a.ch:
		return res, true
	case <-timer.C:
		return attemptResult{}, false
	}
}
