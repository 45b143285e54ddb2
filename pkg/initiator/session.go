package initiator

// Session is the logical session the connection serves. The supervisor
// consults it before issuing a connect attempt and signals it on Start.
// Implementations must be safe for concurrent use.
type Session interface {
	// Enabled reports whether the session wants a connection at all.
	Enabled() bool

	// InActivityWindow reports whether the session is inside its permitted
	// activity window. Sessions without schedule restrictions return true.
	InActivityWindow() bool

	// Activate is called once per Start and marks the session as permitted
	// to become active. It must not connect; the next supervisor tick does.
	Activate()
}

// AlwaysOnSession is a Session that is always enabled with no activity
// window restrictions. Useful for endpoints that should stay connected
// around the clock.
type AlwaysOnSession struct{}

// Enabled always returns true.
func (AlwaysOnSession) Enabled() bool { return true }

// InActivityWindow always returns true.
func (AlwaysOnSession) InActivityWindow() bool { return true }

// Activate does nothing.
func (AlwaysOnSession) Activate() {}

// Compile-time interface satisfaction check.
var _ Session = AlwaysOnSession{}
