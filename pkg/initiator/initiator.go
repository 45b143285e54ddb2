package initiator

import (
	"errors"
	"sync"
	"time"

	"github.com/tetherlink/tether-go/pkg/log"
	"github.com/tetherlink/tether-go/pkg/scheduler"
	"github.com/tetherlink/tether-go/pkg/transport"
)

// Configuration errors.
var (
	// ErrSessionRequired indicates a missing Session.
	ErrSessionRequired = errors.New("session is required")

	// ErrHandlerRequired indicates a missing Handler.
	ErrHandlerRequired = errors.New("handler is required")
)

// Config configures an Initiator. It is immutable after construction.
type Config struct {
	// Session is the logical session the connection serves (required).
	Session Session

	// Handler receives established connections (required).
	Handler transport.Handler

	// Addresses is the ordered candidate address list (required, non-empty).
	Addresses []Candidate

	// LocalAddr is an optional local bind address for outbound connects.
	LocalAddr string

	// Schedule is the retry-interval list (default: DefaultSchedule).
	Schedule Schedule

	// TLS enables transport encryption when non-nil. Invalid material
	// surfaces from New as *transport.SecurityConfigError.
	TLS *transport.TLSConfig

	// Socket holds TCP socket options for each connection.
	Socket transport.SocketOptions

	// ConnectTimeout bounds a single dial (default: 30s).
	ConnectTimeout time.Duration

	// MaxMessageSize is the maximum framed message size (default: 64KB).
	MaxMessageSize uint32

	// Scheduler drives the supervisor ticks (default: TickerScheduler).
	Scheduler scheduler.Scheduler

	// Logger receives connection events (default: NoopLogger).
	Logger log.Logger

	// Period is the supervisor tick interval (default: 1s).
	Period time.Duration

	// PollTimeout bounds the per-tick wait on a pending attempt
	// (default: 2s).
	PollTimeout time.Duration

	// Resolver overrides hostname resolution (default: system resolver).
	Resolver Resolver
}

// Initiator ties the Supervisor to the scheduler lifecycle: Start registers
// the periodic reconnect task, Stop cancels it and disposes the connector.
type Initiator struct {
	supervisor *Supervisor
	connector  *transport.Connector
	sched      scheduler.Scheduler
	period     time.Duration
	session    Session
	logger     log.Logger

	mu     sync.Mutex
	handle scheduler.Handle
}

// New creates an Initiator from cfg. Only static misconfiguration fails
// here (missing collaborators, empty address list, bad TLS material);
// runtime connect errors are absorbed by the supervisor.
func New(cfg Config) (*Initiator, error) {
	if cfg.Session == nil {
		return nil, ErrSessionRequired
	}
	if cfg.Handler == nil {
		return nil, ErrHandlerRequired
	}

	rotation, err := NewRotation(cfg.Addresses, cfg.Resolver)
	if err != nil {
		return nil, err
	}

	schedule := cfg.Schedule
	if schedule == nil {
		schedule = DefaultSchedule()
	} else if _, err := NewSchedule(schedule...); err != nil {
		return nil, err
	}

	connector, err := transport.NewConnector(transport.ConnectorConfig{
		TLS:            cfg.TLS,
		LocalAddr:      cfg.LocalAddr,
		ConnectTimeout: cfg.ConnectTimeout,
		MaxMessageSize: cfg.MaxMessageSize,
		Socket:         cfg.Socket,
	})
	if err != nil {
		return nil, err
	}

	sched := cfg.Scheduler
	if sched == nil {
		sched = scheduler.NewTickerScheduler()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	period := cfg.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	supervisor := newSupervisor(cfg.Session, cfg.Handler, rotation,
		schedule, logger, connector.Dial, cfg.PollTimeout)

	return &Initiator{
		supervisor: supervisor,
		connector:  connector,
		sched:      sched,
		period:     period,
		session:    cfg.Session,
		logger:     logger,
	}, nil
}

// Start activates the session and schedules the supervisor at the
// configured period, starting immediately. Idempotent: calling Start while
// running is a no-op.
func (i *Initiator) Start() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.handle != nil {
		return
	}

	// This only enables the session; the actual connect happens as a
	// side effect of the first scheduled tick.
	i.session.Activate()

	i.handle = i.sched.SchedulePeriodic(i.supervisor.Run, 0, i.period)

	i.logger.Log(log.Event{
		Timestamp:   time.Now(),
		Category:    log.CategoryState,
		StateChange: &log.StateChangeEvent{OldState: "STOPPED", NewState: "RUNNING"},
	})
}

// Stop cancels future supervisor ticks and disposes the connector so no
// connect attempts or socket resources remain outstanding. An active tick
// may still complete. Idempotent: calling Stop while stopped is a no-op.
func (i *Initiator) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.handle != nil {
		i.handle.Cancel()
		i.handle = nil

		i.logger.Log(log.Event{
			Timestamp:   time.Now(),
			Category:    log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "RUNNING", NewState: "STOPPED"},
		})
	}

	// Disposal is safe even with a connect mid-flight: the connector's
	// base context aborts it.
	i.connector.Dispose()
}

// Running reports whether the reconnect task is scheduled.
func (i *Initiator) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.handle != nil
}

// FailureCount returns the consecutive connect failure count.
func (i *Initiator) FailureCount() int {
	return i.supervisor.FailureCount()
}

// LastAttemptTime returns when the last connect attempt was issued.
func (i *Initiator) LastAttemptTime() time.Time {
	return i.supervisor.LastAttemptTime()
}

// LastConnectTime returns when the last successful connect completed.
func (i *Initiator) LastConnectTime() time.Time {
	return i.supervisor.LastConnectTime()
}
