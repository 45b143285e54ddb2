package initiator

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
)

// Rotation errors.
var (
	// ErrNoCandidates indicates an empty candidate list.
	ErrNoCandidates = errors.New("no candidate addresses")

	// ErrNoAddresses indicates a hostname lookup returned no addresses.
	ErrNoAddresses = errors.New("hostname resolved to no addresses")
)

// Candidate is one configured peer endpoint. A nil IP means the address is
// unresolved: the next Rotation.Next visit performs a fresh lookup, and the
// dial falls back to resolving the hostname itself if that lookup fails.
type Candidate struct {
	Host string
	Port int
	IP   net.IP
}

// NewCandidate creates a candidate for the given host and port.
// IP literals start out resolved; hostnames start out unresolved.
func NewCandidate(host string, port int) Candidate {
	c := Candidate{Host: host, Port: port}
	if ip := net.ParseIP(host); ip != nil {
		c.IP = ip
	}
	return c
}

// ParseCandidate parses a "host:port" string into a Candidate.
func ParseCandidate(s string) (Candidate, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Candidate{}, fmt.Errorf("invalid candidate address %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Candidate{}, fmt.Errorf("invalid port in candidate address %q", s)
	}
	return NewCandidate(host, port), nil
}

// Resolved reports whether the candidate carries a resolved IP.
func (c Candidate) Resolved() bool {
	return c.IP != nil
}

// Addr returns the dial address: "ip:port" when resolved, otherwise
// "host:port" so the dialer performs its own resolution.
func (c Candidate) Addr() string {
	port := strconv.Itoa(c.Port)
	if c.IP != nil {
		return net.JoinHostPort(c.IP.String(), port)
	}
	return net.JoinHostPort(c.Host, port)
}

// String returns the candidate in host:port form, with the resolved IP
// when one is cached.
func (c Candidate) String() string {
	if c.IP != nil && c.Host != c.IP.String() {
		return fmt.Sprintf("%s(%s):%d", c.Host, c.IP, c.Port)
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Resolver resolves a hostname to an IP address.
type Resolver func(host string) (net.IP, error)

// defaultResolver looks the host up via the system resolver and returns
// the first address.
func defaultResolver(host string) (net.IP, error) {
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, ErrNoAddresses
	}
	return ips[0], nil
}

// Rotation holds the ordered candidate address list and tracks which entry
// is next to try. The list order is fixed at construction; only the
// per-entry resolution state mutates.
type Rotation struct {
	mu         sync.Mutex
	candidates []Candidate
	next       int
	resolve    Resolver
}

// NewRotation creates a rotation over the given candidates.
// A nil resolver uses the system resolver.
func NewRotation(candidates []Candidate, resolve Resolver) (*Rotation, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if resolve == nil {
		resolve = defaultResolver
	}
	list := make([]Candidate, len(candidates))
	copy(list, candidates)
	return &Rotation{
		candidates: list,
		resolve:    resolve,
	}, nil
}

// Next returns the current candidate and advances the rotation circularly.
// An unresolved candidate is re-resolved first and the fresh result stored
// back into the list; lookup failures leave it unresolved, letting the dial
// report the resolution error through the normal failure path.
func (r *Rotation) Next() Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidate := r.candidates[r.next]
	if !candidate.Resolved() {
		if ip, err := r.resolve(candidate.Host); err == nil {
			candidate.IP = ip
			r.candidates[r.next] = candidate
		}
	}

	r.next = (r.next + 1) % len(r.candidates)
	return candidate
}

// MarkUnresolved flips the most recently returned candidate back to the
// unresolved state so a future retry does not reuse a stale cached
// resolution. Call after a connect failure against that candidate.
func (r *Rotation) MarkUnresolved() {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := (r.next + len(r.candidates) - 1) % len(r.candidates)
	r.candidates[current].IP = nil
}

// Len returns the number of candidates.
func (r *Rotation) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.candidates)
}
