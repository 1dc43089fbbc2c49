// Package circuit stops calls to a failing dependency for a cooldown period.
package circuit

import (
	"sync"
	"time"
)

type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets a single probe through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Breaker opens after FailureThreshold consecutive failures. Once the
// cooldown has passed, one probe call is allowed; its outcome closes the
// circuit or restarts the cooldown.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	openedAt         time.Time
	probing          bool
	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time
}

type Option func(*Breaker)

// WithFailureThreshold defaults to 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithCooldown defaults to 30s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. Every allowed call must be
// followed by RecordSuccess or RecordFailure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = StateHalfOpen
		b.probing = true
		return true
	default:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
}

// RecordFailure returns true when this failure opened the circuit.
func (b *Breaker) RecordFailure() (opened bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.trip()
		return false
	case StateOpen:
		return false
	}
	b.failures++
	if b.failures >= b.failureThreshold {
		b.trip()
		return true
	}
	return false
}

// RecordSuccess returns true when this success closed the circuit.
func (b *Breaker) RecordSuccess() (closed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	recovered := b.state != StateClosed
	b.state = StateClosed
	b.failures = 0
	b.probing = false
	return recovered
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.probing = false
	b.failures = 0
}
