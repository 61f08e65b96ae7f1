package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed is the initial state where calls are let through.
	Closed State = iota
	// Open means the circuit has tripped and calls are rejected without running.
	Open
	// HalfOpen lets trial calls through to probe whether the dependency recovered.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker is the interface for the circuit breaker pattern.
type CircuitBreaker interface {
	// Execute runs fn unless the circuit is open.
	Execute(fn func() (any, error)) (any, error)
	// State returns the current state of the circuit breaker.
	State() State
}

// Settings configures a breaker.
type Settings struct {
	// FailureThreshold is the number of consecutive failures that trips the circuit.
	FailureThreshold uint32
	// SuccessThreshold is the number of consecutive HalfOpen successes that closes it again.
	SuccessThreshold uint32
	// Timeout is how long the circuit stays Open before allowing a trial call.
	Timeout time.Duration
	// OnStateChange, if set, is called after every transition (outside the lock).
	OnStateChange func(from, to State)
}

type breaker struct {
	settings Settings

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
	now       func() time.Time
}

// New creates a breaker with the given thresholds.
func New(failureThreshold, successThreshold uint32, timeout time.Duration) CircuitBreaker {
	return NewWithSettings(Settings{
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		Timeout:          timeout,
	})
}

// NewWithSettings creates a breaker from Settings. Zero thresholds are treated as 1.
func NewWithSettings(s Settings) CircuitBreaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 1
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = 1
	}
	return &breaker{settings: s, state: Closed, now: time.Now}
}

// State returns the current state, promoting Open to HalfOpen once the timeout elapsed.
func (b *breaker) State() State {
	b.mu.Lock()
	from, to := b.advance()
	state := b.state
	b.mu.Unlock()
	b.notify(from, to)
	return state
}

// Execute wraps fn with the breaker logic.
func (b *breaker) Execute(fn func() (any, error)) (any, error) {
	b.mu.Lock()
	from, to := b.advance()
	if b.state == Open {
		b.mu.Unlock()
		b.notify(from, to)
		return nil, ErrCircuitOpen
	}
	b.mu.Unlock()
	b.notify(from, to)

	res, err := fn()
	if err != nil {
		b.record(false)
		return nil, err
	}
	b.record(true)
	return res, nil
}

// advance moves Open to HalfOpen after the timeout. Caller holds the lock.
func (b *breaker) advance() (State, State) {
	if b.state == Open && b.now().Sub(b.openedAt) > b.settings.Timeout {
		b.state = HalfOpen
		b.successes = 0
		return Open, HalfOpen
	}
	return b.state, b.state
}

func (b *breaker) record(ok bool) {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case HalfOpen:
		if !ok {
			b.trip()
			break
		}
		b.successes++
		if b.successes >= b.settings.SuccessThreshold {
			b.reset()
		}
	case Closed:
		if ok {
			b.failures = 0
			break
		}
		b.failures++
		if b.failures >= b.settings.FailureThreshold {
			b.trip()
		}
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

func (b *breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
}

func (b *breaker) reset() {
	b.state = Closed
	b.failures = 0
	b.successes = 0
}

func (b *breaker) notify(from, to State) {
	if from != to && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(from, to)
	}
}
