// Package circuitbreaker guards outbound calls with github.com/sony/gobreaker.
package circuitbreaker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned by Run while calls are being short-circuited.
var ErrOpen = errors.New("circuit open")

// Settings configures a Breaker.
type Settings struct {
	Name string
	// TripAfter is the number of consecutive failures that opens the circuit.
	TripAfter uint32
	// Cooldown is how long the circuit stays open before one probe is let through.
	Cooldown time.Duration
	// Probes is how many calls are allowed while half-open.
	Probes uint32
	// OnStateChange runs after the transition is logged.
	OnStateChange func(name string, from, to gobreaker.State)
}

// ForWebhook is the setting used per chat channel. A lead notification is
// not worth hammering a failing webhook for, so five failed deliveries in a
// row open the circuit for five minutes.
func ForWebhook(channel string) Settings {
	return Settings{
		Name:      channel + "-webhook",
		TripAfter: 5,
		Cooldown:  5 * time.Minute,
		Probes:    1,
	}
}

// Breaker is a named circuit breaker for calls that return only an error.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New builds a Breaker. Zero TripAfter and Probes default to 1.
func New(s Settings) *Breaker {
	trip := max(s.TripAfter, 1)
	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: max(s.Probes, 1),
		Timeout:     s.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			if s.OnStateChange != nil {
				s.OnStateChange(name, from, to)
			}
		},
	})}
}

// Run calls fn unless the circuit is open. A short-circuited call returns an
// error wrapping ErrOpen and the breaker name.
func (b *Breaker) Run(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrOpen, b.cb.Name())
	}
	return err
}

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.cb.Name() }

// State returns the gobreaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// Open reports whether calls are currently rejected.
func (b *Breaker) Open() bool { return b.cb.State() == gobreaker.StateOpen }
