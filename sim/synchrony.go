package sim

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultMinDelay is the smallest delivery delay the stock synchrony
// models assign to a message.
const DefaultMinDelay = time.Microsecond

// SynchronyModel is the policy that assigns a delivery delay to every
// event the algorithm emits. Implementations draw randomness exclusively
// from the *rand.Rand passed in, which the Simulator owns and seeds; the
// models themselves hold no random state, so identical seeds replay
// identical delays.
//
// Events without a sender (signals) are local to their target and are
// delivered with zero delay by all stock models.
type SynchronyModel interface {
	// Name identifies the model in persisted traces.
	Name() string
	// Params reports the model's parameters for persisted traces.
	Params() map[string]string
	// DelayFor returns the delivery delay for an event emitted at now.
	// sender is NoPid when the event is not a message.
	DelayFor(sender, receiver Pid, now time.Duration, rng *rand.Rand) time.Duration
}

// Synchronous delivers in lockstep rounds: every message emitted during a
// round arrives exactly at the start of the next round.
type Synchronous struct {
	round time.Duration
}

// NewSynchronous builds a lockstep model with the given round duration.
func NewSynchronous(round time.Duration) (*Synchronous, error) {
	if round <= 0 {
		return nil, constructionErrorf("round duration must be positive, got %s", round)
	}
	return &Synchronous{round: round}, nil
}

// Round returns the fixed round duration.
func (m *Synchronous) Round() time.Duration { return m.round }

func (m *Synchronous) Name() string { return "Synchronous" }

func (m *Synchronous) Params() map[string]string {
	return map[string]string{"round": m.round.String()}
}

func (m *Synchronous) DelayFor(sender, receiver Pid, now time.Duration, rng *rand.Rand) time.Duration {
	if sender == NoPid {
		return 0
	}
	// Distance to the next round boundary; an emission exactly on a
	// boundary belongs to the round that starts there.
	return m.round - now%m.round
}

// Asynchronous delivers after an unbounded-but-finite random delay. No
// delay bound is exposed.
type Asynchronous struct {
	base     time.Duration
	minDelay time.Duration
}

// NewAsynchronous builds an asynchronous model whose delays scale with
// base.
func NewAsynchronous(base time.Duration) (*Asynchronous, error) {
	if base <= 0 {
		return nil, constructionErrorf("base delay must be positive, got %s", base)
	}
	return &Asynchronous{base: base, minDelay: DefaultMinDelay}, nil
}

func (m *Asynchronous) Name() string { return "Asynchronous" }

func (m *Asynchronous) Params() map[string]string {
	return map[string]string{"base": m.base.String()}
}

func (m *Asynchronous) DelayFor(sender, receiver Pid, now time.Duration, rng *rand.Rand) time.Duration {
	if sender == NoPid {
		return 0
	}
	scale := rng.ExpFloat64()/2 + rng.Float64()
	return m.minDelay + time.Duration(scale*float64(m.base))
}

// PartiallySynchronous delivers within a known bound: every delay falls in
// [0, bound].
type PartiallySynchronous struct {
	bound time.Duration
}

// NewPartiallySynchronous builds a bounded-delay model.
func NewPartiallySynchronous(bound time.Duration) (*PartiallySynchronous, error) {
	if bound <= 0 {
		return nil, constructionErrorf("delay bound must be positive, got %s", bound)
	}
	return &PartiallySynchronous{bound: bound}, nil
}

// Bound returns the inclusive upper bound on delivery delay.
func (m *PartiallySynchronous) Bound() time.Duration { return m.bound }

func (m *PartiallySynchronous) Name() string { return "PartiallySynchronous" }

func (m *PartiallySynchronous) Params() map[string]string {
	return map[string]string{"bound": m.bound.String()}
}

func (m *PartiallySynchronous) DelayFor(sender, receiver Pid, now time.Duration, rng *rand.Rand) time.Duration {
	if sender == NoPid {
		return 0
	}
	return time.Duration(rng.Int63n(int64(m.bound) + 1))
}

// StochasticExponential draws delays from an exponential distribution
// with the given rate (events per second).
type StochasticExponential struct {
	rate     float64
	minDelay time.Duration
}

// NewStochasticExponential builds an exponential-delay model.
func NewStochasticExponential(rate float64) (*StochasticExponential, error) {
	if rate <= 0 {
		return nil, constructionErrorf("rate must be positive, got %g", rate)
	}
	return &StochasticExponential{rate: rate, minDelay: DefaultMinDelay}, nil
}

// Rate returns the distribution's rate parameter.
func (m *StochasticExponential) Rate() float64 { return m.rate }

func (m *StochasticExponential) Name() string { return "StochasticExponential" }

func (m *StochasticExponential) Params() map[string]string {
	return map[string]string{"rate": fmt.Sprintf("%g", m.rate)}
}

func (m *StochasticExponential) DelayFor(sender, receiver Pid, now time.Duration, rng *rand.Rand) time.Duration {
	if sender == NoPid {
		return 0
	}
	return m.minDelay + time.Duration(rng.ExpFloat64()/m.rate*float64(time.Second))
}
