package sim

import (
	"time"

	"github.com/google/uuid"
)

// TimedEvent records one processed event together with its transmission
// interval: Start is the simulated time the event was emitted, End the
// time it was delivered to its target. Events are applied at End.
type TimedEvent struct {
	Start time.Duration
	End   time.Duration
	Event Event
}

// IsMessage reports whether the recorded event is an inter-process event.
func (te TimedEvent) IsMessage() bool {
	return IsMessage(te.Event)
}

// Sender returns the initiating process: the sender for messages and the
// target itself for signals.
func (te TimedEvent) Sender() Pid {
	if sender, ok := SenderOf(te.Event); ok {
		return sender
	}
	return te.Event.Target()
}

// Receiver returns the process the event was delivered to.
func (te TimedEvent) Receiver() Pid {
	return te.Event.Target()
}

// TimedConfiguration is a configuration snapshot taken at a point in
// simulated time.
type TimedConfiguration struct {
	Time          time.Duration
	Configuration Configuration
}

// Trace is the complete causal history of a run: the processed events in
// processing order with their transmission intervals, and the sequence of
// configurations observed. It is append-only while the simulator owns it
// and strictly read-only afterwards, which makes a finished trace safe for
// any number of concurrent readers.
type Trace struct {
	RunID                string
	AlgorithmName        string
	AlgorithmDescription string
	SynchronyName        string
	SynchronyParams      map[string]string

	// Topology snapshot, sufficient for external consumers that never
	// import the algorithm's code.
	Processes ProcessSet
	Channels  ChannelSet

	EventsList []TimedEvent
	History    []TimedConfiguration
}

// NewTrace builds an empty trace for a run of algorithm on system.
func NewTrace(system *System, algorithm Algorithm) *Trace {
	return &Trace{
		RunID:                uuid.NewString(),
		AlgorithmName:        algorithm.Name(),
		AlgorithmDescription: algorithm.Description(),
		SynchronyName:        system.Synchrony.Name(),
		SynchronyParams:      system.Synchrony.Params(),
		Processes:            system.Topology.Processes(),
		Channels:             system.Topology.Channels(),
	}
}

// AddEvent appends a processed event with its transmission interval.
func (t *Trace) AddEvent(start, end time.Duration, ev Event) {
	t.EventsList = append(t.EventsList, TimedEvent{Start: start, End: end, Event: ev})
}

// AddHistory appends a configuration snapshot observed at time.
func (t *Trace) AddHistory(at time.Duration, config Configuration) {
	t.History = append(t.History, TimedConfiguration{Time: at, Configuration: config})
}
