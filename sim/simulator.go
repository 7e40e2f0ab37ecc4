package sim

import (
	"container/heap"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// RunState is the lifecycle state of a Simulator.
type RunState int

const (
	// Created means the simulator is built but Start has not run.
	Created RunState = iota
	// Started means initial states are computed and seed events queued.
	Started
	// Running means RunToCompletion is draining the queue (or stopped at
	// a step limit with events still pending).
	Running
	// Completed means the queue drained and the run finished normally.
	Completed
	// Failed means an algorithm error aborted the run.
	Failed
)

func (s RunState) String() string {
	switch s {
	case Created:
		return "created"
	case Started:
		return "started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// scheduledEvent pairs an event with its delivery time and a tie-break
// sequence number assigned at scheduling time. (at, seq) is a strict total
// order: no two scheduled events are ever ambiguous in processing order.
type scheduledEvent struct {
	emittedAt time.Duration
	at        time.Duration
	seq       uint64
	event     Event
}

// eventQueue implements heap.Interface ordered by (delivery time, seq).
// See the canonical example at https://pkg.go.dev/container/heap
type eventQueue []*scheduledEvent

func (eq eventQueue) Len() int { return len(eq) }
func (eq eventQueue) Less(i, j int) bool {
	if eq[i].at != eq[j].at {
		return eq[i].at < eq[j].at
	}
	return eq[i].seq < eq[j].seq
}
func (eq eventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *eventQueue) Push(x any) {
	*eq = append(*eq, x.(*scheduledEvent))
}

func (eq *eventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*eq = old[0 : n-1]
	return item
}

// Simulator owns the mutable state of a run: the simulated clock, the
// current per-process states, and the pending-event queue. It is strictly
// single-threaded; the concurrency of the modeled system lives entirely in
// event timestamps and ordering, never in goroutines.
type Simulator struct {
	System    *System
	Algorithm Algorithm
	Settings  Settings

	clock    time.Duration
	runState RunState
	config   Configuration
	queue    eventQueue
	nextSeq  uint64
	rng      *PartitionedRNG
	trace    *Trace
}

// FromSystem builds a simulator for running algorithm on system.
func FromSystem(system *System, algorithm Algorithm, settings Settings) *Simulator {
	return &Simulator{
		System:    system,
		Algorithm: algorithm,
		Settings:  settings,
		runState:  Created,
		queue:     make(eventQueue, 0),
		rng:       NewPartitionedRNG(NewSimulationKey(settings.Seed)),
	}
}

// Now returns the current simulated time.
func (s *Simulator) Now() time.Duration { return s.clock }

// State returns the simulator's lifecycle state.
func (s *Simulator) State() RunState { return s.runState }

// Configuration returns the current per-process states.
func (s *Simulator) Configuration() Configuration { return s.config }

// Trace returns the trace of the run. It is owned by the simulator while
// the run is in progress and must only be shared once the run has
// completed or failed.
func (s *Simulator) Trace() *Trace { return s.trace }

// Start computes every process's initial state, invokes the algorithm's
// OnStart hook where implemented, and enqueues the resulting seed events
// at time zero. Valid only in the Created state.
func (s *Simulator) Start() error {
	if s.runState != Created {
		return schedulingErrorf("Start called in state %s, want %s", s.runState, Created)
	}

	pids := s.System.Processes().Pids()
	states := make([]State, len(pids))
	for i, pid := range pids {
		states[i] = s.Algorithm.InitialState(pid)
	}
	s.config = NewConfiguration(states...)
	s.trace = NewTrace(s.System, s.Algorithm)
	if s.Settings.EnableTrace {
		s.trace.AddHistory(s.clock, s.config)
	}

	if starter, ok := s.Algorithm.(Starter); ok {
		for _, pid := range pids {
			init, _ := s.config.StateOf(pid)
			replaced, events, err := starter.OnStart(init)
			if err != nil {
				s.runState = Failed
				return s.runError(err, pid, nil)
			}
			s.config = s.config.Updated(replaced)
			for _, ev := range events {
				s.push(s.clock, s.clock, ev)
			}
		}
	}

	s.runState = Started
	logrus.Debugf("simulator started: %d processes, %d seed events", len(pids), s.queue.Len())
	return nil
}

// Schedule enqueues an externally triggered event for delivery after the
// given delay. Valid once the simulator is started and until the run ends.
func (s *Simulator) Schedule(ev Event, delay time.Duration) error {
	if delay < 0 {
		return schedulingErrorf("negative delay %s", delay)
	}
	return s.ScheduleAt(s.clock+delay, ev)
}

// ScheduleAt enqueues an externally triggered event for delivery at the
// given simulated time, clamped to never precede the current clock.
func (s *Simulator) ScheduleAt(at time.Duration, ev Event) error {
	if s.runState != Started && s.runState != Running {
		return schedulingErrorf("Schedule called in state %s, want %s or %s", s.runState, Started, Running)
	}
	if at < s.clock {
		at = s.clock
	}
	s.push(s.clock, at, ev)
	return nil
}

func (s *Simulator) push(emittedAt, at time.Duration, ev Event) {
	se := &scheduledEvent{emittedAt: emittedAt, at: at, seq: s.nextSeq, event: ev}
	s.nextSeq++
	heap.Push(&s.queue, se)
	logrus.Debugf("[t=%s] scheduled %T for %s at t=%s (seq %d)", emittedAt, ev, ev.Target(), at, se.seq)
}

// RunToCompletion drains the pending-event queue, applying one event at a
// time in (delivery time, sequence) order. It returns when the queue is
// empty, when the configured step limit is reached (the run stays
// Running), or when the algorithm fails — in which case the trace retains
// everything processed up to that point.
func (s *Simulator) RunToCompletion() error {
	if s.runState != Started && s.runState != Running {
		return schedulingErrorf("RunToCompletion called in state %s, want %s or %s", s.runState, Started, Running)
	}
	s.runState = Running

	steps := 0
	for s.queue.Len() > 0 {
		if s.Settings.StepLimit > 0 && steps >= s.Settings.StepLimit {
			logrus.Infof("[t=%s] step limit %d reached with %d events pending", s.clock, s.Settings.StepLimit, s.queue.Len())
			return nil
		}
		se := heap.Pop(&s.queue).(*scheduledEvent)
		if se.at > s.clock {
			s.clock = se.at
		}
		logrus.Infof("[t=%s] delivering %T to %s", s.clock, se.event, se.event.Target())
		if err := s.applyEvent(se); err != nil {
			s.runState = Failed
			return err
		}
		steps++
	}

	s.runState = Completed
	logrus.Infof("[t=%s] run completed after %d events", s.clock, len(s.trace.EventsList))
	return nil
}

// applyEvent delivers one event: it invokes OnEvent on the target's
// current state, installs the replacement state, timestamps and enqueues
// every produced event via the synchrony model, and appends the step to
// the trace.
func (s *Simulator) applyEvent(se *scheduledEvent) error {
	pid := se.event.Target()
	old, ok := s.config.StateOf(pid)
	if !ok {
		return s.runError(errors.New("target not in the active process set"), pid, se.event)
	}

	next, produced, err := s.Algorithm.OnEvent(old, se.event)
	if err != nil {
		return s.runError(err, pid, se.event)
	}
	s.config = s.config.Updated(next)

	// Delays are drawn in queue-pop order from the simulator-owned
	// source, which is what makes stochastic replay deterministic.
	rng := s.rng.ForSubsystem(SubsystemSynchrony)
	for _, ev := range produced {
		sender, _ := SenderOf(ev)
		delay := s.System.Synchrony.DelayFor(sender, ev.Target(), s.clock, rng)
		s.push(s.clock, s.clock+delay, ev)
	}

	s.trace.AddEvent(se.emittedAt, s.clock, se.event)
	if s.Settings.EnableTrace {
		s.trace.AddHistory(s.clock, s.config)
	}
	return nil
}

// runError wraps an algorithm failure with the offending pid, event, and
// simulated time. The inner error code is preserved so callers can still
// classify the failure (e.g. with IsUnhandledEvent).
func (s *Simulator) runError(err error, pid Pid, ev Event) error {
	code := ErrCodeRunFailed
	msg := err.Error()
	var inner *SimError
	if errors.As(err, &inner) {
		code = inner.Code
		msg = inner.Message
	}
	return &SimError{Code: code, Message: msg, Pid: pid, Event: ev, Time: s.clock, Err: err}
}
