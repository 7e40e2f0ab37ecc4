package sim

// Algorithm is the contract a distributed algorithm implements to run on
// the simulator. All three operations are pure: they read the bound System
// and their arguments, allocate fresh values, and never mutate shared
// structure or perform I/O.
type Algorithm interface {
	// Name identifies the algorithm in traces and tooling.
	Name() string
	// Description is recorded alongside the name in persisted traces.
	Description() string

	// InitialState builds the state a process starts in. It may only
	// depend on pid and the system the algorithm is bound to.
	InitialState(pid Pid) State

	// OnEvent applies one event to a process state and returns the
	// replacement state plus the events to emit, in order. The target
	// field of each returned event determines its routing. An event kind
	// the algorithm does not recognize must be reported with Unhandled —
	// never silently swallowed, or the causal history would be incomplete.
	OnEvent(old State, ev Event) (State, []Event, error)
}

// Starter is implemented by algorithms that act at simulation start,
// before any externally scheduled event. OnStart may replace the initial
// state and emit seed events; the default for algorithms that do not
// implement it is to do neither.
type Starter interface {
	OnStart(init State) (State, []Event, error)
}
