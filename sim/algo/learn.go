// Package algo holds the distributed algorithms shipped with the
// simulator. Each algorithm defines its own event and state types and
// registers them with the trace codec so persisted runs round-trip.
package algo

import (
	"github.com/distsim/distsim/sim"
	"github.com/distsim/distsim/sim/trace"
)

func init() {
	trace.RegisterEvent("learn.Start", Start{})
	trace.RegisterEvent("learn.Position", Position{})
	trace.RegisterEvent("learn.GraphIsKnown", GraphIsKnown{})
	trace.RegisterState("learn.State", LearnState{})
}

// Start kicks off topology learning at its target process.
type Start struct {
	sim.Signal
}

// Position floods one process's neighborhood through the network.
type Position struct {
	sim.Message
	Origin    sim.Pid        `json:"origin"`
	Neighbors sim.ProcessSet `json:"neighbors"`
}

// GraphIsKnown is raised locally once a process has learned the complete
// communication graph.
type GraphIsKnown struct {
	sim.Signal
}

// LearnState is the per-process state of the learning algorithm.
type LearnState struct {
	sim.StateBase
	Neighbors      sim.ProcessSet `json:"neighbors"`
	KnownProcesses sim.ProcessSet `json:"known_processes"`
	KnownChannels  sim.ChannelSet `json:"known_channels"`
	Participating  bool           `json:"participating"`
}

// Knows reports whether the state has learned the full graph: every known
// channel's endpoints are known processes.
func (s LearnState) Knows() bool {
	for _, c := range s.KnownChannels.Channels() {
		a, b := c.Endpoints()
		if !s.KnownProcesses.Contains(a) || !s.KnownProcesses.Contains(b) {
			return false
		}
	}
	return s.KnownChannels.Len() > 0
}

// LearnGraph is the classic flooding algorithm through which every
// process learns the complete network topology: each participant sends
// its own neighborhood to all neighbors and forwards every neighborhood
// it has not seen before.
type LearnGraph struct {
	system *sim.System
}

// NewLearnGraph binds the algorithm to a system.
func NewLearnGraph(system *sim.System) *LearnGraph {
	return &LearnGraph{system: system}
}

func (a *LearnGraph) Name() string { return "Learn the Topology" }

func (a *LearnGraph) Description() string {
	return "Flooding algorithm in which every process learns the full communication graph from its neighbors' neighborhoods."
}

func (a *LearnGraph) InitialState(pid sim.Pid) sim.State {
	return LearnState{
		StateBase: sim.StateBase{Owner: pid},
		Neighbors: a.system.NeighborsOf(pid),
	}
}

func (a *LearnGraph) OnEvent(old sim.State, ev sim.Event) (sim.State, []sim.Event, error) {
	state := old.(LearnState)

	switch e := ev.(type) {
	case Start:
		if state.Participating {
			return state, nil, nil
		}
		return a.participate(state)

	case Position:
		var events []sim.Event
		if !state.Participating {
			var err error
			state, events, err = a.participate(state)
			if err != nil {
				return old, nil, err
			}
		}
		if state.KnownProcesses.Contains(e.Origin) {
			return state, events, nil
		}

		learned := make([]sim.Channel, 0, e.Neighbors.Len())
		for _, neighbor := range e.Neighbors.Pids() {
			learned = append(learned, sim.NewChannel(e.Origin, neighbor))
		}
		state = LearnState{
			StateBase:      state.StateBase,
			Neighbors:      state.Neighbors,
			KnownProcesses: state.KnownProcesses.Add(e.Origin),
			KnownChannels:  state.KnownChannels.Union(sim.NewChannelSet(learned...)),
			Participating:  state.Participating,
		}

		// Forward the neighborhood to everyone except who it came from.
		for _, neighbor := range state.Neighbors.Pids() {
			if neighbor == e.Sender() {
				continue
			}
			events = append(events, Position{
				Message:   sim.Message{To: neighbor, From: state.Pid()},
				Origin:    e.Origin,
				Neighbors: e.Neighbors,
			})
		}
		if state.Knows() {
			events = append(events, GraphIsKnown{sim.Signal{To: state.Pid()}})
		}
		return state, events, nil

	case GraphIsKnown:
		return state, nil, nil

	default:
		return old, nil, sim.Unhandled(ev)
	}
}

// participate sends the process's own neighborhood to every neighbor and
// marks it as participating.
func (a *LearnGraph) participate(state LearnState) (LearnState, []sim.Event, error) {
	events := make([]sim.Event, 0, state.Neighbors.Len())
	for _, neighbor := range state.Neighbors.Pids() {
		events = append(events, Position{
			Message:   sim.Message{To: neighbor, From: state.Pid()},
			Origin:    state.Pid(),
			Neighbors: state.Neighbors,
		})
	}
	own := make([]sim.Channel, 0, state.Neighbors.Len())
	for _, neighbor := range state.Neighbors.Pids() {
		own = append(own, sim.NewChannel(state.Pid(), neighbor))
	}
	next := LearnState{
		StateBase:      state.StateBase,
		Neighbors:      state.Neighbors,
		KnownProcesses: sim.NewProcessSet(state.Pid()),
		KnownChannels:  sim.NewChannelSet(own...),
		Participating:  true,
	}
	return next, events, nil
}
