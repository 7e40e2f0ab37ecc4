package sim

// Topology is a static communication graph over a fixed set of processes.
// Topologies are built once, before the simulation, and never mutated.
type Topology interface {
	// Processes returns the full process set of the graph.
	Processes() ProcessSet
	// Channels returns all undirected edges of the graph.
	Channels() ChannelSet
	// NeighborsOf returns the neighbors of pid, or the empty set when pid
	// is not part of the graph. Lookup cost is O(degree).
	NeighborsOf(pid Pid) ProcessSet
}

// graph holds the adjacency structure shared by all topology kinds.
type graph struct {
	processes ProcessSet
	channels  ChannelSet
	adjacency map[Pid]ProcessSet
}

func buildGraph(processes ProcessSet, channels ChannelSet) graph {
	adjacency := make(map[Pid]ProcessSet, processes.Len())
	neighbors := make(map[Pid][]Pid, processes.Len())
	for _, c := range channels.Channels() {
		a, b := c.Endpoints()
		neighbors[a] = append(neighbors[a], b)
		neighbors[b] = append(neighbors[b], a)
	}
	for _, pid := range processes.Pids() {
		adjacency[pid] = NewProcessSet(neighbors[pid]...)
	}
	return graph{processes: processes, channels: channels, adjacency: adjacency}
}

func (g *graph) Processes() ProcessSet { return g.processes }
func (g *graph) Channels() ChannelSet  { return g.channels }

func (g *graph) NeighborsOf(pid Pid) ProcessSet {
	return g.adjacency[pid]
}

// sequentialPids returns p1..pn.
func sequentialPids(n int) []Pid {
	pids := make([]Pid, n)
	for i := range pids {
		pids[i] = Pid(i + 1)
	}
	return pids
}

// CompleteGraph connects every pair of processes.
type CompleteGraph struct {
	graph
}

// CompleteGraphOfSize builds a complete graph over p1..pn.
func CompleteGraphOfSize(n int) (*CompleteGraph, error) {
	if n <= 0 {
		return nil, constructionErrorf("complete graph size must be positive, got %d", n)
	}
	pids := sequentialPids(n)
	var channels []Channel
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			channels = append(channels, NewChannel(pids[i], pids[j]))
		}
	}
	return &CompleteGraph{buildGraph(NewProcessSet(pids...), NewChannelSet(channels...))}, nil
}

// Ring connects each process to its predecessor and successor mod n.
type Ring struct {
	graph
}

// RingOfSize builds a ring over p1..pn.
func RingOfSize(n int) (*Ring, error) {
	if n <= 0 {
		return nil, constructionErrorf("ring size must be positive, got %d", n)
	}
	pids := sequentialPids(n)
	var channels []Channel
	for i := 0; i < n; i++ {
		next := pids[(i+1)%n]
		if pids[i] != next {
			channels = append(channels, NewChannel(pids[i], next))
		}
	}
	return &Ring{buildGraph(NewProcessSet(pids...), NewChannelSet(channels...))}, nil
}

// Star connects one center process to every leaf; leaves have no other
// neighbors.
type Star struct {
	graph
	center Pid
}

// Center returns the hub process of the star.
func (s *Star) Center() Pid { return s.center }

// StarOfSize builds a star over p1..pn with p1 as the center.
func StarOfSize(n int) (*Star, error) {
	if n <= 1 {
		return nil, constructionErrorf("star size must be greater than 1, got %d", n)
	}
	pids := sequentialPids(n)
	center := pids[0]
	channels := make([]Channel, 0, n-1)
	for _, leaf := range pids[1:] {
		channels = append(channels, NewChannel(center, leaf))
	}
	return &Star{
		graph:  buildGraph(NewProcessSet(pids...), NewChannelSet(channels...)),
		center: center,
	}, nil
}

// Arbitrary is a topology built from an explicit process set and edge set.
type Arbitrary struct {
	graph
}

// NewArbitrary builds a topology from the declared processes and channels.
// Every channel endpoint must be a declared process; a dangling reference
// fails construction.
func NewArbitrary(processes ProcessSet, channels ChannelSet) (*Arbitrary, error) {
	for _, c := range channels.Channels() {
		a, b := c.Endpoints()
		if !processes.Contains(a) {
			return nil, constructionErrorf("channel %s references %s outside the process set", c, a)
		}
		if !processes.Contains(b) {
			return nil, constructionErrorf("channel %s references %s outside the process set", c, b)
		}
	}
	return &Arbitrary{buildGraph(processes, channels)}, nil
}
