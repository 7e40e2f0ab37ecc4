package sim

// System binds a topology to a synchrony model. Algorithms query it for
// neighbor information; the simulator queries it for delivery timing.
// Systems are immutable once built.
type System struct {
	Topology  Topology
	Synchrony SynchronyModel
}

// NewSystem builds a system from a topology and a synchrony model.
func NewSystem(topology Topology, synchrony SynchronyModel) *System {
	return &System{Topology: topology, Synchrony: synchrony}
}

// Processes returns the process set of the system's topology.
func (s *System) Processes() ProcessSet {
	return s.Topology.Processes()
}

// NeighborsOf returns the neighbors of pid in the system's topology.
func (s *System) NeighborsOf(pid Pid) ProcessSet {
	return s.Topology.NeighborsOf(pid)
}
