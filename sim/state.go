package sim

// State is an immutable per-process snapshot. Algorithms define concrete
// state types as plain value structs embedding StateBase; updates are
// always copy-with-overrides on the value, never in-place mutation, so two
// State values never share mutable substructure.
type State interface {
	Pid() Pid
}

// StateBase carries the owning process id. Embed it in algorithm state
// types so their JSON form exposes the owner under "pid".
type StateBase struct {
	Owner Pid `json:"pid"`
}

func (s StateBase) Pid() Pid { return s.Owner }
