package sim

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Configuration is a snapshot of every process's State at a point in
// simulated time. It always holds exactly one entry per process of the
// system it belongs to. Updates copy the underlying map.
type Configuration struct {
	states map[Pid]State
}

// NewConfiguration builds a configuration from the given states.
func NewConfiguration(states ...State) Configuration {
	m := make(map[Pid]State, len(states))
	for _, st := range states {
		m[st.Pid()] = st
	}
	return Configuration{states: m}
}

// Updated returns a new configuration with the given states replacing the
// previous ones for their pids. The receiver is left untouched.
func (c Configuration) Updated(states ...State) Configuration {
	m := make(map[Pid]State, len(c.states))
	for pid, st := range c.states {
		m[pid] = st
	}
	for _, st := range states {
		m[st.Pid()] = st
	}
	return Configuration{states: m}
}

// StateOf returns the state of pid and whether pid is present.
func (c Configuration) StateOf(pid Pid) (State, bool) {
	st, ok := c.states[pid]
	return st, ok
}

// Contains reports whether pid has a state in the configuration.
func (c Configuration) Contains(pid Pid) bool {
	_, ok := c.states[pid]
	return ok
}

// Len returns the number of processes in the configuration.
func (c Configuration) Len() int {
	return len(c.states)
}

// Processes returns the pids of the configuration in ascending order.
func (c Configuration) Processes() []Pid {
	pids := make([]Pid, 0, len(c.states))
	for pid := range c.states {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

// States returns all states ordered by pid.
func (c Configuration) States() []State {
	pids := c.Processes()
	states := make([]State, len(pids))
	for i, pid := range pids {
		states[i] = c.states[pid]
	}
	return states
}

// ChangedFrom returns the pids whose state differs from prev, in ascending
// order. States are compared structurally.
func (c Configuration) ChangedFrom(prev Configuration) []Pid {
	var changed []Pid
	for _, pid := range c.Processes() {
		old, ok := prev.StateOf(pid)
		if ok && !statesEqual(old, c.states[pid]) {
			changed = append(changed, pid)
		}
	}
	return changed
}

func statesEqual(a, b State) bool {
	// Structural comparison: state types may hold slices, which rules out
	// direct interface equality.
	return reflect.DeepEqual(a, b)
}

func (c Configuration) String() string {
	if len(c.states) == 0 {
		return "Configuration:\n  <empty>"
	}
	var sb strings.Builder
	sb.WriteString("Configuration:")
	for _, pid := range c.Processes() {
		fmt.Fprintf(&sb, "\n  %s: %v", pid, c.states[pid])
	}
	return sb.String()
}
