// Package trace derives causal views from a finished simulation trace and
// persists traces to a kind-tagged JSON document. It never needs to import
// the algorithm that produced a trace: unknown event and state kinds
// decode into generic values that expose the common target/sender fields.
package trace

import (
	"sort"
	"sync"
	"time"

	"github.com/distsim/distsim/sim"
)

// Causality holds the derived logical-time and happened-before views of a
// trace. Derivation runs lazily on first query and is cached; a Causality
// over a finished trace is safe for concurrent readers.
type Causality struct {
	tr   *sim.Trace
	once sync.Once

	logical   []int64 // Lamport logical time per event index
	localPrev []int   // previous event on the same process, -1 if none
	cause     []int   // index of the causing send's record, -1 if none
	succ      [][]int // forward happened-before edges
}

// Derive builds a Causality view over tr. The trace must be finished;
// appending to it afterwards invalidates the view.
func Derive(tr *sim.Trace) *Causality {
	return &Causality{tr: tr}
}

// Len returns the number of events in the underlying trace.
func (c *Causality) Len() int {
	return len(c.tr.EventsList)
}

// LogicalTime returns the Lamport logical time of event i.
func (c *Causality) LogicalTime(i int) int64 {
	c.once.Do(c.compute)
	return c.logical[i]
}

// LogicalTimes returns the Lamport logical time of every event, indexed
// like the trace's events list.
func (c *Causality) LogicalTimes() []int64 {
	c.once.Do(c.compute)
	out := make([]int64, len(c.logical))
	copy(out, c.logical)
	return out
}

// Cause returns the index of the event during whose processing event i was
// emitted, or -1 when i was seeded externally (or is not a message).
func (c *Causality) Cause(i int) int {
	c.once.Do(c.compute)
	return c.cause[i]
}

// HappenedBefore reports whether event a causally precedes event b: either
// both on the same process with a earlier, or a send reaching b through a
// chain of local steps and message deliveries.
func (c *Causality) HappenedBefore(a, b int) bool {
	c.once.Do(c.compute)
	if a == b {
		return false
	}
	// Forward reachability; timestamps only grow along edges, so the
	// search space is the events between a and b.
	seen := make([]bool, len(c.succ))
	stack := []int{a}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range c.succ[n] {
			if m == b {
				return true
			}
			if m < b && !seen[m] {
				seen[m] = true
				stack = append(stack, m)
			}
		}
	}
	return false
}

// Concurrent reports whether neither of the two events causally precedes
// the other.
func (c *Causality) Concurrent(a, b int) bool {
	return a != b && !c.HappenedBefore(a, b) && !c.HappenedBefore(b, a)
}

// CausalPast returns the indices of all events that happened before event
// i, ascending.
func (c *Causality) CausalPast(i int) []int {
	c.once.Do(c.compute)
	seen := make(map[int]bool)
	stack := []int{i}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range []int{c.localPrev[n], c.cause[n]} {
			if m >= 0 && !seen[m] {
				seen[m] = true
				stack = append(stack, m)
			}
		}
	}
	return sortedKeys(seen)
}

// CausalFuture returns the indices of all events that happened after event
// i, ascending.
func (c *Causality) CausalFuture(i int) []int {
	c.once.Do(c.compute)
	seen := make(map[int]bool)
	stack := []int{i}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range c.succ[n] {
			if !seen[m] {
				seen[m] = true
				stack = append(stack, m)
			}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// compute derives local order, message causes, Lamport times, and the
// forward edge lists in one pass over the events list.
//
// Events are recorded in processing order and applied at their End time.
// A message recorded at index i was emitted at Start[i] while its sender
// was processing some earlier event; that causing event is the latest
// record on the sender delivered no later than Start[i].
func (c *Causality) compute() {
	events := c.tr.EventsList
	n := len(events)
	c.logical = make([]int64, n)
	c.localPrev = make([]int, n)
	c.cause = make([]int, n)
	c.succ = make([][]int, n)

	type localEntry struct {
		at    time.Duration
		index int
	}
	timelines := make(map[sim.Pid][]localEntry)

	for i, te := range events {
		target := te.Event.Target()

		c.localPrev[i] = -1
		if tl := timelines[target]; len(tl) > 0 {
			c.localPrev[i] = tl[len(tl)-1].index
		}

		c.cause[i] = -1
		if sender, ok := sim.SenderOf(te.Event); ok {
			// Latest event on the sender delivered at or before the
			// send instant.
			tl := timelines[sender]
			for j := len(tl) - 1; j >= 0; j-- {
				if tl[j].at <= te.Start {
					c.cause[i] = tl[j].index
					break
				}
			}
		}

		// Lamport: one past the larger of the local predecessor's clock
		// and the causing send's clock.
		var prev int64
		if c.localPrev[i] >= 0 {
			prev = c.logical[c.localPrev[i]]
		}
		if c.cause[i] >= 0 && c.logical[c.cause[i]] > prev {
			prev = c.logical[c.cause[i]]
		}
		c.logical[i] = prev + 1

		timelines[target] = append(timelines[target], localEntry{at: te.End, index: i})
	}

	for i := 0; i < n; i++ {
		if p := c.localPrev[i]; p >= 0 {
			c.succ[p] = append(c.succ[p], i)
		}
		if q := c.cause[i]; q >= 0 && q != c.localPrev[i] {
			c.succ[q] = append(c.succ[q], i)
		}
	}
}
