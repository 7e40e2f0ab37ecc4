package trace

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/distsim/distsim/sim"
)

// Summary aggregates statistics from a finished trace.
type Summary struct {
	Algorithm string
	Synchrony string
	Processes int
	Channels  int

	Events   int
	Messages int
	Signals  int
	// Span is the delivery time of the last processed event.
	Span time.Duration
	// MaxLogicalTime is the largest Lamport clock in the trace.
	MaxLogicalTime int64
	// EventsPerProcess counts deliveries per target process.
	EventsPerProcess map[sim.Pid]int
}

// Summarize computes aggregate statistics from a trace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(tr *sim.Trace) *Summary {
	summary := &Summary{
		EventsPerProcess: make(map[sim.Pid]int),
	}
	if tr == nil {
		return summary
	}

	summary.Algorithm = tr.AlgorithmName
	summary.Synchrony = tr.SynchronyName
	summary.Processes = tr.Processes.Len()
	summary.Channels = tr.Channels.Len()
	summary.Events = len(tr.EventsList)

	for _, te := range tr.EventsList {
		if te.IsMessage() {
			summary.Messages++
		} else {
			summary.Signals++
		}
		summary.EventsPerProcess[te.Receiver()]++
		if te.End > summary.Span {
			summary.Span = te.End
		}
	}

	if summary.Events > 0 {
		for _, lt := range Derive(tr).LogicalTimes() {
			if lt > summary.MaxLogicalTime {
				summary.MaxLogicalTime = lt
			}
		}
	}

	return summary
}

// Format renders the summary as a fixed-layout text block, suitable for
// terminal output and golden-file comparison.
func (s *Summary) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "algorithm:   %s\n", s.Algorithm)
	fmt.Fprintf(&sb, "synchrony:   %s\n", s.Synchrony)
	fmt.Fprintf(&sb, "processes:   %d\n", s.Processes)
	fmt.Fprintf(&sb, "channels:    %d\n", s.Channels)
	fmt.Fprintf(&sb, "events:      %d (%d messages, %d signals)\n", s.Events, s.Messages, s.Signals)
	fmt.Fprintf(&sb, "span:        %s\n", s.Span)
	fmt.Fprintf(&sb, "max lamport: %d\n", s.MaxLogicalTime)

	pids := make([]sim.Pid, 0, len(s.EventsPerProcess))
	for pid := range s.EventsPerProcess {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	for _, pid := range pids {
		fmt.Fprintf(&sb, "  %s: %d events\n", pid, s.EventsPerProcess[pid])
	}
	return sb.String()
}
