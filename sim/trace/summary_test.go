package trace

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/distsim/distsim/sim"
)

func summaryTrace() *sim.Trace {
	tr := &sim.Trace{
		AlgorithmName: "Learn the Topology",
		SynchronyName: "Synchronous",
		Processes:     sim.NewProcessSet(1, 2, 3),
		Channels:      sim.NewChannelSet(sim.NewChannel(1, 2), sim.NewChannel(2, 3)),
	}
	tr.AddEvent(0, 0, sigEv{sim.Signal{To: 1}})
	tr.AddEvent(0, time.Millisecond, msgEv{sim.Message{To: 2, From: 1}})
	tr.AddEvent(time.Millisecond, 2*time.Millisecond, msgEv{sim.Message{To: 3, From: 2}})
	return tr
}

func TestSummarize(t *testing.T) {
	s := Summarize(summaryTrace())

	if s.Algorithm != "Learn the Topology" || s.Synchrony != "Synchronous" {
		t.Errorf("header = %q/%q", s.Algorithm, s.Synchrony)
	}
	if s.Processes != 3 || s.Channels != 2 {
		t.Errorf("topology = %d processes, %d channels, want 3 and 2", s.Processes, s.Channels)
	}
	if s.Events != 3 || s.Messages != 2 || s.Signals != 1 {
		t.Errorf("events = %d (%d messages, %d signals), want 3 (2, 1)", s.Events, s.Messages, s.Signals)
	}
	if s.Span != 2*time.Millisecond {
		t.Errorf("span = %s, want 2ms", s.Span)
	}
	if s.MaxLogicalTime != 3 {
		t.Errorf("max lamport = %d, want 3", s.MaxLogicalTime)
	}
	for _, pid := range []sim.Pid{1, 2, 3} {
		if s.EventsPerProcess[pid] != 1 {
			t.Errorf("%s delivered %d events, want 1", pid, s.EventsPerProcess[pid])
		}
	}
}

func TestSummarize_NilAndEmpty(t *testing.T) {
	if s := Summarize(nil); s.Events != 0 || s.EventsPerProcess == nil {
		t.Errorf("nil trace summary = %+v", s)
	}
	empty := &sim.Trace{AlgorithmName: "idle"}
	if s := Summarize(empty); s.Events != 0 || s.MaxLogicalTime != 0 || s.Span != 0 {
		t.Errorf("empty trace summary = %+v", s)
	}
}

func TestSummaryFormat_Golden(t *testing.T) {
	got := Summarize(summaryTrace()).Format()

	g := goldie.New(t)
	g.Assert(t, "summary_format", []byte(got))
}
