package sim

import (
	"reflect"
	"testing"
)

type counterState struct {
	StateBase
	Count int
}

func TestConfiguration_UpdatedCopies(t *testing.T) {
	// GIVEN a two-process configuration
	orig := NewConfiguration(
		counterState{StateBase: StateBase{Owner: 1}, Count: 0},
		counterState{StateBase: StateBase{Owner: 2}, Count: 0},
	)

	// WHEN one process's state is replaced
	next := orig.Updated(counterState{StateBase: StateBase{Owner: 1}, Count: 5})

	// THEN the original is untouched
	st, ok := orig.StateOf(1)
	if !ok || st.(counterState).Count != 0 {
		t.Errorf("original mutated: got %v", st)
	}
	st, ok = next.StateOf(1)
	if !ok || st.(counterState).Count != 5 {
		t.Errorf("updated config missing new state: got %v", st)
	}
	if next.Len() != 2 {
		t.Errorf("Len() = %d, want 2", next.Len())
	}
}

func TestConfiguration_ProcessesSorted(t *testing.T) {
	cfg := NewConfiguration(
		counterState{StateBase: StateBase{Owner: 3}},
		counterState{StateBase: StateBase{Owner: 1}},
		counterState{StateBase: StateBase{Owner: 2}},
	)
	got := cfg.Processes()
	want := []Pid{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Processes() = %v, want %v", got, want)
	}

	states := cfg.States()
	for i, st := range states {
		if st.Pid() != want[i] {
			t.Errorf("States()[%d] owned by %s, want %s", i, st.Pid(), want[i])
		}
	}
}

func TestConfiguration_ChangedFrom(t *testing.T) {
	prev := NewConfiguration(
		counterState{StateBase: StateBase{Owner: 1}, Count: 0},
		counterState{StateBase: StateBase{Owner: 2}, Count: 0},
		counterState{StateBase: StateBase{Owner: 3}, Count: 0},
	)
	next := prev.Updated(
		counterState{StateBase: StateBase{Owner: 1}, Count: 1},
		counterState{StateBase: StateBase{Owner: 3}, Count: 7},
	)

	got := next.ChangedFrom(prev)
	want := []Pid{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChangedFrom = %v, want %v", got, want)
	}

	if changed := prev.ChangedFrom(prev); changed != nil {
		t.Errorf("identical configurations reported changes: %v", changed)
	}
}

func TestConfiguration_ContainsAndMissing(t *testing.T) {
	cfg := NewConfiguration(counterState{StateBase: StateBase{Owner: 4}})
	if !cfg.Contains(4) {
		t.Error("Contains(4) = false, want true")
	}
	if cfg.Contains(9) {
		t.Error("Contains(9) = true, want false")
	}
	if _, ok := cfg.StateOf(9); ok {
		t.Error("StateOf(9) reported presence for an absent pid")
	}
}
