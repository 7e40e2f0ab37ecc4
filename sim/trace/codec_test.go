package trace

import (
	"reflect"
	"testing"
	"time"

	"github.com/distsim/distsim/sim"
)

type hopSignal struct {
	sim.Signal
	Note string `json:"note"`
}

type hopMessage struct {
	sim.Message
	Hops int `json:"hops"`
}

type hopState struct {
	sim.StateBase
	Seen sim.ProcessSet `json:"seen"`
}

func init() {
	RegisterEvent("hop.Signal", hopSignal{})
	RegisterEvent("hop.Message", hopMessage{})
	RegisterState("hop.State", hopState{})
}

func hopTrace() *sim.Trace {
	tr := &sim.Trace{
		RunID:                "run-1",
		AlgorithmName:        "hop",
		AlgorithmDescription: "counts hops",
		SynchronyName:        "PartiallySynchronous",
		SynchronyParams:      map[string]string{"bound": "1ms"},
		Processes:            sim.NewProcessSet(1, 2),
		Channels:             sim.NewChannelSet(sim.NewChannel(1, 2)),
	}
	tr.AddEvent(0, 0, hopSignal{Signal: sim.Signal{To: 1}, Note: "go"})
	tr.AddEvent(0, time.Millisecond, hopMessage{Message: sim.Message{To: 2, From: 1}, Hops: 1})
	tr.AddHistory(0, sim.NewConfiguration(
		hopState{StateBase: sim.StateBase{Owner: 1}, Seen: sim.NewProcessSet(1)},
		hopState{StateBase: sim.StateBase{Owner: 2}},
	))
	return tr
}

func TestCodec_RoundTripRegisteredKinds(t *testing.T) {
	// GIVEN a trace whose event and state kinds are registered
	original := hopTrace()

	// WHEN encoded and decoded
	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// THEN the trace round-trips structurally, concrete types included
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\noriginal: %+v\ndecoded:  %+v", original, decoded)
	}
	if _, ok := decoded.EventsList[1].Event.(hopMessage); !ok {
		t.Errorf("registered kind decoded to %T, want hopMessage", decoded.EventsList[1].Event)
	}
}

func TestCodec_UnknownKindsDecodeGenerically(t *testing.T) {
	// GIVEN a persisted trace with kinds this process never registered
	doc := []byte(`{
	  "run_id": "run-2",
	  "algorithm_name": "mystery",
	  "synchrony_model": {"name": "Synchronous"},
	  "topology": {"processes": [1, 2], "channels": [[1, 2]]},
	  "events_list": [
	    {"event": {"kind": "mystery.Wake", "body": {"target": 1, "round": 7}}, "start": 0, "end": 0},
	    {"event": {"kind": "mystery.Token", "body": {"target": 2, "sender": 1, "round": 7}}, "start": 0, "end": 1000000}
	  ]
	}`)

	tr, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// THEN the common fields survive in generic form
	wake, ok := tr.EventsList[0].Event.(GenericEvent)
	if !ok {
		t.Fatalf("unknown kind decoded to %T, want GenericEvent", tr.EventsList[0].Event)
	}
	if wake.Kind != "mystery.Wake" || wake.Target() != 1 || wake.From != sim.NoPid {
		t.Errorf("wake = %+v, want kind mystery.Wake targeting p1 with no sender", wake)
	}
	if wake.Fields["round"] != float64(7) {
		t.Errorf("payload field lost: %v", wake.Fields)
	}

	token := tr.EventsList[1].Event.(GenericEvent)
	if token.Sender() != 1 || token.Target() != 2 {
		t.Errorf("token = %+v, want p1 -> p2", token)
	}
	if !tr.EventsList[1].IsMessage() {
		t.Error("generic event with a sender not recognized as a message")
	}

	// AND the generic form re-encodes losslessly
	data, err := Encode(tr)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	again, err := Decode(data)
	if err != nil {
		t.Fatalf("re-Decode: %v", err)
	}
	if !reflect.DeepEqual(tr, again) {
		t.Error("generic trace did not survive a second round trip")
	}
}

func TestCodec_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{broken`},
		{"missing algorithm name", `{"run_id": "x", "events_list": []}`},
		{"event without target", `{
		  "algorithm_name": "x",
		  "events_list": [{"event": {"kind": "mystery.Wake", "body": {"round": 1}}, "start": 0, "end": 0}]
		}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if !sim.IsSerializationError(err) {
				t.Errorf("got %v, want serialization error", err)
			}
		})
	}
}

func TestCodec_UnregisteredEventFallsBackToTypeName(t *testing.T) {
	// sigEv is never registered; it persists under its bare type name and
	// decodes generically.
	tr := &sim.Trace{
		AlgorithmName: "anon",
		Processes:     sim.NewProcessSet(1),
	}
	tr.AddEvent(0, 0, sigEv{sim.Signal{To: 1}})

	data, err := Encode(tr)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ge, ok := decoded.EventsList[0].Event.(GenericEvent)
	if !ok {
		t.Fatalf("decoded to %T, want GenericEvent", decoded.EventsList[0].Event)
	}
	if ge.Kind != "sigEv" || ge.Target() != 1 {
		t.Errorf("got kind %q targeting %s, want sigEv targeting p1", ge.Kind, ge.Target())
	}
}
