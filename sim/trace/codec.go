package trace

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/distsim/distsim/sim"
)

// Event and state kinds are registered by the packages that define them,
// typically from an init function, so that persisted traces round-trip
// into the original concrete types. Kinds that were never registered
// decode into GenericEvent/GenericState instead — a consumer can always
// fall back to the kind name and the common target/sender fields.
var (
	eventKinds = make(map[string]reflect.Type)
	eventNames = make(map[reflect.Type]string)
	stateKinds = make(map[string]reflect.Type)
	stateNames = make(map[reflect.Type]string)
)

// RegisterEvent maps kind to the concrete type of prototype. Events must
// be scheduled in the same form they are registered in (value or pointer).
func RegisterEvent(kind string, prototype sim.Event) {
	t := reflect.TypeOf(prototype)
	eventKinds[kind] = t
	eventNames[t] = kind
}

// RegisterState maps kind to the concrete type of prototype.
func RegisterState(kind string, prototype sim.State) {
	t := reflect.TypeOf(prototype)
	stateKinds[kind] = t
	stateNames[t] = kind
}

// GenericEvent preserves an event whose kind is not registered. It
// re-encodes losslessly under its original kind name.
type GenericEvent struct {
	Kind   string
	To     sim.Pid
	From   sim.Pid // NoPid when the event carried no sender
	Fields map[string]any
}

func (e GenericEvent) Target() sim.Pid { return e.To }
func (e GenericEvent) Sender() sim.Pid { return e.From }

// GenericState preserves a state whose kind is not registered.
type GenericState struct {
	Kind   string
	Owner  sim.Pid
	Fields map[string]any
}

func (s GenericState) Pid() sim.Pid { return s.Owner }

// Document field layout of the persisted trace.
type taggedValue struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body"`
}

type timedEventDoc struct {
	Event taggedValue `json:"event"`
	Start int64       `json:"start"` // nanoseconds
	End   int64       `json:"end"`   // nanoseconds
}

type historyDoc struct {
	Time   int64         `json:"time"` // nanoseconds
	States []taggedValue `json:"states"`
}

type synchronyDoc struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

type topologyDoc struct {
	Processes sim.ProcessSet `json:"processes"`
	Channels  sim.ChannelSet `json:"channels"`
}

type document struct {
	RunID                string          `json:"run_id"`
	AlgorithmName        string          `json:"algorithm_name"`
	AlgorithmDescription string          `json:"algorithm_description,omitempty"`
	Synchrony            synchronyDoc    `json:"synchrony_model"`
	Topology             topologyDoc     `json:"topology"`
	EventsList           []timedEventDoc `json:"events_list"`
	History              []historyDoc    `json:"history,omitempty"`
}

// Encode serializes tr to the JSON trace document.
func Encode(tr *sim.Trace) ([]byte, error) {
	doc := document{
		RunID:                tr.RunID,
		AlgorithmName:        tr.AlgorithmName,
		AlgorithmDescription: tr.AlgorithmDescription,
		Synchrony:            synchronyDoc{Name: tr.SynchronyName, Params: tr.SynchronyParams},
		Topology:             topologyDoc{Processes: tr.Processes, Channels: tr.Channels},
		EventsList:           make([]timedEventDoc, 0, len(tr.EventsList)),
	}
	for i, te := range tr.EventsList {
		tagged, err := encodeEvent(te.Event)
		if err != nil {
			return nil, sim.SerializationErrorf("event %d: %v", i, err)
		}
		doc.EventsList = append(doc.EventsList, timedEventDoc{
			Event: tagged,
			Start: int64(te.Start),
			End:   int64(te.End),
		})
	}
	for i, tc := range tr.History {
		entry := historyDoc{Time: int64(tc.Time)}
		for _, st := range tc.Configuration.States() {
			tagged, err := encodeState(st)
			if err != nil {
				return nil, sim.SerializationErrorf("history %d: %v", i, err)
			}
			entry.States = append(entry.States, tagged)
		}
		doc.History = append(doc.History, entry)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a JSON trace document back into a trace. Events and
// states of unregistered kinds come back as GenericEvent/GenericState.
func Decode(data []byte) (*sim.Trace, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, sim.SerializationErrorf("malformed trace document: %v", err)
	}
	if doc.AlgorithmName == "" {
		return nil, sim.SerializationErrorf("trace document has no algorithm_name")
	}
	tr := &sim.Trace{
		RunID:                doc.RunID,
		AlgorithmName:        doc.AlgorithmName,
		AlgorithmDescription: doc.AlgorithmDescription,
		SynchronyName:        doc.Synchrony.Name,
		SynchronyParams:      doc.Synchrony.Params,
		Processes:            doc.Topology.Processes,
		Channels:             doc.Topology.Channels,
	}
	for i, ed := range doc.EventsList {
		ev, err := decodeEvent(ed.Event)
		if err != nil {
			return nil, sim.SerializationErrorf("event %d: %v", i, err)
		}
		tr.AddEvent(time.Duration(ed.Start), time.Duration(ed.End), ev)
	}
	for i, hd := range doc.History {
		states := make([]sim.State, 0, len(hd.States))
		for _, tagged := range hd.States {
			st, err := decodeState(tagged)
			if err != nil {
				return nil, sim.SerializationErrorf("history %d: %v", i, err)
			}
			states = append(states, st)
		}
		tr.AddHistory(time.Duration(hd.Time), sim.NewConfiguration(states...))
	}
	return tr, nil
}

func encodeEvent(ev sim.Event) (taggedValue, error) {
	if ge, ok := ev.(GenericEvent); ok {
		return encodeGenericEvent(ge)
	}
	t := reflect.TypeOf(ev)
	kind, ok := eventNames[t]
	if !ok {
		// Unregistered: persist under the bare type name; it will decode
		// generically.
		kind = bareTypeName(t)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return taggedValue{}, err
	}
	return taggedValue{Kind: kind, Body: body}, nil
}

func encodeGenericEvent(ge GenericEvent) (taggedValue, error) {
	fields := make(map[string]any, len(ge.Fields)+2)
	for k, v := range ge.Fields {
		fields[k] = v
	}
	fields["target"] = int(ge.To)
	if ge.From != sim.NoPid {
		fields["sender"] = int(ge.From)
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return taggedValue{}, err
	}
	return taggedValue{Kind: ge.Kind, Body: body}, nil
}

func decodeEvent(tagged taggedValue) (sim.Event, error) {
	if t, ok := eventKinds[tagged.Kind]; ok {
		v, err := decodeInto(t, tagged.Body)
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", tagged.Kind, err)
		}
		ev, ok := v.(sim.Event)
		if !ok {
			return nil, fmt.Errorf("kind %q does not decode to an event", tagged.Kind)
		}
		return ev, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(tagged.Body, &fields); err != nil {
		return nil, fmt.Errorf("kind %q: %w", tagged.Kind, err)
	}
	ge := GenericEvent{Kind: tagged.Kind, Fields: fields}
	if target, ok := popPid(fields, "target"); ok {
		ge.To = target
	} else {
		return nil, fmt.Errorf("kind %q has no target", tagged.Kind)
	}
	if sender, ok := popPid(fields, "sender"); ok {
		ge.From = sender
	}
	return ge, nil
}

func encodeState(st sim.State) (taggedValue, error) {
	if gs, ok := st.(GenericState); ok {
		fields := make(map[string]any, len(gs.Fields)+1)
		for k, v := range gs.Fields {
			fields[k] = v
		}
		fields["pid"] = int(gs.Owner)
		body, err := json.Marshal(fields)
		if err != nil {
			return taggedValue{}, err
		}
		return taggedValue{Kind: gs.Kind, Body: body}, nil
	}
	t := reflect.TypeOf(st)
	kind, ok := stateNames[t]
	if !ok {
		kind = bareTypeName(t)
	}
	body, err := json.Marshal(st)
	if err != nil {
		return taggedValue{}, err
	}
	return taggedValue{Kind: kind, Body: body}, nil
}

func decodeState(tagged taggedValue) (sim.State, error) {
	if t, ok := stateKinds[tagged.Kind]; ok {
		v, err := decodeInto(t, tagged.Body)
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", tagged.Kind, err)
		}
		st, ok := v.(sim.State)
		if !ok {
			return nil, fmt.Errorf("kind %q does not decode to a state", tagged.Kind)
		}
		return st, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(tagged.Body, &fields); err != nil {
		return nil, fmt.Errorf("kind %q: %w", tagged.Kind, err)
	}
	gs := GenericState{Kind: tagged.Kind, Fields: fields}
	if owner, ok := popPid(fields, "pid"); ok {
		gs.Owner = owner
	} else {
		return nil, fmt.Errorf("kind %q has no pid", tagged.Kind)
	}
	return gs, nil
}

// decodeInto unmarshals body into a fresh value of type t, preserving
// whether t was registered as a value or a pointer type.
func decodeInto(t reflect.Type, body []byte) (any, error) {
	if t.Kind() == reflect.Pointer {
		v := reflect.New(t.Elem())
		if err := json.Unmarshal(body, v.Interface()); err != nil {
			return nil, err
		}
		return v.Interface(), nil
	}
	v := reflect.New(t)
	if err := json.Unmarshal(body, v.Interface()); err != nil {
		return nil, err
	}
	return v.Elem().Interface(), nil
}

func popPid(fields map[string]any, key string) (sim.Pid, bool) {
	raw, ok := fields[key]
	if !ok {
		return sim.NoPid, false
	}
	delete(fields, key)
	num, ok := raw.(float64)
	if !ok {
		return sim.NoPid, false
	}
	return sim.Pid(int(num)), true
}

func bareTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
