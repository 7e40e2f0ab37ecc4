package sim

// Event is a unit of work delivered to a single process. Algorithms define
// concrete event types by embedding Signal or Message and dispatch on them
// with a type switch:
//
//	func (a *Flood) OnEvent(old State, ev Event) (State, []Event, error) {
//	    switch e := ev.(type) {
//	    case Wake:
//	        // ...
//	    case Token:
//	        // ...
//	    default:
//	        return old, nil, Unhandled(ev)
//	    }
//	}
//
// Events are immutable once scheduled; the engine only reads the common
// target and sender fields and stays agnostic to user payloads.
type Event interface {
	Target() Pid
}

// Signal is the base for intra-process events. It is typically issued
// externally to kick off an algorithm at selected processes.
type Signal struct {
	To Pid `json:"target"`
}

func (s Signal) Target() Pid { return s.To }

// Message is the base for inter-process events. The target receives the
// message; the sender is the process that emitted it.
type Message struct {
	To   Pid `json:"target"`
	From Pid `json:"sender"`
}

func (m Message) Target() Pid { return m.To }
func (m Message) Sender() Pid { return m.From }

// SenderOf returns the sending process of ev and true if ev is a message.
func SenderOf(ev Event) (Pid, bool) {
	if m, ok := ev.(interface{ Sender() Pid }); ok && m.Sender() != NoPid {
		return m.Sender(), true
	}
	return NoPid, false
}

// IsMessage reports whether ev is an inter-process event.
func IsMessage(ev Event) bool {
	_, ok := SenderOf(ev)
	return ok
}
