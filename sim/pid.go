package sim

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Pid identifies a process in the simulated system. Pids are totally
// ordered and cheap to compare; topology generators number them from 1.
type Pid int

// NoPid is the zero Pid. It marks the absence of a sender on events that
// are not messages.
const NoPid Pid = 0

func (p Pid) String() string {
	return fmt.Sprintf("p%d", int(p))
}

// ProcessSet is an immutable set of Pids. Iteration order is ascending,
// so every traversal of the same set is deterministic. Growing a set
// always allocates a new one; the receiver is never modified.
type ProcessSet struct {
	pids []Pid // sorted ascending, no duplicates; nil when empty
}

// NewProcessSet builds a set from the given Pids, deduplicating them.
func NewProcessSet(pids ...Pid) ProcessSet {
	return newProcessSet(pids)
}

func newProcessSet(pids []Pid) ProcessSet {
	if len(pids) == 0 {
		return ProcessSet{}
	}
	sorted := make([]Pid, len(pids))
	copy(sorted, pids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return ProcessSet{pids: out}
}

// Contains reports whether p is a member of the set.
func (s ProcessSet) Contains(p Pid) bool {
	i := sort.Search(len(s.pids), func(i int) bool { return s.pids[i] >= p })
	return i < len(s.pids) && s.pids[i] == p
}

// Len returns the number of members.
func (s ProcessSet) Len() int {
	return len(s.pids)
}

// Pids returns the members in ascending order. The returned slice is a
// copy and may be modified freely.
func (s ProcessSet) Pids() []Pid {
	out := make([]Pid, len(s.pids))
	copy(out, s.pids)
	return out
}

// Add returns a new set that additionally contains p.
func (s ProcessSet) Add(p Pid) ProcessSet {
	if s.Contains(p) {
		return s
	}
	return newProcessSet(append(s.Pids(), p))
}

// Union returns a new set holding the members of both sets.
func (s ProcessSet) Union(other ProcessSet) ProcessSet {
	if other.Len() == 0 {
		return s
	}
	return newProcessSet(append(s.Pids(), other.pids...))
}

// Without returns a new set with p removed.
func (s ProcessSet) Without(p Pid) ProcessSet {
	if !s.Contains(p) {
		return s
	}
	out := make([]Pid, 0, len(s.pids)-1)
	for _, q := range s.pids {
		if q != p {
			out = append(out, q)
		}
	}
	return newProcessSet(out)
}

// Equal reports whether both sets have exactly the same members.
func (s ProcessSet) Equal(other ProcessSet) bool {
	if len(s.pids) != len(other.pids) {
		return false
	}
	for i, p := range s.pids {
		if other.pids[i] != p {
			return false
		}
	}
	return true
}

func (s ProcessSet) String() string {
	parts := make([]string, len(s.pids))
	for i, p := range s.pids {
		parts[i] = p.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// MarshalJSON encodes the set as a sorted array of integer ids.
func (s ProcessSet) MarshalJSON() ([]byte, error) {
	ids := make([]int, len(s.pids))
	for i, p := range s.pids {
		ids[i] = int(p)
	}
	return json.Marshal(ids)
}

// UnmarshalJSON decodes an array of integer ids.
func (s *ProcessSet) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	pids := make([]Pid, len(ids))
	for i, id := range ids {
		pids[i] = Pid(id)
	}
	*s = newProcessSet(pids)
	return nil
}

// Channel is an undirected edge between two processes. The pair is
// normalized at construction so that equal channels compare equal
// regardless of argument order. Message routing is governed by each
// message's sender and target, never by the channel itself.
type Channel struct {
	a, b Pid // a <= b
}

// NewChannel builds the undirected channel between x and y.
func NewChannel(x, y Pid) Channel {
	if y < x {
		x, y = y, x
	}
	return Channel{a: x, b: y}
}

// Endpoints returns the two endpoints in normalized order.
func (c Channel) Endpoints() (Pid, Pid) {
	return c.a, c.b
}

// Connects reports whether p is one of the channel's endpoints.
func (c Channel) Connects(p Pid) bool {
	return c.a == p || c.b == p
}

func (c Channel) less(other Channel) bool {
	if c.a != other.a {
		return c.a < other.a
	}
	return c.b < other.b
}

func (c Channel) String() string {
	return fmt.Sprintf("<%d,%d>", int(c.a), int(c.b))
}

// MarshalJSON encodes the channel as a two-element array.
func (c Channel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{int(c.a), int(c.b)})
}

// UnmarshalJSON decodes a two-element array, normalizing the pair.
func (c *Channel) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	*c = NewChannel(Pid(pair[0]), Pid(pair[1]))
	return nil
}

// ChannelSet is an immutable set of Channels with deterministic
// (lexicographic) iteration order.
type ChannelSet struct {
	channels []Channel // sorted, no duplicates; nil when empty
}

// NewChannelSet builds a set from the given channels, deduplicating them.
func NewChannelSet(channels ...Channel) ChannelSet {
	return newChannelSet(channels)
}

func newChannelSet(channels []Channel) ChannelSet {
	if len(channels) == 0 {
		return ChannelSet{}
	}
	sorted := make([]Channel, len(channels))
	copy(sorted, channels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })
	out := sorted[:1]
	for _, c := range sorted[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return ChannelSet{channels: out}
}

// Contains reports whether c is a member of the set.
func (s ChannelSet) Contains(c Channel) bool {
	i := sort.Search(len(s.channels), func(i int) bool { return !s.channels[i].less(c) })
	return i < len(s.channels) && s.channels[i] == c
}

// Len returns the number of members.
func (s ChannelSet) Len() int {
	return len(s.channels)
}

// Channels returns the members in lexicographic order as a fresh slice.
func (s ChannelSet) Channels() []Channel {
	out := make([]Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// Add returns a new set that additionally contains c.
func (s ChannelSet) Add(c Channel) ChannelSet {
	if s.Contains(c) {
		return s
	}
	return newChannelSet(append(s.Channels(), c))
}

// Union returns a new set holding the members of both sets.
func (s ChannelSet) Union(other ChannelSet) ChannelSet {
	if other.Len() == 0 {
		return s
	}
	return newChannelSet(append(s.Channels(), other.channels...))
}

// Equal reports whether both sets have exactly the same members.
func (s ChannelSet) Equal(other ChannelSet) bool {
	if len(s.channels) != len(other.channels) {
		return false
	}
	for i, c := range s.channels {
		if other.channels[i] != c {
			return false
		}
	}
	return true
}

func (s ChannelSet) String() string {
	parts := make([]string, len(s.channels))
	for i, c := range s.channels {
		parts[i] = c.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// MarshalJSON encodes the set as a sorted array of [a,b] pairs.
func (s ChannelSet) MarshalJSON() ([]byte, error) {
	pairs := make([][2]int, len(s.channels))
	for i, c := range s.channels {
		pairs[i] = [2]int{int(c.a), int(c.b)}
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes an array of [a,b] pairs.
func (s *ChannelSet) UnmarshalJSON(data []byte) error {
	var pairs [][2]int
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	channels := make([]Channel, len(pairs))
	for i, pair := range pairs {
		channels[i] = NewChannel(Pid(pair[0]), Pid(pair[1]))
	}
	*s = newChannelSet(channels)
	return nil
}
