package protocol

import "errors"

// EventOp is the type of mutation event a client can request.
type EventOp uint8

const (
	EventSet       EventOp = 0x01 // one name/text pair
	EventAppend    EventOp = 0x02 // pair list, merged
	EventAssign    EventOp = 0x03 // pair list, replaces the store
	EventRemove    EventOp = 0x04 // one name
	EventRemoveAll EventOp = 0x05 // no payload
)

// String returns the string representation of the event operation.
func (op EventOp) String() string {
	switch op {
	case EventSet:
		return "Set"
	case EventAppend:
		return "Append"
	case EventAssign:
		return "Assign"
	case EventRemove:
		return "Remove"
	case EventRemoveAll:
		return "RemoveAll"
	default:
		return "Unknown"
	}
}

// ErrUnknownEventOp is returned when decoding meets an op this version
// does not know.
var ErrUnknownEventOp = errors.New("protocol: unknown event op")

// Pair is one textual name/value pair. Values travel as text; the server
// decodes them under the schema's declared kind and drops what does not
// parse.
type Pair struct {
	Name string
	Text string
}

// Event is a client-requested store mutation.
type Event struct {
	Op    EventOp
	Name  string // Set, Remove
	Text  string // Set
	Pairs []Pair // Append, Assign
}

// EncodeEvent encodes an event payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteByte(byte(ev.Op))

	switch ev.Op {
	case EventSet:
		e.WriteString(ev.Name)
		e.WriteString(ev.Text)

	case EventAppend, EventAssign:
		e.WriteUvarint(uint64(len(ev.Pairs)))
		for _, p := range ev.Pairs {
			e.WriteString(p.Name)
			e.WriteString(p.Text)
		}

	case EventRemove:
		e.WriteString(ev.Name)

	case EventRemoveAll:
		// No payload.
	}
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)

	opByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev := &Event{Op: EventOp(opByte)}

	switch ev.Op {
	case EventSet:
		if ev.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		if ev.Text, err = d.ReadString(); err != nil {
			return nil, err
		}

	case EventAppend, EventAssign:
		count, err := d.ReadPairCount()
		if err != nil {
			return nil, err
		}
		ev.Pairs = make([]Pair, count)
		for i := 0; i < count; i++ {
			if ev.Pairs[i].Name, err = d.ReadString(); err != nil {
				return nil, err
			}
			if ev.Pairs[i].Text, err = d.ReadString(); err != nil {
				return nil, err
			}
		}

	case EventRemove:
		if ev.Name, err = d.ReadString(); err != nil {
			return nil, err
		}

	case EventRemoveAll:
		// No payload.

	default:
		return nil, ErrUnknownEventOp
	}
	return ev, nil
}
