package protocol

import "github.com/vango-dev/loom/pkg/vdom"

// Event is a client event aimed at a live node.
type Event struct {
	Node  int64  // dom.Element id the event was dispatched at
	Type  string // lower-case event type, "click"
	Value string // input value, if any
}

// EncodeEvent encodes an Event frame payload:
//
//	node:varint type:string value:string
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(ev.Node))
	e.WriteString(ev.Type)
	e.WriteString(ev.Value)
	return e.Bytes()
}

// DecodeEvent decodes an Event frame payload. An empty event type is
// malformed.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	node, err := d.ReadUvarint()
	if err != nil {
		return nil, malformed(err, "event node")
	}
	typ, err := d.ReadString()
	if err != nil {
		return nil, malformed(err, "event type")
	}
	if typ == "" {
		return nil, malformed(ErrEmptyEventType, "node %d", node)
	}
	value, err := d.ReadString()
	if err != nil {
		return nil, malformed(err, "event value")
	}
	if !d.EOF() {
		return nil, malformed(ErrTrailingBytes, "%d bytes after event", d.Remaining())
	}
	return &Event{Node: int64(node), Type: typ, Value: value}, nil
}

// VDOM converts the wire event to the event handed to listeners.
func (ev *Event) VDOM() *vdom.Event {
	return &vdom.Event{Type: ev.Type, Value: ev.Value}
}
