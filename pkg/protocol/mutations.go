package protocol

import (
	"fmt"
	"sort"

	"github.com/vango-dev/loom/pkg/dom"
)

// Value tags for SetProp values.
const (
	valueNil    byte = 0x00
	valueString byte = 0x01
	valueBool   byte = 0x02
	valueInt    byte = 0x03
	valueFloat  byte = 0x04
)

// Mutations is one committed batch of host operations. Seq increases by
// one per batch sent on a connection so clients can detect gaps.
type Mutations struct {
	Seq uint64
	Ops []dom.Op
}

// EncodeMutations encodes a batch to a Mutations frame payload.
//
// Payload:
//
//	seq:varint count:varint op*
//	op = kind:byte node:varint fields...
//
// Ops that do not change the tree (Release) are skipped.
func EncodeMutations(m *Mutations) []byte {
	e := NewEncoder()
	EncodeMutationsTo(e, m)
	return e.Bytes()
}

// EncodeMutationsTo encodes a batch using the provided encoder.
func EncodeMutationsTo(e *Encoder, m *Mutations) {
	e.WriteUvarint(m.Seq)
	count := 0
	for i := range m.Ops {
		if m.Ops[i].Kind.IsMutation() {
			count++
		}
	}
	e.WriteUvarint(uint64(count))
	for i := range m.Ops {
		if m.Ops[i].Kind.IsMutation() {
			encodeOp(e, &m.Ops[i])
		}
	}
}

func encodeOp(e *Encoder, op *dom.Op) {
	e.PutByte(byte(op.Kind))
	e.WriteUvarint(uint64(op.Node))
	switch op.Kind {
	case dom.OpCreate:
		e.WriteString(op.Tag)
	case dom.OpSetProp:
		e.WriteString(op.Key)
		encodeValue(e, op.Value)
	case dom.OpClearProp:
		e.WriteString(op.Key)
	case dom.OpMergeStyle:
		keys := make([]string, 0, len(op.Style))
		for k := range op.Style {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.WriteUvarint(uint64(len(keys)))
		for _, k := range keys {
			e.WriteString(k)
			e.WriteString(op.Style[k])
		}
	case dom.OpAddListener, dom.OpRemoveListener:
		e.WriteString(op.Event)
	case dom.OpAppend:
		e.WriteUvarint(uint64(op.Parent))
	case dom.OpInsertBefore:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Ref))
	case dom.OpRemove:
	}
}

// encodeValue writes a tagged property value. Types without a tag are
// sent as their fmt representation.
func encodeValue(e *Encoder, v any) {
	switch x := v.(type) {
	case nil:
		e.PutByte(valueNil)
	case string:
		e.PutByte(valueString)
		e.WriteString(x)
	case bool:
		e.PutByte(valueBool)
		e.WriteBool(x)
	case int:
		e.PutByte(valueInt)
		e.WriteSvarint(int64(x))
	case int32:
		e.PutByte(valueInt)
		e.WriteSvarint(int64(x))
	case int64:
		e.PutByte(valueInt)
		e.WriteSvarint(x)
	case float32:
		e.PutByte(valueFloat)
		e.WriteFloat64(float64(x))
	case float64:
		e.PutByte(valueFloat)
		e.WriteFloat64(x)
	case fmt.Stringer:
		e.PutByte(valueString)
		e.WriteString(x.String())
	default:
		e.PutByte(valueString)
		e.WriteString(fmt.Sprint(x))
	}
}

// DecodeMutations decodes a Mutations frame payload. Integer values
// decode as int64 and floats as float64.
func DecodeMutations(data []byte) (*Mutations, error) {
	d := NewDecoder(data)
	m, err := decodeMutations(d)
	if err != nil {
		return nil, malformed(err, "mutations")
	}
	if !d.EOF() {
		return nil, malformed(ErrTrailingBytes, "%d bytes after mutations", d.Remaining())
	}
	return m, nil
}

func decodeMutations(d *Decoder) (*Mutations, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	m := &Mutations{Seq: seq, Ops: make([]dom.Op, 0, count)}
	for i := 0; i < count; i++ {
		op, err := decodeOp(d)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		m.Ops = append(m.Ops, op)
	}
	return m, nil
}

func decodeOp(d *Decoder) (dom.Op, error) {
	var op dom.Op
	kind, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Kind = dom.OpKind(kind)
	if !op.Kind.IsMutation() {
		return op, fmt.Errorf("%w: 0x%02x", ErrUnknownOp, kind)
	}
	node, err := d.ReadUvarint()
	if err != nil {
		return op, err
	}
	op.Node = int64(node)

	switch op.Kind {
	case dom.OpCreate:
		op.Tag, err = d.ReadString()
	case dom.OpSetProp:
		if op.Key, err = d.ReadString(); err == nil {
			op.Value, err = decodeValue(d)
		}
	case dom.OpClearProp:
		op.Key, err = d.ReadString()
	case dom.OpMergeStyle:
		op.Style, err = decodeStyle(d)
	case dom.OpAddListener, dom.OpRemoveListener:
		op.Event, err = d.ReadString()
	case dom.OpAppend:
		op.Parent, err = readID(d)
	case dom.OpInsertBefore:
		if op.Parent, err = readID(d); err == nil {
			op.Ref, err = readID(d)
		}
	}
	return op, err
}

func decodeValue(d *Decoder) (any, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case valueNil:
		return nil, nil
	case valueString:
		return d.ReadString()
	case valueBool:
		return d.ReadBool()
	case valueInt:
		return d.ReadSvarint()
	case valueFloat:
		return d.ReadFloat64()
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownValue, tag)
	}
}

func decodeStyle(d *Decoder) (map[string]string, error) {
	n, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	style := make(map[string]string, n)
	for i := 0; i < n; i++ {
		k, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		style[k] = v
	}
	return style, nil
}

func readID(d *Decoder) (int64, error) {
	v, err := d.ReadUvarint()
	return int64(v), err
}
