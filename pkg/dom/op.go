package dom

// OpKind identifies a host primitive call.
type OpKind uint8

const (
	OpCreate         OpKind = 0x01
	OpSetProp        OpKind = 0x02
	OpClearProp      OpKind = 0x03
	OpMergeStyle     OpKind = 0x04
	OpAddListener    OpKind = 0x05
	OpRemoveListener OpKind = 0x06
	OpAppend         OpKind = 0x07
	OpInsertBefore   OpKind = 0x08
	OpRemove         OpKind = 0x09
	OpRelease        OpKind = 0x0A
)

// String returns the string representation of the op kind.
func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "Create"
	case OpSetProp:
		return "SetProp"
	case OpClearProp:
		return "ClearProp"
	case OpMergeStyle:
		return "MergeStyle"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListener:
		return "RemoveListener"
	case OpAppend:
		return "Append"
	case OpInsertBefore:
		return "InsertBefore"
	case OpRemove:
		return "Remove"
	case OpRelease:
		return "Release"
	default:
		return "Unknown"
	}
}

// IsMutation reports whether the op changes a node or the tree.
// Release only drops bookkeeping for a node that was never attached.
func (k OpKind) IsMutation() bool {
	return k >= OpCreate && k <= OpRemove
}

// Op is one recorded host call. Node ids refer to Element.ID.
type Op struct {
	Kind   OpKind
	Node   int64
	Parent int64             // Append, InsertBefore
	Ref    int64             // InsertBefore
	Tag    string            // Create
	Key    string            // SetProp, ClearProp
	Value  any               // SetProp
	Event  string            // AddListener, RemoveListener
	Style  map[string]string // MergeStyle
}
