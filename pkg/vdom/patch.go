package vdom

// PropOp is the type of a property patch operation.
type PropOp uint8

const (
	PropDetach     PropOp = 0x01 // Remove an event listener
	PropClear      PropOp = 0x02 // Reset a removed property
	PropAttach     PropOp = 0x03 // Add an event listener
	PropSet        PropOp = 0x04 // Write a property value
	PropMergeStyle PropOp = 0x05 // Merge style declarations
)

// String returns the string representation of the PropOp.
func (op PropOp) String() string {
	switch op {
	case PropDetach:
		return "Detach"
	case PropClear:
		return "Clear"
	case PropAttach:
		return "Attach"
	case PropSet:
		return "Set"
	case PropMergeStyle:
		return "MergeStyle"
	default:
		return "Unknown"
	}
}

// PropChange is a single host operation produced by DiffProps.
type PropChange struct {
	Op       PropOp            // Operation type
	Key      string            // Property key
	Event    string            // Event type (Attach/Detach)
	Listener *Listener         // Handler (Attach/Detach)
	Value    any               // New value (Set)
	Style    map[string]string // Declarations (MergeStyle)
}
