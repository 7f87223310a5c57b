package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Engine Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryHook,
		Message:  "Invalid hook call",
		Detail:   "State hooks may only be called while a component is being invoked by the work scheduler.",
	},
	"E002": {
		Category: CategoryTree,
		Message:  "Malformed node",
	},
	"E003": {
		Category: CategoryCommit,
		Message:  "Detached commit",
		Detail:   "Commit was requested but no work-in-progress tree has finished its walk.",
	},
	"E004": {
		Category: CategoryRender,
		Message:  "Component panicked",
	},
	"E005": {
		Category: CategoryRender,
		Message:  "No mount node",
		Detail:   "Render needs a host node to attach the tree to.",
	},
	"E006": {
		Category: CategoryTree,
		Message:  "Host primitive panicked",
	},

	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// Snapshot Errors (E150-E159)
	// ============================================

	"E150": {
		Category: CategorySnapshot,
		Message:  "Snapshot store failed",
	},
	"E151": {
		Category: CategorySnapshot,
		Message:  "Snapshot not found",
	},

	// ============================================
	// Protocol Errors (E160-E169)
	// ============================================

	"E160": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
	},
	"E161": {
		Category: CategoryProtocol,
		Message:  "Unknown node id",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
