package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (T100-T119)
	// ============================================

	"T100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
	},
	"T101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file could not be parsed as JSON.",
	},
	"T102": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
	},
	"T103": {
		Category: CategoryConfig,
		Message:  "Unknown toast type",
		Detail:   "Toast types are success, error, info and warning.",
	},
	"T104": {
		Category: CategoryConfig,
		Message:  "Invalid limit",
	},
	"T105": {
		Category: CategoryConfig,
		Message:  "Config write failed",
	},

	// ============================================
	// CLI Errors (T200-T219)
	// ============================================

	"T200": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
	"T201": {
		Category: CategoryCLI,
		Message:  "Server unreachable",
		Detail:   "Could not reach the toastd server. Is `toastd serve` running?",
	},
	"T202": {
		Category: CategoryCLI,
		Message:  "Request rejected",
	},

	// ============================================
	// Server Errors (T300-T319)
	// ============================================

	"T300": {
		Category: CategoryServer,
		Message:  "Listen failed",
	},
	"T301": {
		Category: CategoryServer,
		Message:  "Shutdown failed",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
