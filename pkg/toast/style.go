package toast

// Style is the visual descriptor for a toast type.
type Style struct {
	// Icon is the icon name understood by the client icon set.
	Icon string

	// Glyph is a text fallback for the icon.
	Glyph string

	// Container holds the classes for the toast body.
	Container string

	// IconClass colours the icon.
	IconClass string

	// Accent colours the action button.
	Accent string
}

var styles = map[Type]Style{
	TypeSuccess: {
		Icon:      "check-circle",
		Glyph:     "✓",
		Container: "bg-green-50 border-green-200 text-green-800",
		IconClass: "text-green-500",
		Accent:    "text-green-700 hover:text-green-900",
	},
	TypeError: {
		Icon:      "x-circle",
		Glyph:     "✕",
		Container: "bg-red-50 border-red-200 text-red-800",
		IconClass: "text-red-500",
		Accent:    "text-red-700 hover:text-red-900",
	},
	TypeInfo: {
		Icon:      "info",
		Glyph:     "ℹ",
		Container: "bg-blue-50 border-blue-200 text-blue-800",
		IconClass: "text-blue-500",
		Accent:    "text-blue-700 hover:text-blue-900",
	},
	TypeWarning: {
		Icon:      "alert-triangle",
		Glyph:     "⚠",
		Container: "bg-yellow-50 border-yellow-200 text-yellow-800",
		IconClass: "text-yellow-500",
		Accent:    "text-yellow-700 hover:text-yellow-900",
	},
}

// StyleFor returns the style for t. Unknown types get the info style.
func StyleFor(t Type) Style {
	if s, ok := styles[t]; ok {
		return s
	}
	return styles[TypeInfo]
}
