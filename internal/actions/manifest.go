package actions

import "github.com/storyweave/goweave/internal/store"

// BuiltinFormat is one entry of the fixed built-in format manifest.
type BuiltinFormat struct {
	Name    string
	Version string
	URL     string
}

// Builtins lists the formats every installation carries. Repair recreates
// any that go missing.
var Builtins = []BuiltinFormat{
	{Name: "Harlowe", Version: "1.2.4", URL: "story-formats/harlowe-1.2.4/format.js"},
	{Name: "Harlowe", Version: "2.0.1", URL: "story-formats/harlowe-2.0.1/format.js"},
	{Name: "Paperthin", Version: "1.0.0", URL: "story-formats/paperthin-1.0.0/format.js"},
	{Name: "Snowman", Version: "1.3.0", URL: "story-formats/snowman-1.3.0/format.js"},
	{Name: "SugarCube", Version: "1.0.35", URL: "story-formats/sugarcube-1.0.35/format.js"},
	{Name: "SugarCube", Version: "2.18.0", URL: "story-formats/sugarcube-2.18.0/format.js"},
}

// Fallback preference values used when a preference is missing or has the
// wrong shape.
var (
	DefaultFormatPref  = store.FormatPref{Name: "Harlowe", Version: "2.0.1"}
	ProofingFormatPref = store.FormatPref{Name: "Paperthin", Version: "1.0.0"}
)
