// Package store provides SQLite-backed persistence for stories, passages,
// story formats, and preferences. Reads expose a snapshot of current state;
// all writes go through a closed set of commands applied via Store.Apply,
// which keeps dispatch-order semantics and gives tests a single choke point.
package store

import "errors"

var (
	// ErrNotFound reports a story, passage, format, or preference that does
	// not exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation reports a malformed argument.
	ErrValidation = errors.New("invalid argument")
)

// Default passage geometry, in editor units.
const (
	DefaultPassageWidth  = 100.0
	DefaultPassageHeight = 100.0
)

// DefaultPassageName is used when a passage is created without a name.
const DefaultPassageName = "Untitled Passage"

// Preference keys.
const (
	PrefDefaultFormat  = "defaultFormat"
	PrefProofingFormat = "proofingFormat"
)

// Story is a graph of passages plus presentation settings. Passages is
// populated on reads, in creation order.
type Story struct {
	ID                 string
	Name               string
	IFID               string
	Script             string
	Stylesheet         string
	Zoom               float64
	SnapToGrid         bool
	StoryFormat        string
	StoryFormatVersion string
	TagColors          map[string]string
	LastUpdate         int64
	Passages           []*Passage
}

// Passage is a node in a story's text graph. Name doubles as the link target
// key and is expected to be unique within a story.
type Passage struct {
	ID      string
	StoryID string
	Name    string
	Text    string
	Tags    []string
	Top     float64
	Left    float64
	Width   float64
	Height  float64
}

// StoryFormat is one installed version of a renderer/runtime. Several records
// may share a name; at most one exists per (name, exact version).
type StoryFormat struct {
	ID         string
	Name       string
	Version    string
	URL        string
	UserAdded  bool
	Loaded     bool
	Properties *FormatProperties
}

// FormatProperties is the metadata blob published by a format's script.
type FormatProperties struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url,omitempty"`
	License     string `json:"license,omitempty"`
	Proofing    bool   `json:"proofing,omitempty"`
	Source      string `json:"source,omitempty"`
}

// FormatPref is a {name, version} lookup key into the format catalog, used
// for the default and proofing format preferences.
type FormatPref struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// StoryProps carries optional story field updates; nil fields are left
// unchanged. On create, nil fields take defaults.
type StoryProps struct {
	Name               *string
	IFID               *string
	Script             *string
	Stylesheet         *string
	Zoom               *float64
	SnapToGrid         *bool
	StoryFormat        *string
	StoryFormatVersion *string
	TagColors          map[string]string
}

// PassageProps carries optional passage field updates.
type PassageProps struct {
	Name   *string
	Text   *string
	Tags   []string
	Top    *float64
	Left   *float64
	Width  *float64
	Height *float64
}

// FormatProps carries optional format field updates.
type FormatProps struct {
	Name      *string
	Version   *string
	URL       *string
	UserAdded *bool
	Loaded    *bool
}
