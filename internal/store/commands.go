package store

// Command is the closed set of store mutations. Each variant corresponds to
// one named intent of the original editing UI; arguments that were positional
// props objects become typed fields.
type Command interface {
	isCommand()
}

// UpdatePref sets a preference to a JSON-encodable value.
type UpdatePref struct {
	Name  string
	Value any
}

// CreateStory creates a story from props, filling defaults for nil fields.
type CreateStory struct {
	Props StoryProps
}

// UpdateStory applies non-nil props to an existing story.
type UpdateStory struct {
	StoryID string
	Props   StoryProps
}

// DeleteStory deletes a story and its passages.
type DeleteStory struct {
	StoryID string
}

// DuplicateStory copies a story and its passages under a new name, with
// fresh ids throughout.
type DuplicateStory struct {
	StoryID string
	NewName string
}

// ImportStory inserts an externally sourced story and its passages, assigning
// fresh ids while preserving names, text, and geometry.
type ImportStory struct {
	Story *Story
}

// CreatePassage creates a passage in a story, filling defaults for nil props.
type CreatePassage struct {
	StoryID string
	Props   PassageProps
}

// UpdatePassage applies non-nil props to an existing passage.
type UpdatePassage struct {
	StoryID   string
	PassageID string
	Props     PassageProps
}

// DeletePassage deletes a passage from a story.
type DeletePassage struct {
	StoryID   string
	PassageID string
}

// CreateFormat creates a story format record.
type CreateFormat struct {
	Props FormatProps
}

// UpdateFormat applies non-nil props to an existing format.
type UpdateFormat struct {
	FormatID string
	Props    FormatProps
}

// DeleteFormat deletes a format record.
type DeleteFormat struct {
	FormatID string
}

// LoadFormat marks a format loaded and attaches the properties parsed from
// its fetched runtime code.
type LoadFormat struct {
	FormatID   string
	Properties *FormatProperties
}

func (UpdatePref) isCommand()     {}
func (CreateStory) isCommand()    {}
func (UpdateStory) isCommand()    {}
func (DeleteStory) isCommand()    {}
func (DuplicateStory) isCommand() {}
func (ImportStory) isCommand()    {}
func (CreatePassage) isCommand()  {}
func (UpdatePassage) isCommand()  {}
func (DeletePassage) isCommand()  {}
func (CreateFormat) isCommand()   {}
func (UpdateFormat) isCommand()   {}
func (DeleteFormat) isCommand()   {}
func (LoadFormat) isCommand()     {}
