package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store is the SQLite-backed data store. Reads take the read lock; Apply
// takes the write lock, so commands are applied atomically in dispatch order.
type Store struct {
	mu sync.RWMutex
	db *sqlx.DB
}

// schema defines all tables. Passage iteration order is rowid order, i.e.
// creation order; layout depends on it.
const schema = `
CREATE TABLE IF NOT EXISTS stories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    ifid TEXT NOT NULL DEFAULT '',
    script TEXT NOT NULL DEFAULT '',
    stylesheet TEXT NOT NULL DEFAULT '',
    zoom REAL NOT NULL DEFAULT 1,
    snap_to_grid INTEGER NOT NULL DEFAULT 0,
    story_format TEXT NOT NULL DEFAULT '',
    story_format_version TEXT NOT NULL DEFAULT '',
    tag_colors TEXT NOT NULL DEFAULT '{}',
    last_update INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS passages (
    id TEXT PRIMARY KEY,
    story_id TEXT NOT NULL,
    name TEXT NOT NULL,
    text TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    top REAL NOT NULL DEFAULT 0,
    "left" REAL NOT NULL DEFAULT 0,
    width REAL NOT NULL DEFAULT 100,
    height REAL NOT NULL DEFAULT 100
);

CREATE INDEX IF NOT EXISTS idx_passages_story ON passages(story_id);
CREATE INDEX IF NOT EXISTS idx_passages_name ON passages(story_id, name);

CREATE TABLE IF NOT EXISTS formats (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    version TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    user_added INTEGER NOT NULL DEFAULT 0,
    loaded INTEGER NOT NULL DEFAULT 0,
    properties TEXT
);

CREATE TABLE IF NOT EXISTS prefs (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Open opens a store at the given data source name. Use ":memory:" for an
// ephemeral store.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewMemory opens an in-memory store. The standard test fixture.
func NewMemory() (*Store, error) {
	return Open(":memory:")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// Row mapping
// =============================================================================

type storyRow struct {
	ID                 string  `db:"id"`
	Name               string  `db:"name"`
	IFID               string  `db:"ifid"`
	Script             string  `db:"script"`
	Stylesheet         string  `db:"stylesheet"`
	Zoom               float64 `db:"zoom"`
	SnapToGrid         bool    `db:"snap_to_grid"`
	StoryFormat        string  `db:"story_format"`
	StoryFormatVersion string  `db:"story_format_version"`
	TagColors          string  `db:"tag_colors"`
	LastUpdate         int64   `db:"last_update"`
}

type passageRow struct {
	ID      string  `db:"id"`
	StoryID string  `db:"story_id"`
	Name    string  `db:"name"`
	Text    string  `db:"text"`
	Tags    string  `db:"tags"`
	Top     float64 `db:"top"`
	Left    float64 `db:"left"`
	Width   float64 `db:"width"`
	Height  float64 `db:"height"`
}

type formatRow struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Version    string         `db:"version"`
	URL        string         `db:"url"`
	UserAdded  bool           `db:"user_added"`
	Loaded     bool           `db:"loaded"`
	Properties sql.NullString `db:"properties"`
}

func (r storyRow) model() *Story {
	st := &Story{
		ID:                 r.ID,
		Name:               r.Name,
		IFID:               r.IFID,
		Script:             r.Script,
		Stylesheet:         r.Stylesheet,
		Zoom:               r.Zoom,
		SnapToGrid:         r.SnapToGrid,
		StoryFormat:        r.StoryFormat,
		StoryFormatVersion: r.StoryFormatVersion,
		TagColors:          map[string]string{},
		LastUpdate:         r.LastUpdate,
	}
	// Corrupt JSON degrades to an empty map rather than failing the read.
	_ = json.Unmarshal([]byte(r.TagColors), &st.TagColors)
	return st
}

func (r passageRow) model() *Passage {
	p := &Passage{
		ID:      r.ID,
		StoryID: r.StoryID,
		Name:    r.Name,
		Text:    r.Text,
		Top:     r.Top,
		Left:    r.Left,
		Width:   r.Width,
		Height:  r.Height,
	}
	_ = json.Unmarshal([]byte(r.Tags), &p.Tags)
	return p
}

func (r formatRow) model() *StoryFormat {
	f := &StoryFormat{
		ID:        r.ID,
		Name:      r.Name,
		Version:   r.Version,
		URL:       r.URL,
		UserAdded: r.UserAdded,
		Loaded:    r.Loaded,
	}
	if r.Properties.Valid && r.Properties.String != "" {
		var props FormatProperties
		if err := json.Unmarshal([]byte(r.Properties.String), &props); err == nil {
			f.Properties = &props
		}
	}
	return f
}

func marshalJSON(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}

// =============================================================================
// Reads
// =============================================================================

// Stories returns every story with its passages attached.
func (s *Store) Stories() ([]*Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []storyRow
	if err := s.db.Select(&rows, `SELECT * FROM stories ORDER BY rowid`); err != nil {
		return nil, err
	}
	stories := make([]*Story, 0, len(rows))
	for _, r := range rows {
		st := r.model()
		passages, err := s.passagesLocked(st.ID)
		if err != nil {
			return nil, err
		}
		st.Passages = passages
		stories = append(stories, st)
	}
	return stories, nil
}

// StoryByID returns one story with its passages attached.
func (s *Store) StoryByID(id string) (*Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storyLocked(id)
}

func (s *Store) storyLocked(id string) (*Story, error) {
	var row storyRow
	if err := s.db.Get(&row, `SELECT * FROM stories WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: story %q", ErrNotFound, id)
		}
		return nil, err
	}
	st := row.model()
	passages, err := s.passagesLocked(id)
	if err != nil {
		return nil, err
	}
	st.Passages = passages
	return st, nil
}

// Passages returns a story's passages in creation order.
func (s *Store) Passages(storyID string) ([]*Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passagesLocked(storyID)
}

func (s *Store) passagesLocked(storyID string) ([]*Passage, error) {
	var rows []passageRow
	err := s.db.Select(&rows, `SELECT * FROM passages WHERE story_id = ? ORDER BY rowid`, storyID)
	if err != nil {
		return nil, err
	}
	passages := make([]*Passage, 0, len(rows))
	for _, r := range rows {
		passages = append(passages, r.model())
	}
	return passages, nil
}

// PassageByID returns one passage of a story.
func (s *Store) PassageByID(storyID, passageID string) (*Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passageLocked(storyID, passageID)
}

func (s *Store) passageLocked(storyID, passageID string) (*Passage, error) {
	var row passageRow
	err := s.db.Get(&row, `SELECT * FROM passages WHERE story_id = ? AND id = ?`, storyID, passageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: passage %q in story %q", ErrNotFound, passageID, storyID)
		}
		return nil, err
	}
	return row.model(), nil
}

// PassageByName returns the first passage of a story with the given name.
func (s *Store) PassageByName(storyID, name string) (*Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row passageRow
	err := s.db.Get(&row,
		`SELECT * FROM passages WHERE story_id = ? AND name = ? ORDER BY rowid LIMIT 1`,
		storyID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: passage named %q in story %q", ErrNotFound, name, storyID)
		}
		return nil, err
	}
	return row.model(), nil
}

// Formats returns the installed format catalog in creation order.
func (s *Store) Formats() ([]*StoryFormat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []formatRow
	if err := s.db.Select(&rows, `SELECT * FROM formats ORDER BY rowid`); err != nil {
		return nil, err
	}
	formats := make([]*StoryFormat, 0, len(rows))
	for _, r := range rows {
		formats = append(formats, r.model())
	}
	return formats, nil
}

// FormatByID returns one format record.
func (s *Store) FormatByID(id string) (*StoryFormat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formatLocked(id)
}

func (s *Store) formatLocked(id string) (*StoryFormat, error) {
	var row formatRow
	if err := s.db.Get(&row, `SELECT * FROM formats WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: format %q", ErrNotFound, id)
		}
		return nil, err
	}
	return row.model(), nil
}

// Pref returns the raw JSON value of a preference.
func (s *Store) Pref(name string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	if err := s.db.Get(&value, `SELECT value FROM prefs WHERE name = ?`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: preference %q", ErrNotFound, name)
		}
		return nil, err
	}
	return json.RawMessage(value), nil
}

// FormatPrefValue decodes a preference as a {name, version} format reference.
// Returns ErrValidation when the stored value has a different shape.
func (s *Store) FormatPrefValue(name string) (FormatPref, error) {
	raw, err := s.Pref(name)
	if err != nil {
		return FormatPref{}, err
	}
	var pref FormatPref
	if err := json.Unmarshal(raw, &pref); err != nil || pref.Name == "" || pref.Version == "" {
		return FormatPref{}, fmt.Errorf("%w: preference %q is not a format reference", ErrValidation, name)
	}
	return pref, nil
}

// =============================================================================
// Apply — the single mutation entry point
// =============================================================================

// Apply executes one command against the store.
func (s *Store) Apply(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c := cmd.(type) {
	case UpdatePref:
		return s.updatePref(c)
	case CreateStory:
		return s.createStory(c)
	case UpdateStory:
		return s.updateStory(c)
	case DeleteStory:
		return s.deleteStory(c)
	case DuplicateStory:
		return s.duplicateStory(c)
	case ImportStory:
		return s.importStory(c)
	case CreatePassage:
		return s.createPassage(c)
	case UpdatePassage:
		return s.updatePassage(c)
	case DeletePassage:
		return s.deletePassage(c)
	case CreateFormat:
		return s.createFormat(c)
	case UpdateFormat:
		return s.updateFormat(c)
	case DeleteFormat:
		return s.deleteFormat(c)
	case LoadFormat:
		return s.loadFormat(c)
	default:
		return fmt.Errorf("%w: unknown command %T", ErrValidation, cmd)
	}
}

func (s *Store) updatePref(c UpdatePref) error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty preference name", ErrValidation)
	}
	value, err := json.Marshal(c.Value)
	if err != nil {
		return fmt.Errorf("%w: preference %q: %v", ErrValidation, c.Name, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO prefs (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		c.Name, string(value))
	return err
}

func (s *Store) createStory(c CreateStory) error {
	st := Story{
		ID:        uuid.NewString(),
		Name:      "Untitled Story",
		IFID:      uuid.NewString(),
		Zoom:      1,
		TagColors: map[string]string{},
	}
	applyStoryProps(&st, c.Props)
	return s.insertStory(&st)
}

func applyStoryProps(st *Story, p StoryProps) {
	if p.Name != nil {
		st.Name = *p.Name
	}
	if p.IFID != nil {
		st.IFID = *p.IFID
	}
	if p.Script != nil {
		st.Script = *p.Script
	}
	if p.Stylesheet != nil {
		st.Stylesheet = *p.Stylesheet
	}
	if p.Zoom != nil {
		st.Zoom = *p.Zoom
	}
	if p.SnapToGrid != nil {
		st.SnapToGrid = *p.SnapToGrid
	}
	if p.StoryFormat != nil {
		st.StoryFormat = *p.StoryFormat
	}
	if p.StoryFormatVersion != nil {
		st.StoryFormatVersion = *p.StoryFormatVersion
	}
	if p.TagColors != nil {
		st.TagColors = p.TagColors
	}
}

func (s *Store) insertStory(st *Story) error {
	_, err := s.db.Exec(`
		INSERT INTO stories (id, name, ifid, script, stylesheet, zoom, snap_to_grid,
			story_format, story_format_version, tag_colors, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Name, st.IFID, st.Script, st.Stylesheet, st.Zoom, st.SnapToGrid,
		st.StoryFormat, st.StoryFormatVersion, marshalJSON(st.TagColors, "{}"),
		time.Now().Unix())
	return err
}

func (s *Store) updateStory(c UpdateStory) error {
	st, err := s.storyLocked(c.StoryID)
	if err != nil {
		return err
	}
	applyStoryProps(st, c.Props)
	_, err = s.db.Exec(`
		UPDATE stories SET name = ?, ifid = ?, script = ?, stylesheet = ?, zoom = ?,
			snap_to_grid = ?, story_format = ?, story_format_version = ?,
			tag_colors = ?, last_update = ?
		WHERE id = ?`,
		st.Name, st.IFID, st.Script, st.Stylesheet, st.Zoom, st.SnapToGrid,
		st.StoryFormat, st.StoryFormatVersion, marshalJSON(st.TagColors, "{}"),
		time.Now().Unix(), st.ID)
	return err
}

func (s *Store) deleteStory(c DeleteStory) error {
	res, err := s.db.Exec(`DELETE FROM stories WHERE id = ?`, c.StoryID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: story %q", ErrNotFound, c.StoryID)
	}
	_, err = s.db.Exec(`DELETE FROM passages WHERE story_id = ?`, c.StoryID)
	return err
}

func (s *Store) duplicateStory(c DuplicateStory) error {
	st, err := s.storyLocked(c.StoryID)
	if err != nil {
		return err
	}
	st.ID = uuid.NewString()
	st.IFID = uuid.NewString()
	st.Name = c.NewName
	if err := s.insertStory(st); err != nil {
		return err
	}
	for _, p := range st.Passages {
		dup := *p
		dup.ID = uuid.NewString()
		dup.StoryID = st.ID
		if err := s.insertPassage(&dup); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) importStory(c ImportStory) error {
	if c.Story == nil {
		return fmt.Errorf("%w: nil story", ErrValidation)
	}
	st := *c.Story
	st.ID = uuid.NewString()
	if st.IFID == "" {
		st.IFID = uuid.NewString()
	}
	if st.Zoom == 0 {
		st.Zoom = 1
	}
	if err := s.insertStory(&st); err != nil {
		return err
	}
	for _, p := range c.Story.Passages {
		imp := *p
		imp.ID = uuid.NewString()
		imp.StoryID = st.ID
		if imp.Width == 0 {
			imp.Width = DefaultPassageWidth
		}
		if imp.Height == 0 {
			imp.Height = DefaultPassageHeight
		}
		if err := s.insertPassage(&imp); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) createPassage(c CreatePassage) error {
	if _, err := s.storyLocked(c.StoryID); err != nil {
		return err
	}
	p := Passage{
		ID:      uuid.NewString(),
		StoryID: c.StoryID,
		Name:    DefaultPassageName,
		Width:   DefaultPassageWidth,
		Height:  DefaultPassageHeight,
	}
	applyPassageProps(&p, c.Props)
	return s.insertPassage(&p)
}

func applyPassageProps(p *Passage, props PassageProps) {
	if props.Name != nil {
		p.Name = *props.Name
	}
	if props.Text != nil {
		p.Text = *props.Text
	}
	if props.Tags != nil {
		p.Tags = props.Tags
	}
	if props.Top != nil {
		p.Top = *props.Top
	}
	if props.Left != nil {
		p.Left = *props.Left
	}
	if props.Width != nil {
		p.Width = *props.Width
	}
	if props.Height != nil {
		p.Height = *props.Height
	}
}

func (s *Store) insertPassage(p *Passage) error {
	_, err := s.db.Exec(`
		INSERT INTO passages (id, story_id, name, text, tags, top, "left", width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.StoryID, p.Name, p.Text, marshalJSON(p.Tags, "[]"),
		p.Top, p.Left, p.Width, p.Height)
	return err
}

func (s *Store) updatePassage(c UpdatePassage) error {
	p, err := s.passageLocked(c.StoryID, c.PassageID)
	if err != nil {
		return err
	}
	applyPassageProps(p, c.Props)
	_, err = s.db.Exec(`
		UPDATE passages SET name = ?, text = ?, tags = ?, top = ?, "left" = ?,
			width = ?, height = ?
		WHERE story_id = ? AND id = ?`,
		p.Name, p.Text, marshalJSON(p.Tags, "[]"), p.Top, p.Left,
		p.Width, p.Height, c.StoryID, c.PassageID)
	return err
}

func (s *Store) deletePassage(c DeletePassage) error {
	res, err := s.db.Exec(`DELETE FROM passages WHERE story_id = ? AND id = ?`,
		c.StoryID, c.PassageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: passage %q in story %q", ErrNotFound, c.PassageID, c.StoryID)
	}
	return nil
}

func (s *Store) createFormat(c CreateFormat) error {
	f := StoryFormat{ID: uuid.NewString()}
	applyFormatProps(&f, c.Props)
	if f.Name == "" {
		return fmt.Errorf("%w: format name required", ErrValidation)
	}
	_, err := s.db.Exec(`
		INSERT INTO formats (id, name, version, url, user_added, loaded, properties)
		VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		f.ID, f.Name, f.Version, f.URL, f.UserAdded, f.Loaded)
	return err
}

func applyFormatProps(f *StoryFormat, props FormatProps) {
	if props.Name != nil {
		f.Name = *props.Name
	}
	if props.Version != nil {
		f.Version = *props.Version
	}
	if props.URL != nil {
		f.URL = *props.URL
	}
	if props.UserAdded != nil {
		f.UserAdded = *props.UserAdded
	}
	if props.Loaded != nil {
		f.Loaded = *props.Loaded
	}
}

func (s *Store) updateFormat(c UpdateFormat) error {
	f, err := s.formatLocked(c.FormatID)
	if err != nil {
		return err
	}
	applyFormatProps(f, c.Props)
	var properties any
	if f.Properties != nil {
		properties = marshalJSON(f.Properties, "")
	}
	_, err = s.db.Exec(`
		UPDATE formats SET name = ?, version = ?, url = ?, user_added = ?,
			loaded = ?, properties = ?
		WHERE id = ?`,
		f.Name, f.Version, f.URL, f.UserAdded, f.Loaded, properties, c.FormatID)
	return err
}

func (s *Store) deleteFormat(c DeleteFormat) error {
	res, err := s.db.Exec(`DELETE FROM formats WHERE id = ?`, c.FormatID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: format %q", ErrNotFound, c.FormatID)
	}
	return nil
}

func (s *Store) loadFormat(c LoadFormat) error {
	if _, err := s.formatLocked(c.FormatID); err != nil {
		return err
	}
	_, err := s.db.Exec(`UPDATE formats SET loaded = 1, properties = ? WHERE id = ?`,
		marshalJSON(c.Properties, "null"), c.FormatID)
	return err
}
