// Package actions implements the editing operations of the authoring tool:
// passage layout, link rewriting, auto-linking, format and story repair, and
// remote format install/load. Every operation reads the store's current
// snapshot and issues commands through Store.Apply.
package actions

import (
	"errors"

	"go.uber.org/zap"

	"github.com/storyweave/goweave/internal/store"
	"github.com/storyweave/goweave/pkg/version"
)

var (
	// ErrFormatExists reports an install rejected because the exact
	// (name, version) is already in the catalog.
	ErrFormatExists = errors.New("format version already installed")

	// ErrFormatSuperseded reports an install rejected because an installed
	// format of the same name and major version is at least as new.
	ErrFormatSuperseded = errors.New("format superseded by installed version")
)

// Service bundles the store, logger, and fetch capability the operations
// share.
type Service struct {
	store *store.Store
	log   *zap.Logger
	fetch ScriptFetcher
}

// New creates a Service. fetch may be nil when no install/load operation
// will be used.
func New(st *store.Store, log *zap.Logger, fetch ScriptFetcher) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log, fetch: fetch}
}

// Store exposes the underlying store for callers that need reads.
func (s *Service) Store() *store.Store { return s.store }

// formatEntries projects the catalog into version resolver entries.
func formatEntries(formats []*store.StoryFormat) []version.Entry {
	entries := make([]version.Entry, 0, len(formats))
	for _, f := range formats {
		entries = append(entries, version.Entry{ID: f.ID, Name: f.Name, Version: f.Version})
	}
	return entries
}
