package actions

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/storyweave/goweave/internal/store"
)

// stubFetcher serves canned format properties keyed by URL.
type stubFetcher struct {
	props map[string]*store.FormatProperties
	calls int
}

func (f *stubFetcher) FetchScript(_ context.Context, url string) (*store.FormatProperties, error) {
	f.calls++
	p, ok := f.props[url]
	if !ok {
		return nil, fmt.Errorf("fetch format script: no such url %q", url)
	}
	cp := *p
	return &cp, nil
}

func newTestService(t *testing.T) (*Service, *stubFetcher) {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	fetcher := &stubFetcher{props: map[string]*store.FormatProperties{}}
	return New(st, zap.NewNop(), fetcher), fetcher
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func mustApply(t *testing.T, s *Service, cmd store.Command) {
	t.Helper()
	if err := s.Store().Apply(cmd); err != nil {
		t.Fatalf("Apply(%T) failed: %v", cmd, err)
	}
}

func makeStory(t *testing.T, s *Service, name string) *store.Story {
	t.Helper()
	mustApply(t, s, store.CreateStory{Props: store.StoryProps{Name: &name}})
	stories, err := s.Store().Stories()
	if err != nil {
		t.Fatalf("Stories failed: %v", err)
	}
	for _, st := range stories {
		if st.Name == name {
			return st
		}
	}
	t.Fatalf("story %q missing after create", name)
	return nil
}

func makePassage(t *testing.T, s *Service, storyID, name, text string, top, left float64) *store.Passage {
	t.Helper()
	mustApply(t, s, store.CreatePassage{StoryID: storyID, Props: store.PassageProps{
		Name: &name,
		Text: &text,
		Top:  &top,
		Left: &left,
	}})
	p, err := s.Store().PassageByName(storyID, name)
	if err != nil {
		t.Fatalf("PassageByName(%q) failed: %v", name, err)
	}
	return p
}

func installFormat(t *testing.T, s *Service, name, version, url string) {
	t.Helper()
	mustApply(t, s, store.CreateFormat{Props: store.FormatProps{
		Name:    &name,
		Version: &version,
		URL:     &url,
	}})
}
