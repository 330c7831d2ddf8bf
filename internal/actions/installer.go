package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/storyweave/goweave/internal/store"
	"github.com/storyweave/goweave/pkg/version"
)

// FetchTimeout bounds a single format script fetch. No retry is attempted;
// callers may re-invoke.
const FetchTimeout = 2000 * time.Millisecond

// ScriptFetcher fetches a story format script by URL and returns its parsed
// properties. Injected so install/load logic is testable without a network.
type ScriptFetcher interface {
	FetchScript(ctx context.Context, url string) (*store.FormatProperties, error)
}

// HTTPFetcher fetches format scripts over HTTP with the standard timeout.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) FetchScript(ctx context.Context, url string) (*store.FormatProperties, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch format script: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch format script: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch format script: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch format script: %w", err)
	}
	return ParseFormatSource(string(body))
}

// Format scripts are JSONP: window.storyFormat({...}).
var jsonpPattern = regexp.MustCompile(`(?s)window\.storyFormat\(\s*(\{.*\})\s*\)`)

// ParseFormatSource extracts format properties from a format script, either
// a bare JSON object or the usual JSONP wrapper.
func ParseFormatSource(src string) (*store.FormatProperties, error) {
	payload := strings.TrimSpace(src)
	if m := jsonpPattern.FindStringSubmatch(src); m != nil {
		payload = m[1]
	}

	var props store.FormatProperties
	if err := json.Unmarshal([]byte(payload), &props); err != nil {
		return nil, fmt.Errorf("parse format script: %w", err)
	}
	if props.Name == "" || props.Version == "" {
		return nil, fmt.Errorf("parse format script: missing name or version")
	}
	return &props, nil
}

// CreateFormatFromURL fetches format metadata from url and installs it as a
// user-added, not-yet-loaded format. The install is rejected when the exact
// version is already present (ErrFormatExists) or when an installed format of
// the same name and major version is at least as new (ErrFormatSuperseded).
func (s *Service) CreateFormatFromURL(ctx context.Context, url string) (*store.StoryFormat, error) {
	props, err := s.fetch.FetchScript(ctx, url)
	if err != nil {
		return nil, err
	}

	fetched, err := version.Parse(props.Version)
	if err != nil {
		return nil, err
	}

	formats, err := s.store.Formats()
	if err != nil {
		return nil, err
	}
	for _, f := range formats {
		if f.Name != props.Name {
			continue
		}
		if f.Version == props.Version {
			return nil, fmt.Errorf("%w: %s %s", ErrFormatExists, f.Name, f.Version)
		}
		v, err := version.Parse(f.Version)
		if err != nil || v.Major != fetched.Major {
			continue
		}
		if !fetched.NewerInMajor(v) {
			return nil, fmt.Errorf("%w: %s %s (installed %s)",
				ErrFormatSuperseded, props.Name, props.Version, f.Version)
		}
	}

	userAdded := true
	err = s.store.Apply(store.CreateFormat{Props: store.FormatProps{
		Name:      &props.Name,
		Version:   &props.Version,
		URL:       &url,
		UserAdded: &userAdded,
	}})
	if err != nil {
		return nil, err
	}

	formats, err = s.store.Formats()
	if err != nil {
		return nil, err
	}
	created := findFormat(formats, props.Name, props.Version)
	if created == nil {
		return nil, fmt.Errorf("%w: format %s %s after create", store.ErrNotFound, props.Name, props.Version)
	}
	return created, nil
}

// LoadFormat resolves name/requested to the newest installed format of that
// major lineage and ensures its runtime code is loaded. Already-loaded
// formats resolve immediately without a fetch.
func (s *Service) LoadFormat(ctx context.Context, name, requested string) (*store.StoryFormat, error) {
	formats, err := s.store.Formats()
	if err != nil {
		return nil, err
	}

	selected, err := version.SelectByMajor(formatEntries(formats), name, requested)
	if err != nil {
		return nil, err
	}
	format, err := s.store.FormatByID(selected.ID)
	if err != nil {
		return nil, err
	}
	if format.Loaded {
		return format, nil
	}

	props, err := s.fetch.FetchScript(ctx, format.URL)
	if err != nil {
		return nil, err
	}
	if err := s.store.Apply(store.LoadFormat{FormatID: format.ID, Properties: props}); err != nil {
		return nil, err
	}
	return s.store.FormatByID(format.ID)
}
