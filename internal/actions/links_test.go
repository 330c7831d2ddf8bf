package actions

import (
	"errors"
	"sort"
	"testing"

	"github.com/storyweave/goweave/internal/store"
)

func TestChangeLinksInStory(t *testing.T) {
	s, _ := newTestService(t)
	st := makeStory(t, s, "Story")
	a := makePassage(t, s, st.ID, "A", "[[Old]] and [[Show|Old]]", 0, 0)
	b := makePassage(t, s, st.ID, "B", "[[Old<-Back]] plus [[Elsewhere]]", 0, 200)
	c := makePassage(t, s, st.ID, "C", "no links here", 0, 400)

	if err := s.ChangeLinksInStory(st.ID, "Old", "New"); err != nil {
		t.Fatalf("ChangeLinksInStory failed: %v", err)
	}

	got, _ := s.Store().PassageByID(st.ID, a.ID)
	if got.Text != "[[New]] and [[Show|New]]" {
		t.Errorf("passage A text = %q", got.Text)
	}
	got, _ = s.Store().PassageByID(st.ID, b.ID)
	if got.Text != "[[New<-Back]] plus [[Elsewhere]]" {
		t.Errorf("passage B text = %q", got.Text)
	}
	got, _ = s.Store().PassageByID(st.ID, c.ID)
	if got.Text != "no links here" {
		t.Errorf("passage C text = %q", got.Text)
	}
}

func TestChangeLinksInMissingStory(t *testing.T) {
	s, _ := newTestService(t)
	if err := s.ChangeLinksInStory("missing", "Old", "New"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCreateNewlyLinkedPassages(t *testing.T) {
	s, _ := newTestService(t)
	st := makeStory(t, s, "Story")
	source := makePassage(t, s, st.ID, "Source", "", 0, 0)
	mustApply(t, s, store.UpdatePassage{StoryID: st.ID, PassageID: source.ID, Props: store.PassageProps{
		Text: strPtr("[[A]] [[B]]"),
	}})

	if err := s.CreateNewlyLinkedPassages(st.ID, source.ID, "", 0); err != nil {
		t.Fatalf("CreateNewlyLinkedPassages failed: %v", err)
	}

	passages, _ := s.Store().Passages(st.ID)
	if len(passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(passages))
	}

	var names []string
	for _, p := range passages[1:] {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	if names[0] != "A" || names[1] != "B" {
		t.Fatalf("created passages %v, want [A B]", names)
	}

	// Both sit on a row 1.5 heights below the source, side by side and
	// centered under it.
	a, _ := s.Store().PassageByName(st.ID, "A")
	b, _ := s.Store().PassageByName(st.ID, "B")
	wantTop := source.Top + source.Height*1.5
	if a.Top != wantTop || b.Top != wantTop {
		t.Errorf("tops = %v, %v, want %v", a.Top, b.Top, wantTop)
	}
	if b.Left-a.Left != source.Width*1.5 {
		t.Errorf("spacing = %v, want %v", b.Left-a.Left, source.Width*1.5)
	}
	rowCenter := (a.Left + b.Left + b.Width) / 2
	srcCenter := source.Left + source.Width/2
	if rowCenter != srcCenter {
		t.Errorf("row center %v, want %v", rowCenter, srcCenter)
	}

	// Nothing overlaps afterward.
	for i, p := range passages {
		for _, q := range passages[i+1:] {
			if p.Left < q.Left+q.Width && q.Left < p.Left+p.Width &&
				p.Top < q.Top+q.Height && q.Top < p.Top+p.Height {
				t.Errorf("%q overlaps %q", p.Name, q.Name)
			}
		}
	}
}

func TestCreateNewlyLinkedPassagesSkipsKnownTargets(t *testing.T) {
	s, _ := newTestService(t)
	st := makeStory(t, s, "Story")
	makePassage(t, s, st.ID, "Existing", "", 300, 300)
	source := makePassage(t, s, st.ID, "Source", "", 0, 0)
	mustApply(t, s, store.UpdatePassage{StoryID: st.ID, PassageID: source.ID, Props: store.PassageProps{
		Text: strPtr("[[Existing]] [[Seen]] [[Fresh]]"),
	}})

	// "Seen" was already linked before the edit; "Existing" already exists.
	if err := s.CreateNewlyLinkedPassages(st.ID, source.ID, "[[Seen]]", 0); err != nil {
		t.Fatalf("CreateNewlyLinkedPassages failed: %v", err)
	}

	passages, _ := s.Store().Passages(st.ID)
	if len(passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(passages))
	}
	if _, err := s.Store().PassageByName(st.ID, "Fresh"); err != nil {
		t.Errorf("Fresh not created: %v", err)
	}
	if _, err := s.Store().PassageByName(st.ID, "Seen"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Seen should not exist, got %v", err)
	}
}

func TestCreateNewlyLinkedPassagesCustomGeometry(t *testing.T) {
	s, _ := newTestService(t)
	st := makeStory(t, s, "Story")
	source := makePassage(t, s, st.ID, "Source", "", 0, 0)
	mustApply(t, s, store.UpdatePassage{StoryID: st.ID, PassageID: source.ID, Props: store.PassageProps{
		Text:   strPtr("[[Next]]"),
		Top:    f64Ptr(200),
		Left:   f64Ptr(400),
		Height: f64Ptr(200),
	}})

	if err := s.CreateNewlyLinkedPassages(st.ID, source.ID, "", 0); err != nil {
		t.Fatalf("CreateNewlyLinkedPassages failed: %v", err)
	}
	next, err := s.Store().PassageByName(st.ID, "Next")
	if err != nil {
		t.Fatalf("Next not created: %v", err)
	}
	if next.Top != 200+200*1.5 {
		t.Errorf("Next.Top = %v, want %v", next.Top, 200+200*1.5)
	}
	// A single new passage centers directly under the source.
	if next.Left != 400 {
		t.Errorf("Next.Left = %v, want 400", next.Left)
	}
}
