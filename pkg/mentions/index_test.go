package mentions

import "testing"

func TestScan(t *testing.T) {
	ix, err := New([]string{"Home", "Secret Room", ""})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	matches := ix.Scan("Go Home, then find the Secret Room.")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", matches)
	}
	if matches[0].Name != "Home" || matches[1].Name != "Secret Room" {
		t.Errorf("match names = %v", matches)
	}

	text := "Go Home now"
	m := ix.Scan(text)[0]
	if text[m.Start:m.End] != "Home" {
		t.Errorf("offsets cover %q", text[m.Start:m.End])
	}
}

func TestScanWholeWordsOnly(t *testing.T) {
	ix, err := New([]string{"Home"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := ix.Scan("Homework is due"); len(got) != 0 {
		t.Errorf("matched inside a longer word: %v", got)
	}
	if got := ix.Scan("Back [[Home]] again"); len(got) != 1 {
		t.Errorf("expected bracketed mention to match: %v", got)
	}
}

func TestEmptyIndex(t *testing.T) {
	ix, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := ix.Scan("anything at all"); got != nil {
		t.Errorf("empty index matched: %v", got)
	}
}
