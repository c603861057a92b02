// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toc

import (
	"errors"
	"testing"
)

func TestParse_FlatListing(t *testing.T) {
	root, err := Parse("0 Chapter 1\n1 Section 1.1\n0 Chapter 2\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(root.Children) != 2 {
		t.Fatalf("top-level entries = %d, want 2", len(root.Children))
	}
	ch1 := root.Children[0]
	if ch1.Title != "Chapter 1" || len(ch1.Children) != 1 {
		t.Errorf("first entry = %q with %d children, want Chapter 1 with 1", ch1.Title, len(ch1.Children))
	}
	if ch1.Children[0].Title != "Section 1.1" {
		t.Errorf("nested entry = %q, want Section 1.1", ch1.Children[0].Title)
	}
	ch2 := root.Children[1]
	if ch2.Title != "Chapter 2" || len(ch2.Children) != 0 {
		t.Errorf("second entry = %q with %d children, want Chapter 2 with 0", ch2.Title, len(ch2.Children))
	}
}

func TestParse_DestinationPages(t *testing.T) {
	root, err := Parse("0 Intro #1\n0 Chapter 1 #5\n1 Section #7\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []struct {
		title string
		page  int
	}{
		{"Intro", 1},
		{"Chapter 1", 5},
	}
	for i, w := range want {
		got := root.Children[i]
		if got.Title != w.title || got.Page != w.page {
			t.Errorf("entry %d = %q page %d, want %q page %d", i, got.Title, got.Page, w.title, w.page)
		}
	}
	sec := root.Children[1].Children[0]
	if sec.Title != "Section" || sec.Page != 7 {
		t.Errorf("nested entry = %q page %d, want Section page 7", sec.Title, sec.Page)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "\n", "  \n\t\n"} {
		root, err := Parse(text)
		if err != nil {
			t.Errorf("Parse(%q): %v", text, err)
			continue
		}
		if len(root.Children) != 0 {
			t.Errorf("Parse(%q) yielded %d entries, want 0", text, len(root.Children))
		}
		if Serialize(root) != "" {
			t.Errorf("empty tree serialized to %q", Serialize(root))
		}
	}
}

func TestParse_DepthJumpIsMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"first record below top level", "1 Orphan\n"},
		{"jump of two past open ancestors", "0 Chapter\n2 Deep Section\n"},
		{"jump after pop", "0 A\n1 B\n0 C\n2 D\n"},
		{"bad depth token", "x Chapter\n"},
		{"missing title", "0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse(%q) = %v, want ErrMalformed", tt.text, err)
			}
		})
	}
}

func TestParse_DecreaseToAnyOpenDepth(t *testing.T) {
	root, err := Parse("0 A\n1 B\n2 C\n0 D\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("top-level entries = %d, want 2", len(root.Children))
	}
	if got := root.Children[0].Children[0].Children[0].Title; got != "C" {
		t.Errorf("deep entry = %q, want C", got)
	}
	if root.Children[1].Title != "D" {
		t.Errorf("entry after pop = %q, want D", root.Children[1].Title)
	}
}

func TestSerialize_IndentsPerDepth(t *testing.T) {
	root, err := Parse("0 Chapter 1 #1\n1 Section 1.1 #2\n0 Chapter 2 #9\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := Serialize(root)
	want := "\"Chapter 1\" \"1\"\n  \"Section 1.1\" \"2\"\n\"Chapter 2\" \"9\"\n"
	if got != want {
		t.Errorf("Serialize =\n%q\nwant\n%q", got, want)
	}
}

func TestSerialize_OmitsMissingPage(t *testing.T) {
	root, err := Parse("0 Chapter 1\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := Serialize(root), "\"Chapter 1\"\n"; got != want {
		t.Errorf("Serialize = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"0 Intro #1\n0 Chapter 1 #5\n1 Section 1.1 #7\n2 Subsection #8\n1 Section 1.2 #12\n0 Chapter 2 #20\n",
		"0 Only Entry\n",
		"0 He said \"hi\" #3\n",
	}
	for _, text := range texts {
		first, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		serialized := Serialize(first)

		second, err := Parse(serialized)
		if err != nil {
			t.Fatalf("Parse(Serialize) of %q: %v", text, err)
		}
		assertIsomorphic(t, first, second)

		// Re-serializing must be a fixed point.
		if again := Serialize(second); again != serialized {
			t.Errorf("Serialize not stable:\n%q\nvs\n%q", serialized, again)
		}
	}
}

func TestParse_TabIndentedOutline(t *testing.T) {
	root, err := Parse("\"Intro\" \"1\"\n\"Chapter 1\" \"5\"\n\t\"Section\" \"7\"\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("top-level entries = %d, want 2", len(root.Children))
	}
	sec := root.Children[1].Children[0]
	if sec.Title != "Section" || sec.Page != 7 {
		t.Errorf("nested entry = %q page %d, want Section page 7", sec.Title, sec.Page)
	}
}

func TestCount(t *testing.T) {
	root, err := Parse("0 A\n1 B\n2 C\n0 D\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := root.Count(); got != 4 {
		t.Errorf("Count = %d, want 4", got)
	}
	if got := (*Node)(nil).Count(); got != 0 {
		t.Errorf("nil Count = %d, want 0", got)
	}
}

// assertIsomorphic fails unless both trees have identical titles, pages,
// and child order.
func assertIsomorphic(t *testing.T, a, b *Node) {
	t.Helper()
	if a.Title != b.Title || a.Page != b.Page {
		t.Fatalf("node mismatch: %q/%d vs %q/%d", a.Title, a.Page, b.Title, b.Page)
	}
	if len(a.Children) != len(b.Children) {
		t.Fatalf("children of %q: %d vs %d", a.Title, len(a.Children), len(b.Children))
	}
	for i := range a.Children {
		assertIsomorphic(t, a.Children[i], b.Children[i])
	}
}
