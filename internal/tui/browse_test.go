package tui

import (
	"errors"
	"strings"
	"testing"

	"oakview/internal/api"
)

func testListing() *api.Listing {
	return &api.Listing{
		Folders: []api.Folder{
			{Name: "site-a", Prefix: "site-a/"},
			{Name: "site-b", Prefix: "site-b/"},
		},
		Files: []api.File{
			{Name: "notes.txt", Key: "notes.txt", Size: 120},
			{Name: "capture.mcap", Key: "run-7/capture.mcap", Size: 5 << 20},
		},
	}
}

func TestBrowse_enter_descends_into_folder(t *testing.T) {
	b := newBrowseModel()
	b.setListing("", testListing(), nil)

	action, arg := b.enter()
	if action != browseDescend || arg != "site-a/" {
		t.Errorf("enter = (%v, %q), want descend into site-a/", action, arg)
	}
}

func TestBrowse_enter_opens_recording_for_mcap(t *testing.T) {
	b := newBrowseModel()
	b.setListing("site-a/run-7/", testListing(), nil)
	b.cursor = 3 // capture.mcap

	action, arg := b.enter()
	if action != browseOpen {
		t.Fatalf("action = %v, want open", action)
	}
	if arg != "site-a/run-7" {
		t.Errorf("recording ref = %q, want the prefix without trailing slash", arg)
	}
}

func TestBrowse_enter_ignores_other_files(t *testing.T) {
	b := newBrowseModel()
	b.setListing("", testListing(), nil)
	b.cursor = 2 // notes.txt

	if action, _ := b.enter(); action != browseNone {
		t.Errorf("action = %v, non-mcap files should do nothing", action)
	}
}

func TestBrowse_cursor_clamped_to_listing(t *testing.T) {
	b := newBrowseModel()
	b.setListing("", testListing(), nil)

	b.moveUp()
	if b.cursor != 0 {
		t.Errorf("cursor = %d, want 0", b.cursor)
	}
	for i := 0; i < 10; i++ {
		b.moveDown()
	}
	if b.cursor != 3 {
		t.Errorf("cursor = %d, want last item 3", b.cursor)
	}
}

func TestBrowse_push_pop_tracks_parents(t *testing.T) {
	b := newBrowseModel()
	b.setListing("", testListing(), nil)

	b.push()
	b.setListing("site-a/", testListing(), nil)
	b.push()
	b.setListing("site-a/run-7/", testListing(), nil)

	parent, ok := b.pop()
	if !ok || parent != "site-a/" {
		t.Errorf("pop = (%q, %v), want site-a/", parent, ok)
	}
	parent, ok = b.pop()
	if !ok || parent != "" {
		t.Errorf("pop = (%q, %v), want root", parent, ok)
	}
	if _, ok := b.pop(); ok {
		t.Error("pop at root should report nothing to pop")
	}
}

func TestBrowse_error_shown_and_cleared(t *testing.T) {
	b := newBrowseModel()
	b.layout(80, 24)
	b.setListing("", nil, errors.New("connection refused"))

	if !strings.Contains(b.view(), "connection refused") {
		t.Error("browse error should be rendered")
	}

	b.setListing("", testListing(), nil)
	if strings.Contains(b.view(), "connection refused") {
		t.Error("a successful listing should clear the error")
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := humanSize(tt.n); got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
