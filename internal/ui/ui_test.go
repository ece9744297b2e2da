package ui

import (
	"path/filepath"
	"testing"

	"kanade/internal/catalog"
	"kanade/internal/state"
)

func testModel(t *testing.T) *model {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cat := &catalog.Catalog{
		Albums: []catalog.Album{
			{ID: "a1", Title: "One", CircleID: "c1", PerformerIDs: []string{"cv1"},
				Tracks: []catalog.Track{{ID: 1, AudioFile: "a1/01.mp3"}}},
			{ID: "a2", Title: "Two", CircleID: "c1", PerformerIDs: []string{"cv2"},
				Tracks: []catalog.Track{{ID: 1, AudioFile: "a2/01.mp3"}}},
			{ID: "a3", Title: "Three", CircleID: "c2", PerformerIDs: []string{"cv1"},
				Tracks: []catalog.Track{{ID: 1, AudioFile: "a3/01.mp3"}}},
		},
		Circles: map[string]catalog.Circle{
			"c1": {ID: "c1", Name: "Alpha"},
			"c2": {ID: "c2", Name: "Beta"},
		},
		Performers: map[string]catalog.Performer{
			"cv1": {ID: "cv1", Name: "Aoi"},
			"cv2": {ID: "cv2", Name: "Hikari"},
		},
	}
	return newModel(Options{Catalog: cat, Store: store})
}

func TestCircleFilterCycles(t *testing.T) {
	m := testModel(t)
	if got := len(m.albums.Items()); got != 3 {
		t.Fatalf("unfiltered browser has %d albums, want 3", got)
	}

	// c1 has two albums, so it leads the tag cloud
	m.cycleCircle()
	if got := len(m.albums.Items()); got != 2 {
		t.Errorf("first circle filter shows %d albums, want 2", got)
	}
	if m.status != "circle: Alpha (2)" {
		t.Errorf("status = %q", m.status)
	}

	m.cycleCircle()
	if got := len(m.albums.Items()); got != 1 {
		t.Errorf("second circle filter shows %d albums, want 1", got)
	}

	// wraps back to no filter
	m.cycleCircle()
	if got := len(m.albums.Items()); got != 3 {
		t.Errorf("after wrap browser has %d albums, want 3", got)
	}
	if m.status != "" {
		t.Errorf("status should clear, got %q", m.status)
	}
}

func TestPerformerFilterCombinesWithCircle(t *testing.T) {
	m := testModel(t)

	m.cyclePerformer() // cv1 leads with two albums
	if got := len(m.albums.Items()); got != 2 {
		t.Fatalf("performer filter shows %d albums, want 2", got)
	}
	if m.status != "performer: Aoi (2)" {
		t.Errorf("status = %q", m.status)
	}

	m.cycleCircle() // only a1 is both c1 and cv1
	items := m.albums.Items()
	if len(items) != 1 {
		t.Fatalf("combined filter shows %d albums, want 1", len(items))
	}
	if item, ok := items[0].(albumItem); !ok || item.album.ID != "a1" {
		t.Errorf("combined filter selected %+v, want a1", items[0])
	}
}
