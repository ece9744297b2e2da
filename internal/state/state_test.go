package state

import (
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProgressMonotonic(t *testing.T) {
	s := testStore(t)

	// below the save floor: no record
	if err := s.SaveProgress("a", 1, 3, 600); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Progress("a", 1); ok {
		t.Error("position below 5s should not be saved")
	}

	// unknown duration: no record
	s.SaveProgress("a", 1, 100, 0)
	if _, ok, _ := s.Progress("a", 1); ok {
		t.Error("unknown duration should not be saved")
	}

	s.SaveProgress("a", 1, 100, 600)
	rec, ok, err := s.Progress("a", 1)
	if err != nil || !ok {
		t.Fatalf("Progress() = %v %v %v", rec, ok, err)
	}
	if rec.Position != 100 {
		t.Errorf("position = %v, want 100", rec.Position)
	}

	// a stale lower position never rewinds the record
	s.SaveProgress("a", 1, 50, 600)
	rec, _, _ = s.Progress("a", 1)
	if rec.Position != 100 {
		t.Errorf("stale save rewound position to %v", rec.Position)
	}

	// equal and forward positions write
	s.SaveProgress("a", 1, 100, 600)
	s.SaveProgress("a", 1, 180, 600)
	rec, _, _ = s.Progress("a", 1)
	if rec.Position != 180 {
		t.Errorf("position = %v, want 180", rec.Position)
	}
}

func TestMarkCompletedWins(t *testing.T) {
	s := testStore(t)

	s.SaveProgress("a", 1, 500, 600)
	if err := s.MarkCompleted("a", 1); err != nil {
		t.Fatal(err)
	}

	rec, ok, _ := s.Progress("a", 1)
	if !ok || !rec.Completed {
		t.Fatalf("record should be completed: %+v", rec)
	}
	if rec.Position != 0 {
		t.Errorf("completion should drop the position, got %v", rec.Position)
	}

	// a late in-flight save must not resurrect the position
	s.SaveProgress("a", 1, 550, 600)
	rec, _, _ = s.Progress("a", 1)
	if !rec.Completed || rec.Position != 0 {
		t.Errorf("save after completion overwrote the record: %+v", rec)
	}

	// completing a never-played track works too
	if err := s.MarkCompleted("b", 2); err != nil {
		t.Fatal(err)
	}
	if rec, ok, _ := s.Progress("b", 2); !ok || !rec.Completed {
		t.Errorf("fresh completion missing: %+v", rec)
	}
}

func TestLatestActivity(t *testing.T) {
	s := testStore(t)

	if got := s.LatestActivity("a"); got != 0 {
		t.Errorf("never-played album activity = %d, want 0", got)
	}

	s.SaveProgress("a", 1, 60, 600)
	if got := s.LatestActivity("a"); got == 0 {
		t.Error("activity should be set after a save")
	}
}

func TestHistoryDedupAndCap(t *testing.T) {
	s := testStore(t)

	s.RecordPlay("albumA", 1)
	s.RecordPlay("albumB", 1)
	s.RecordPlay("albumA", 1) // replay moves to front, no duplicate

	entries, err := s.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].AlbumID != "albumA" {
		t.Errorf("front = %s, want albumA", entries[0].AlbumID)
	}

	// exceed the cap
	for _, id := range []string{"c", "d", "e", "f"} {
		s.RecordPlay(id, 1)
	}
	entries, _ = s.History()
	if len(entries) != 5 {
		t.Fatalf("history should be capped at 5, got %d", len(entries))
	}
	if entries[0].AlbumID != "f" {
		t.Errorf("front = %s, want f", entries[0].AlbumID)
	}
	for _, e := range entries {
		if e.AlbumID == "albumA" {
			t.Error("oldest entry should have been evicted")
		}
	}
}

func TestPrefs(t *testing.T) {
	s := testStore(t)

	if got := s.PlaybackRate(); got != 1.0 {
		t.Errorf("default rate = %v, want 1", got)
	}
	s.SetPlaybackRate(1.5)
	if got := s.PlaybackRate(); got != 1.5 {
		t.Errorf("rate = %v, want 1.5", got)
	}

	if !s.SubtitlesEnabled() {
		t.Error("subtitles should default to enabled")
	}
	s.SetSubtitlesEnabled(false)
	if s.SubtitlesEnabled() {
		t.Error("subtitle toggle did not persist")
	}

	s.SetVolume(0.4)
	if got := s.Volume(); got != 0.4 {
		t.Errorf("volume = %v, want 0.4", got)
	}

	if _, _, ok := s.LastPlayed(); ok {
		t.Error("last played should start unset")
	}
	s.SetLastPlayed("rj001", 3)
	album, track, ok := s.LastPlayed()
	if !ok || album != "rj001" || track != 3 {
		t.Errorf("LastPlayed = %s %d %v", album, track, ok)
	}
}

func TestRatings(t *testing.T) {
	s := testStore(t)

	if err := s.SetRating("a", 6); err == nil {
		t.Error("rating 6 should be rejected")
	}
	if err := s.SetRating("a", 4); err != nil {
		t.Fatal(err)
	}
	if r, ok := s.Rating("a"); !ok || r != 4 {
		t.Errorf("Rating = %d %v, want 4", r, ok)
	}
	s.SetRating("a", 2)
	if r, _ := s.Rating("a"); r != 2 {
		t.Errorf("re-rating = %d, want 2", r)
	}
	if _, ok := s.Rating("never"); ok {
		t.Error("unrated album should report no rating")
	}
}

func TestUnlocked(t *testing.T) {
	s := testStore(t)

	if s.IsUnlocked("rj002") {
		t.Error("album should start locked")
	}
	s.Unlock("rj002")
	if !s.IsUnlocked("rj002") {
		t.Error("unlock did not persist")
	}
	// unlocking twice is fine
	if err := s.Unlock("rj002"); err != nil {
		t.Errorf("repeat unlock errored: %v", err)
	}
}
