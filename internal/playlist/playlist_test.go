package playlist

import (
	"testing"

	"kanade/internal/catalog"
)

func threeTrackAlbum() *catalog.Album {
	return &catalog.Album{
		ID: "rj100",
		Tracks: []catalog.Track{
			{ID: 1, Title: "T1", AudioFile: "1.mp3"},
			{ID: 2, Title: "T2", AudioFile: "2.mp3"},
			{ID: 3, Title: "T3", AudioFile: "3.mp3"},
		},
	}
}

func TestAdjacency(t *testing.T) {
	a := threeTrackAlbum()

	if next := Next(a, 1); next == nil || next.ID != 2 {
		t.Errorf("Next(1) = %v, want track 2", next)
	}
	if next := Next(a, 3); next != nil {
		t.Errorf("Next(3) = %v, want nil", next)
	}
	if next := Next(a, 99); next != nil {
		t.Errorf("Next(99) = %v, want nil", next)
	}

	if prev := Prev(a, 2); prev == nil || prev.ID != 1 {
		t.Errorf("Prev(2) = %v, want track 1", prev)
	}
	if prev := Prev(a, 1); prev != nil {
		t.Errorf("Prev(1) = %v, want nil", prev)
	}
}

func TestOnTrackEnded(t *testing.T) {
	a := threeTrackAlbum()

	action := OnTrackEnded(a, 2)
	if action.Kind != Advance || action.Next == nil || action.Next.ID != 3 {
		t.Errorf("OnTrackEnded(2) = %+v, want advance to track 3", action)
	}
	if !action.Silent {
		t.Error("automatic advancement must be silent")
	}

	action = OnTrackEnded(a, 3)
	if action.Kind != Finish {
		t.Errorf("OnTrackEnded(3) = %+v, want finish", action)
	}
}

func TestPrevAction(t *testing.T) {
	a := threeTrackAlbum()

	tests := []struct {
		name     string
		trackID  int
		position float64
		want     PrevActionKind
		wantPrev int // 0 when no track expected
	}{
		{"deep into track restarts", 2, 5, Restart, 0},
		{"near start moves back", 2, 1, MoveBack, 1},
		{"boundary restarts", 2, 3.5, Restart, 0},
		{"first track deep restarts", 1, 10, Restart, 0},
		{"first track near start restarts", 1, 1, Restart, 0},
		{"first track at zero stays", 1, 0, Stay, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, prev := PrevAction(a, tt.trackID, tt.position)
			if kind != tt.want {
				t.Errorf("kind = %v, want %v", kind, tt.want)
			}
			if tt.wantPrev == 0 && prev != nil {
				t.Errorf("unexpected prev track %v", prev)
			}
			if tt.wantPrev != 0 && (prev == nil || prev.ID != tt.wantPrev) {
				t.Errorf("prev = %v, want track %d", prev, tt.wantPrev)
			}
		})
	}
}
