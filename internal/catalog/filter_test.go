package catalog

import "testing"

func TestFilterApply(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty matches all", Filter{}, []string{"rj001", "rj002"}},
		{"by circle", Filter{CircleID: "c2"}, []string{"rj002"}},
		{"by performer", Filter{Performer: "cv2"}, []string{"rj001"}},
		{"performer on both", Filter{Performer: "cv1"}, []string{"rj001", "rj002"}},
		{"search title", Filter{Search: "midnight"}, []string{"rj001"}},
		{"search circle name", Filter{Search: "kage"}, []string{"rj002"}},
		{"search performer name", Filter{Search: "hikari"}, []string{"rj001"}},
		{"search tag", Filter{Search: "healing"}, []string{"rj001"}},
		{"search japanese title", Filter{Search: "真夜中"}, []string{"rj001"}},
		{"combined", Filter{CircleID: "c1", Search: "radio"}, []string{"rj001"}},
		{"no match", Filter{Search: "zzzzzz"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(c)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d albums, want %d", len(got), len(tt.want))
			}
			for i, a := range got {
				if a.ID != tt.want[i] {
					t.Errorf("album[%d] = %q, want %q", i, a.ID, tt.want[i])
				}
			}
		})
	}
}

func TestCounts(t *testing.T) {
	c := testCatalog(t)

	circles := c.CircleCounts()
	if len(circles) != 2 {
		t.Fatalf("expected 2 circles, got %d", len(circles))
	}

	performers := c.PerformerCounts()
	if len(performers) != 2 {
		t.Fatalf("expected 2 performers, got %d", len(performers))
	}
	// cv1 appears on both albums and must sort first
	if performers[0].ID != "cv1" || performers[0].Count != 2 {
		t.Errorf("top performer = %+v, want cv1 with count 2", performers[0])
	}
}

func TestSortRecent(t *testing.T) {
	c := testCatalog(t)
	albums := Filter{}.Apply(c)

	activity := map[string]int64{"rj001": 100, "rj002": 200}
	SortRecent(albums, func(id string) int64 { return activity[id] })

	if albums[0].ID != "rj002" {
		t.Errorf("most recent first = %q, want rj002", albums[0].ID)
	}
}

func TestResolver(t *testing.T) {
	tests := []struct {
		base     string
		relative string
		want     string
	}{
		{"https://cdn.example.com/media/", "rj001/02 メイン.mp3", "https://cdn.example.com/media/rj001/02%20%E3%83%A1%E3%82%A4%E3%83%B3.mp3"},
		{"https://cdn.example.com", "a/b.mp3", "https://cdn.example.com/a/b.mp3"},
		{"/srv/media", "rj001/01.mp3", "/srv/media/rj001/01.mp3"},
		{"https://cdn.example.com", "https://other.example.com/x.mp3", "https://other.example.com/x.mp3"},
	}

	for _, tt := range tests {
		r := NewResolver(tt.base)
		if got := r.Resolve(tt.relative); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.relative, got, tt.want)
		}
	}

	if !NewResolver("https://x.example.com").Remote() {
		t.Error("https base should be remote")
	}
	if NewResolver("/srv/media").Remote() {
		t.Error("local base should not be remote")
	}
}
