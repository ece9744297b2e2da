package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleFeed = `{
  "albums": [
    {
      "id": "rj001",
      "title": "Midnight Radio",
      "titleJp": "真夜中のラジオ",
      "circleId": "c1",
      "performerIds": ["cv1", "cv2"],
      "releaseDate": "2023-04-01",
      "tags": ["healing", "radio"],
      "tracks": [
        {"id": 1, "title": "Opening", "duration": "3:05", "audioFile": "rj001/01.mp3", "subtitleFile": "rj001/01.srt"},
        {"id": 2, "title": "Main", "duration": "24:40", "audioFile": "rj001/02.mp3"}
      ]
    },
    {
      "id": "rj002",
      "title": "Locked Room",
      "circleId": "c2",
      "performerIds": ["cv1"],
      "password": "himitsu",
      "tracks": [
        {"id": 1, "title": "Only", "duration": "10:00", "audioFile": "rj002/01.mp3"}
      ]
    }
  ],
  "circles": {
    "c1": {"id": "c1", "name": "Yumeiro Works"},
    "c2": {"id": "c2", "name": "Kage Studio"}
  },
  "performers": {
    "cv1": {"id": "cv1", "name": "Aoi"},
    "cv2": {"id": "cv2", "name": "Hikari"}
  }
}`

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return c
}

func TestParse(t *testing.T) {
	c := testCatalog(t)

	if len(c.Albums) != 2 {
		t.Fatalf("expected 2 albums, got %d", len(c.Albums))
	}

	a := c.Album("rj001")
	if a == nil {
		t.Fatal("Album(rj001) returned nil")
	}
	if a.Locked() {
		t.Error("rj001 should not be locked")
	}
	if got := c.CircleName(a.CircleID); got != "Yumeiro Works" {
		t.Errorf("CircleName = %q, want Yumeiro Works", got)
	}

	b := c.Album("rj002")
	if b == nil || !b.Locked() {
		t.Fatal("rj002 should be locked")
	}
	if b.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
	if !b.CheckPassword("himitsu") {
		t.Error("correct password rejected")
	}
}

func TestLoadLoopbackHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	// a plain-http loopback feed must go through the HTTP client,
	// not be mistaken for a local file path
	c, err := Load(srv.URL + "/catalog.json")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(c.Albums) != 2 {
		t.Errorf("expected 2 albums, got %d", len(c.Albums))
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	bad := `{"albums": [{"id": "a", "tracks": [{"id": 1, "audioFile": "x"}]}, {"id": "a", "tracks": []}]}`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("expected error for duplicate album id")
	}

	bad = `{"albums": [{"id": "a", "tracks": [{"id": 1, "audioFile": "x"}, {"id": 1, "audioFile": "y"}]}]}`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("expected error for duplicate track id")
	}
}

func TestTrackLookup(t *testing.T) {
	c := testCatalog(t)
	a := c.Album("rj001")

	if tr := a.Track(2); tr == nil || tr.Title != "Main" {
		t.Errorf("Track(2) = %+v, want Main", tr)
	}
	if tr := a.Track(99); tr != nil {
		t.Error("Track(99) should be nil")
	}
	if idx := a.TrackIndex(2); idx != 1 {
		t.Errorf("TrackIndex(2) = %d, want 1", idx)
	}
	if idx := a.TrackIndex(99); idx != -1 {
		t.Errorf("TrackIndex(99) = %d, want -1", idx)
	}
}

func TestDurations(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"3:05", 185},
		{"24:40", 1480},
		{"1:02:03", 3723},
		{"90", 90},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.in); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := FormatDuration(185); got != "3:05" {
		t.Errorf("FormatDuration(185) = %q, want 3:05", got)
	}
	if got := FormatDuration(3723); got != "1:02:03" {
		t.Errorf("FormatDuration(3723) = %q, want 1:02:03", got)
	}
	if got := FormatDuration(-5); got != "0:00" {
		t.Errorf("FormatDuration(-5) = %q, want 0:00", got)
	}
}
