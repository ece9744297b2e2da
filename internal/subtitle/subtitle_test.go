package subtitle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParseBothDialects(t *testing.T) {
	raw := "1\n" +
		"00:00:01,500 --> 00:00:04,000\n" +
		"こんばんは\n" +
		"Good evening\n" +
		"\n" +
		"2\n" +
		"00:00:04.250 --> 00:00:06.750\n" +
		"眠れない夜に\n"

	cues := Parse(raw)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}

	if cues[0].Start != 1.5 || cues[0].End != 4.0 {
		t.Errorf("comma dialect: got [%v, %v], want [1.5, 4]", cues[0].Start, cues[0].End)
	}
	if cues[0].Text != "こんばんは" || cues[0].Secondary != "Good evening" {
		t.Errorf("cue text = %q / %q", cues[0].Text, cues[0].Secondary)
	}

	if cues[1].Start != 4.25 || cues[1].End != 6.75 {
		t.Errorf("dot dialect: got [%v, %v], want [4.25, 6.75]", cues[1].Start, cues[1].End)
	}
	if cues[1].ID != 2 {
		t.Errorf("cue id = %d, want 2", cues[1].ID)
	}
}

func TestParseDegradesGracefully(t *testing.T) {
	raw := "WEBVTT\n" +
		"\n" +
		"this block has no timecode at all\n" +
		"\n" +
		"00:00:02,000 --> 00:00:01,000\n" +
		"end before start, dropped\n" +
		"\n" +
		"00:00:10,000 --> 00:00:12,000\n" +
		"survivor\n"

	cues := Parse(raw)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Text != "survivor" {
		t.Errorf("cue text = %q, want survivor", cues[0].Text)
	}
	// sequential numbering when no explicit id line
	if cues[0].ID != 1 {
		t.Errorf("cue id = %d, want 1", cues[0].ID)
	}

	if got := Parse("total garbage"); len(got) != 0 {
		t.Errorf("garbage input produced %d cues", len(got))
	}
	if got := Parse(""); len(got) != 0 {
		t.Errorf("empty input produced %d cues", len(got))
	}
}

func TestParseCRLF(t *testing.T) {
	raw := "1\r\n00:00:00,000 --> 00:00:02,000\r\na\r\n\r\n2\r\n00:00:02,000 --> 00:00:04,000\r\nb\r\n"
	cues := Parse(raw)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
}

func twoCueTrack() *Track {
	return NewTrack([]Cue{
		{ID: 1, Start: 0, End: 2, Text: "a"},
		{ID: 2, Start: 2, End: 4, Text: "b"},
	})
}

func TestActiveCueAt(t *testing.T) {
	tr := twoCueTrack()

	if cue, ok := tr.ActiveCueAt(1.5); !ok || cue.Text != "a" {
		t.Errorf("ActiveCueAt(1.5) = %v %v, want a", cue, ok)
	}
	// shared boundary: first match wins, earliest-indexed cue
	if cue, ok := tr.ActiveCueAt(2); !ok || cue.Text != "a" {
		t.Errorf("ActiveCueAt(2) = %v %v, want a", cue, ok)
	}
	if _, ok := tr.ActiveCueAt(5); ok {
		t.Error("ActiveCueAt(5) should find nothing")
	}
}

func TestResolveNotifiesOnChangeOnly(t *testing.T) {
	tr := twoCueTrack()

	if _, _, changed := tr.Resolve(0.5); !changed {
		t.Error("first resolution should report a change")
	}
	if _, _, changed := tr.Resolve(1.0); changed {
		t.Error("same cue should not report a change")
	}
	if cue, active, changed := tr.Resolve(3.0); !changed || !active || cue.Text != "b" {
		t.Errorf("crossing into cue b: changed=%v cue=%v", changed, cue)
	}
	if _, active, changed := tr.Resolve(10.0); !changed || active {
		t.Error("leaving all cues should report a change with no active cue")
	}
	if _, _, changed := tr.Resolve(11.0); changed {
		t.Error("staying outside cues should not report a change")
	}
}

func TestResetReannouncesActiveCue(t *testing.T) {
	tr := twoCueTrack()

	tr.Resolve(1.0)
	if _, _, changed := tr.Resolve(1.2); changed {
		t.Error("same cue should not report a change")
	}

	tr.Reset()
	if cue, active, changed := tr.Resolve(1.3); !changed || !active || cue.Text != "a" {
		t.Errorf("after Reset: changed=%v active=%v cue=%v, want cue a re-announced", changed, active, cue)
	}
}

func TestLoaderLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01.srt")
	content := "1\n00:00:00,000 --> 00:00:02,000\nhello\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	tr, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tr.Empty() {
		t.Fatal("expected cues")
	}

	// missing file is not an error
	tr, err = l.Load(context.Background(), filepath.Join(dir, "missing.srt"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if !tr.Empty() {
		t.Error("missing file should yield an empty track")
	}

	// empty location means no subtitles configured
	tr, err = l.Load(context.Background(), "")
	if err != nil || !tr.Empty() {
		t.Errorf("empty location: track=%v err=%v", tr, err)
	}
}

func TestLoaderRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1\n00:00:00.000 --> 00:00:01.000\nremote\n"))
	}))
	defer srv.Close()

	l := NewLoader()
	tr, err := l.Load(context.Background(), srv.URL+"/01.vtt")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(tr.Cues()) != 1 || tr.Cues()[0].Text != "remote" {
		t.Errorf("unexpected cues: %+v", tr.Cues())
	}
}
