// Package subtitle parses timed-text cue files and resolves the
// active cue for a playback position. Both SRT-style comma and
// VTT-style dot millisecond separators are accepted; malformed blocks
// are skipped, never surfaced as errors.
package subtitle

import (
	"regexp"
	"strconv"
	"strings"
)

// Cue is a single timed-text entry. Start <= End, seconds.
type Cue struct {
	ID        int
	Start     float64
	End       float64
	Text      string
	Secondary string
}

// timecodeRe matches "HH:MM:SS,mmm --> HH:MM:SS.mmm" with either
// millisecond separator on either side.
var timecodeRe = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})`)

// Parse converts raw cue file text into an ordered cue list. Blocks
// without a recognizable timecode (headers, notes, garbage) are
// dropped. A leading numeric line becomes the cue id, otherwise cues
// are numbered sequentially from 1.
func Parse(raw string) []Cue {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var cues []Cue
	for _, block := range strings.Split(raw, "\n\n") {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}

		tcIdx := -1
		var m []string
		for i, line := range lines {
			if m = timecodeRe.FindStringSubmatch(line); m != nil {
				tcIdx = i
				break
			}
		}
		if tcIdx == -1 {
			continue
		}

		start := toSeconds(m[1], m[2], m[3], m[4])
		end := toSeconds(m[5], m[6], m[7], m[8])
		if end < start {
			continue
		}

		id := len(cues) + 1
		if tcIdx > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(lines[tcIdx-1])); err == nil {
				id = n
			}
		}

		cue := Cue{ID: id, Start: start, End: end}
		rest := lines[tcIdx+1:]
		if len(rest) > 0 {
			cue.Text = rest[0]
		}
		if len(rest) > 1 {
			cue.Secondary = strings.Join(rest[1:], "\n")
		}
		cues = append(cues, cue)
	}
	return cues
}

func nonEmptyLines(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func toSeconds(h, m, s, ms string) float64 {
	hv, _ := strconv.Atoi(h)
	mv, _ := strconv.Atoi(m)
	sv, _ := strconv.Atoi(s)
	// pad so ".5" means 500ms, not 5ms
	for len(ms) < 3 {
		ms += "0"
	}
	msv, _ := strconv.Atoi(ms)
	return float64(hv)*3600 + float64(mv)*60 + float64(sv) + float64(msv)/1000
}

// Track is the cue list for the currently loaded subtitle file plus
// the change-detection state for active-cue notifications. The list
// is rebuilt wholesale whenever a new track's file loads.
type Track struct {
	cues     []Cue
	activeID int // 0 when no cue is active
}

// NewTrack wraps a parsed cue list.
func NewTrack(cues []Cue) *Track {
	return &Track{cues: cues}
}

// Empty reports whether the track has no cues.
func (t *Track) Empty() bool { return len(t.cues) == 0 }

// Cues returns the ordered cue list.
func (t *Track) Cues() []Cue { return t.cues }

// ActiveCueAt returns the first cue covering the given time.
// Cues may overlap in malformed input; first match wins, so an exact
// boundary shared by two cues resolves to the earlier-indexed one.
func (t *Track) ActiveCueAt(at float64) (Cue, bool) {
	for _, c := range t.cues {
		if c.Start <= at && at <= c.End {
			return c, true
		}
	}
	return Cue{}, false
}

// Reset forgets the last resolved cue, so the next Resolve reports a
// change even when the position is still inside the same cue. Used
// when cue display is re-enabled mid-track.
func (t *Track) Reset() { t.activeID = 0 }

// Resolve returns the active cue at the given time, whether any cue
// is active, and whether the active cue changed identity since the
// last call. Callers re-render only on change.
func (t *Track) Resolve(at float64) (cue Cue, active, changed bool) {
	cue, active = t.ActiveCueAt(at)
	id := 0
	if active {
		id = cue.ID
	}
	changed = id != t.activeID
	t.activeID = id
	return cue, active, changed
}
