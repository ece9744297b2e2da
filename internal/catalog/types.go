// Package catalog holds the immutable album catalog loaded from the
// JSON feed, plus filtering, searching and media URL resolution.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Circle is a production circle (publisher) referenced by albums.
type Circle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Performer is a voice performer (CV) referenced by albums.
type Performer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track is a single playable audio item within an album.
// Immutable after load.
type Track struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	TitleLocalized string `json:"titleLocalized,omitempty"`
	Duration       string `json:"duration"` // display form, M:SS
	AudioFile      string `json:"audioFile"`
	SubtitleFile   string `json:"subtitleFile,omitempty"`
}

// DurationSeconds returns the track duration in seconds, 0 if the
// display form is unparsable.
func (t Track) DurationSeconds() float64 {
	return ParseDuration(t.Duration)
}

// Album is a bundled work containing one or more tracks.
// Immutable after load.
type Album struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	TitleJP      string   `json:"titleJp,omitempty"`
	ProductID    string   `json:"productId,omitempty"`
	CircleID     string   `json:"circleId"`
	PerformerIDs []string `json:"performerIds"`
	Cover        string   `json:"cover,omitempty"`
	ReleaseDate  string   `json:"releaseDate,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Password     string   `json:"password,omitempty"`
	Tracks       []Track  `json:"tracks"`
}

// Locked reports whether the album is gated behind a password.
func (a *Album) Locked() bool { return a.Password != "" }

// CheckPassword compares the candidate against the album password.
// This is a content-access affordance, not a security control.
func (a *Album) CheckPassword(candidate string) bool {
	return a.Password != "" && candidate == a.Password
}

// Track returns the track with the given id, or nil.
func (a *Album) Track(id int) *Track {
	for i := range a.Tracks {
		if a.Tracks[i].ID == id {
			return &a.Tracks[i]
		}
	}
	return nil
}

// TrackIndex returns the list index of the track with the given id,
// or -1.
func (a *Album) TrackIndex(id int) int {
	for i := range a.Tracks {
		if a.Tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// ParseDuration parses H:MM:SS or M:SS into seconds.
func ParseDuration(s string) float64 {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		h, _ := strconv.ParseFloat(parts[0], 64)
		m, _ := strconv.ParseFloat(parts[1], 64)
		sec, _ := strconv.ParseFloat(parts[2], 64)
		return h*3600 + m*60 + sec
	case 2:
		m, _ := strconv.ParseFloat(parts[0], 64)
		sec, _ := strconv.ParseFloat(parts[1], 64)
		return m*60 + sec
	default:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
}

// FormatDuration formats seconds as H:MM:SS, or M:SS below one hour.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
