// Package playlist computes track adjacency within an album and the
// action to take when a track ends or the user presses previous.
package playlist

import "kanade/internal/catalog"

// ActionKind tells the session what to do after a track ends.
type ActionKind int

const (
	// Advance moves to the next track without forcing the focused
	// player view open (automatic continuation).
	Advance ActionKind = iota
	// Finish means the last track ended: stop playback, reset to the
	// start and leave the playing state.
	Finish
)

// Action is the decision returned by OnTrackEnded.
type Action struct {
	Kind   ActionKind
	Next   *catalog.Track // set when Kind == Advance
	Silent bool           // always true for automatic advancement
}

// Next returns the track after currentTrackID in album order, or nil
// when it is the last track or unknown.
func Next(album *catalog.Album, currentTrackID int) *catalog.Track {
	idx := album.TrackIndex(currentTrackID)
	if idx < 0 || idx+1 >= len(album.Tracks) {
		return nil
	}
	return &album.Tracks[idx+1]
}

// Prev returns the track before currentTrackID in album order, or nil
// when it is the first track or unknown.
func Prev(album *catalog.Album, currentTrackID int) *catalog.Track {
	idx := album.TrackIndex(currentTrackID)
	if idx <= 0 {
		return nil
	}
	return &album.Tracks[idx-1]
}

// OnTrackEnded decides between silent advancement and finishing the
// playlist.
func OnTrackEnded(album *catalog.Album, currentTrackID int) Action {
	if next := Next(album, currentTrackID); next != nil {
		return Action{Kind: Advance, Next: next, Silent: true}
	}
	return Action{Kind: Finish}
}

// restartThreshold is how far into a track a prev-press means
// "restart this track" instead of "go to the previous one".
const restartThreshold = 3.0

// PrevActionKind is the decision for a previous-track press.
type PrevActionKind int

const (
	// Restart seeks the current track back to 0.
	Restart PrevActionKind = iota
	// MoveBack switches to the previous track.
	MoveBack
	// Stay does nothing (first track, at the start).
	Stay
)

// PrevAction resolves a previous-press: past the restart threshold it
// restarts the current track; near the start it moves to the prior
// track if one exists.
func PrevAction(album *catalog.Album, currentTrackID int, position float64) (PrevActionKind, *catalog.Track) {
	prev := Prev(album, currentTrackID)
	if position > restartThreshold {
		return Restart, nil
	}
	if prev != nil {
		return MoveBack, prev
	}
	if position > 0 {
		return Restart, nil
	}
	return Stay, nil
}
