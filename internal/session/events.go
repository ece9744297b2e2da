package session

import (
	"kanade/internal/catalog"
	"kanade/internal/subtitle"
)

// State is the session's playback state.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// EventKind discriminates outbound session notifications.
type EventKind int

const (
	// StateChanged reports a playback state transition.
	StateChanged EventKind = iota
	// TrackChanged reports a new (album, track) selection. Focus
	// tells the presentation layer whether to open the player view;
	// silent advancement never sets it.
	TrackChanged
	// TimeUpdated is the per-tick position/duration notification.
	TimeUpdated
	// CueChanged fires only when the active subtitle cue changes
	// identity, never on every tick.
	CueChanged
	// PlaylistFinished fires when the last track of the album ends.
	PlaylistFinished
	// HistoryChanged fires after a play is recorded.
	HistoryChanged
	// SleepTimerFired fires when the sleep timer pauses playback.
	SleepTimerFired
)

// Event is an outbound notification to the presentation layer. The
// presentation layer subscribes and re-renders; the core does not
// depend on how or whether events are rendered.
type Event struct {
	Kind     EventKind
	State    State
	Album    *catalog.Album
	Track    *catalog.Track
	Focus    bool
	Position float64
	Duration float64
	Cue      subtitle.Cue
	HasCue   bool
}

// Notifier receives session events. It is invoked after the session
// lock is released, so it may block or call back into the session.
type Notifier func(Event)
