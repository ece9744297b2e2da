// Package clock wraps a single playable media backend behind the
// Clock interface: current time, duration, transport control and a
// typed event stream. The one production implementation drives mpv
// over its JSON IPC socket.
package clock

// EventKind discriminates clock events.
type EventKind int

const (
	// Tick is a time-update at the backend's native cadence. Consumers
	// must not assume a fixed tick rate and must be idempotent per
	// tick.
	Tick EventKind = iota
	// Loaded fires once per load, when the media duration is known.
	Loaded
	// Ended fires when the media plays to its end.
	Ended
	// Errored fires when the backend fails to load or play; the
	// session recovers to a paused state, never crashes.
	Errored
)

// Event is a single clock notification.
type Event struct {
	Kind     EventKind
	Position float64 // seconds, set on Tick
	Duration float64 // seconds, set on Loaded
	Err      error   // set on Errored
}

// Clock is the media clock contract. All methods are safe for use
// from the session goroutine; events arrive on a single channel.
type Clock interface {
	// Load replaces the current source. Position resets to 0; a
	// Loaded event follows once metadata is available.
	Load(url string) error
	// Play starts or resumes playback. A blocked start is returned as
	// an error for the caller to log, never fatal.
	Play() error
	Pause() error
	// Seek jumps to an absolute position, clamped to [0, duration].
	Seek(seconds float64) error
	// SetRate sets the playback speed multiplier.
	SetRate(rate float64) error
	// SetVolume sets the volume in [0, 1].
	SetVolume(volume float64) error
	// Position is the current playback position in seconds.
	Position() float64
	// Duration returns the media duration; ok is false until
	// metadata has loaded.
	Duration() (seconds float64, ok bool)
	// Events is the clock's notification stream.
	Events() <-chan Event
	Close() error
}
