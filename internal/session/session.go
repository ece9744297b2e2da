// Package session orchestrates playback: it owns the current album
// and track, wires clock events to the progress store, subtitle
// track and playlist controller, and exposes the single surface the
// presentation layer calls.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"kanade/internal/catalog"
	"kanade/internal/clock"
	"kanade/internal/playlist"
	"kanade/internal/state"
	"kanade/internal/subtitle"
)

// resumeMargin gates automatic resume: a saved position is honored
// only when 10s < position < duration-10s, so playback neither
// restarts at the very beginning nor inside the final credits.
const resumeMargin = 10.0

// ProgressStore is the persistence contract for playback positions.
type ProgressStore interface {
	Progress(albumID string, trackID int) (state.ProgressRecord, bool, error)
	SaveProgress(albumID string, trackID int, position, duration float64) error
	MarkCompleted(albumID string, trackID int) error
}

// HistoryStore is the persistence contract for the play history and
// the last-played pointer.
type HistoryStore interface {
	RecordPlay(albumID string, trackID int) error
	SetLastPlayed(albumID string, trackID int) error
}

// PrefStore persists user preferences touched during playback.
// Persistence is fire-and-forget; failures are logged, never fatal.
type PrefStore interface {
	SetPlaybackRate(rate float64) error
	SetVolume(volume float64) error
	SetSubtitlesEnabled(enabled bool) error
}

// SubtitleLoader fetches and parses a track's cue file.
type SubtitleLoader interface {
	Load(ctx context.Context, location string) (*subtitle.Track, error)
}

// Preloader speculatively fetches upcoming media.
type Preloader interface {
	MaybeStart(album *catalog.Album, current *catalog.Track, progressRatio float64)
	Fetched(audioFile string) (string, bool)
	Clear()
}

// Options wires a session's collaborators. Clock, Progress, History
// and Resolve are required; the rest default to no-ops.
type Options struct {
	Clock     clock.Clock
	Progress  ProgressStore
	History   HistoryStore
	Prefs     PrefStore
	Subtitles SubtitleLoader
	Preload   Preloader
	// Resolve maps a relative catalog media path to a fetchable
	// location.
	Resolve func(string) string
	Notify  Notifier
	Logger  *zap.SugaredLogger

	SubtitlesEnabled bool
	Rate             float64
	Volume           float64
}

// Session is the playback orchestrator. All state mutation happens on
// event callbacks or user-facing methods; both serialize on one lock.
type Session struct {
	mu sync.Mutex

	clock    clock.Clock
	progress ProgressStore
	history  HistoryStore
	prefs    PrefStore
	subs     SubtitleLoader
	preload  Preloader
	resolve  func(string) string
	notify   Notifier
	log      *zap.SugaredLogger
	now      func() time.Time

	st            State
	album         *catalog.Album
	track         *catalog.Track
	cueTrack      *subtitle.Track
	subGen        int
	subEnabled    bool
	rate          float64
	volume        float64
	pendingResume float64 // <0 when there is nothing to resume
	sleepDeadline time.Time

	// queued collects outbound events while the lock is held; the
	// public entry points deliver them after releasing it, so a
	// notifier can block or call back into the session without
	// deadlocking.
	queued []Event
}

// queueLocked records an outbound event for delivery after unlock.
func (s *Session) queueLocked(ev Event) {
	s.queued = append(s.queued, ev)
}

func (s *Session) flushLocked() []Event {
	evs := s.queued
	s.queued = nil
	return evs
}

func (s *Session) emit(evs []Event) {
	for _, ev := range evs {
		s.notify(ev)
	}
}

// New creates a session in the Idle state.
func New(opts Options) *Session {
	s := &Session{
		clock:      opts.Clock,
		progress:   opts.Progress,
		history:    opts.History,
		prefs:      opts.Prefs,
		subs:       opts.Subtitles,
		preload:    opts.Preload,
		resolve:    opts.Resolve,
		notify:     opts.Notify,
		log:        opts.Logger,
		now:        time.Now,
		st:         Idle,
		cueTrack:   subtitle.NewTrack(nil),
		subEnabled: opts.SubtitlesEnabled,
		rate:       opts.Rate,
		volume:     opts.Volume,

		pendingResume: -1,
	}
	if s.notify == nil {
		s.notify = func(Event) {}
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	if s.rate <= 0 {
		s.rate = 1.0
	}
	if s.volume < 0 || s.volume > 1 {
		s.volume = 1.0
	}
	return s
}

// Run consumes clock events until the context is cancelled or the
// clock closes. This is the session's single dispatch entry point for
// media-driven events.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.clock.Events():
			if !ok {
				return
			}
			s.Dispatch(ev)
		}
	}
}

// SelectTrack makes (album, trackID) the current track. Re-selecting
// the already-loaded track only re-announces it with the requested
// focus; the clock is not touched. Focus is false for automatic
// (silent) advancement.
func (s *Session) SelectTrack(album *catalog.Album, trackID int, focus bool) error {
	s.mu.Lock()
	err := s.selectTrackLocked(album, trackID, focus)
	evs := s.flushLocked()
	s.mu.Unlock()
	s.emit(evs)
	return err
}

func (s *Session) selectTrackLocked(album *catalog.Album, trackID int, focus bool) error {
	if s.album != nil && s.track != nil && s.album.ID == album.ID && s.track.ID == trackID {
		s.queueLocked(Event{Kind: TrackChanged, Album: s.album, Track: s.track, Focus: focus})
		return nil
	}

	track := album.Track(trackID)
	if track == nil {
		return fmt.Errorf("album %s has no track %d", album.ID, trackID)
	}

	if s.preload != nil {
		s.preload.Clear()
	}

	// resume decision happens before the source loads; the gate is
	// applied once the duration is known
	s.pendingResume = -1
	if rec, ok, err := s.progress.Progress(album.ID, trackID); err != nil {
		s.log.Warnw("reading saved progress", "album", album.ID, "track", trackID, "error", err)
	} else if ok && !rec.Completed {
		s.pendingResume = rec.Position
	}

	source := s.resolve(track.AudioFile)
	if s.preload != nil {
		if local, ok := s.preload.Fetched(track.AudioFile); ok {
			source = local
		}
	}

	s.album = album
	s.track = track
	s.st = Loading
	s.cueTrack = subtitle.NewTrack(nil)

	if err := s.clock.Load(source); err != nil {
		s.log.Errorw("loading media", "source", source, "error", err)
		s.st = Paused
		s.queueLocked(Event{Kind: StateChanged, State: s.st})
		return nil
	}
	s.clock.SetRate(s.rate)
	s.clock.SetVolume(s.volume)

	// playback start is independent of the subtitle fetch; a blocked
	// start degrades to paused, never propagates
	if err := s.clock.Play(); err != nil {
		s.log.Warnw("starting playback", "error", err)
		s.st = Paused
	}

	s.loadSubtitlesLocked(album, track)

	if err := s.history.RecordPlay(album.ID, trackID); err != nil {
		s.log.Warnw("recording history", "error", err)
	}
	if err := s.history.SetLastPlayed(album.ID, trackID); err != nil {
		s.log.Warnw("saving last played", "error", err)
	}

	s.queueLocked(Event{Kind: TrackChanged, Album: album, Track: track, Focus: focus})
	s.queueLocked(Event{Kind: HistoryChanged})
	s.queueLocked(Event{Kind: StateChanged, State: s.st})
	return nil
}

// loadSubtitlesLocked kicks off the cue file fetch for the current
// track. A late-arriving result for a previous track is discarded;
// any failure yields an empty cue list and never blocks audio.
func (s *Session) loadSubtitlesLocked(album *catalog.Album, track *catalog.Track) {
	s.subGen++
	gen := s.subGen

	if s.subs == nil || track.SubtitleFile == "" {
		return
	}
	location := s.resolve(track.SubtitleFile)

	go func() {
		cues, err := s.subs.Load(context.Background(), location)
		if err != nil {
			s.log.Debugw("subtitle load failed", "location", location, "error", err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.subGen {
			// the session moved on to another track
			return
		}
		s.cueTrack = cues
	}()
}

// Dispatch applies one clock event to the session. Run feeds it from
// the clock's event stream; it is exported so alternative event loops
// can drive the session directly.
func (s *Session) Dispatch(ev clock.Event) {
	s.mu.Lock()
	switch ev.Kind {
	case clock.Tick:
		s.handleTickLocked(ev.Position)
	case clock.Loaded:
		s.handleLoadedLocked(ev.Duration)
	case clock.Ended:
		s.handleEndedLocked()
	case clock.Errored:
		s.log.Errorw("media clock error", "error", ev.Err)
		if s.st != Idle {
			s.st = Paused
			s.queueLocked(Event{Kind: StateChanged, State: s.st})
		}
	}
	evs := s.flushLocked()
	s.mu.Unlock()
	s.emit(evs)
}

// handleTickLocked fans a time update out in fixed order: progress
// save, subtitle resolution, preload check, sleep timer. The steps
// are independent and each is idempotent per tick.
func (s *Session) handleTickLocked(position float64) {
	if s.album == nil || s.track == nil {
		return
	}
	duration, hasDur := s.clock.Duration()

	if hasDur {
		if err := s.progress.SaveProgress(s.album.ID, s.track.ID, position, duration); err != nil {
			s.log.Warnw("saving progress", "error", err)
		}
	}

	if s.subEnabled {
		if cue, active, changed := s.cueTrack.Resolve(position); changed {
			s.queueLocked(Event{Kind: CueChanged, Cue: cue, HasCue: active})
		}
	}

	if s.preload != nil && hasDur && duration > 0 {
		s.preload.MaybeStart(s.album, s.track, position/duration)
	}

	if !s.sleepDeadline.IsZero() && !s.now().Before(s.sleepDeadline) {
		s.sleepDeadline = time.Time{}
		s.clock.Pause()
		s.st = Paused
		s.queueLocked(Event{Kind: SleepTimerFired})
		s.queueLocked(Event{Kind: StateChanged, State: s.st})
	}

	s.queueLocked(Event{Kind: TimeUpdated, Position: position, Duration: duration})
}

func (s *Session) handleLoadedLocked(duration float64) {
	if s.st == Loading {
		s.st = Playing
	}

	if p := s.pendingResume; p > resumeMargin && p < duration-resumeMargin {
		if err := s.clock.Seek(p); err != nil {
			s.log.Warnw("seeking to resume position", "position", p, "error", err)
		}
	}
	s.pendingResume = -1

	s.queueLocked(Event{Kind: StateChanged, State: s.st})
	s.queueLocked(Event{Kind: TimeUpdated, Position: s.clock.Position(), Duration: duration})
}

func (s *Session) handleEndedLocked() {
	if s.album == nil || s.track == nil {
		return
	}

	if s.preload != nil {
		s.preload.Clear()
	}
	if err := s.progress.MarkCompleted(s.album.ID, s.track.ID); err != nil {
		s.log.Warnw("marking track completed", "error", err)
	}

	action := playlist.OnTrackEnded(s.album, s.track.ID)
	switch action.Kind {
	case playlist.Advance:
		// automatic continuation: never force the focused view open
		if err := s.selectTrackLocked(s.album, action.Next.ID, false); err != nil {
			s.log.Errorw("advancing to next track", "error", err)
		}
	case playlist.Finish:
		s.clock.Pause()
		finished := s.album
		s.track = nil
		s.st = Idle
		s.queueLocked(Event{Kind: PlaylistFinished, Album: finished})
		s.queueLocked(Event{Kind: StateChanged, State: s.st})
	}
}

// TogglePlay flips between playing and paused. From Idle with an
// album selected it starts the first track.
func (s *Session) TogglePlay() {
	s.mu.Lock()
	switch s.st {
	case Playing:
		s.clock.Pause()
		s.st = Paused
		s.queueLocked(Event{Kind: StateChanged, State: s.st})
	case Paused:
		if err := s.clock.Play(); err != nil {
			s.log.Warnw("resuming playback", "error", err)
		} else {
			s.st = Playing
			s.queueLocked(Event{Kind: StateChanged, State: s.st})
		}
	case Idle:
		if s.album != nil && len(s.album.Tracks) > 0 {
			s.selectTrackLocked(s.album, s.album.Tracks[0].ID, false)
		}
	}
	evs := s.flushLocked()
	s.mu.Unlock()
	s.emit(evs)
}

// Next moves to the next track in album order, if any.
func (s *Session) Next() {
	s.mu.Lock()
	if s.album != nil && s.track != nil {
		if next := playlist.Next(s.album, s.track.ID); next != nil {
			s.selectTrackLocked(s.album, next.ID, false)
		}
	}
	evs := s.flushLocked()
	s.mu.Unlock()
	s.emit(evs)
}

// Prev applies the previous-press rule: deep into a track it
// restarts, near the start it moves to the prior track.
func (s *Session) Prev() {
	s.mu.Lock()
	if s.album != nil && s.track != nil {
		kind, prev := playlist.PrevAction(s.album, s.track.ID, s.clock.Position())
		switch kind {
		case playlist.Restart:
			s.clock.Seek(0)
		case playlist.MoveBack:
			s.selectTrackLocked(s.album, prev.ID, false)
		}
	}
	evs := s.flushLocked()
	s.mu.Unlock()
	s.emit(evs)
}

// SeekRelative seeks by delta seconds from the current position.
func (s *Session) SeekRelative(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.track == nil {
		return
	}
	s.clock.Seek(s.clock.Position() + delta)
}

// SetRate sets the playback speed, clamped to [0.5, 3], and persists
// the preference.
func (s *Session) SetRate(rate float64) {
	if rate < 0.5 {
		rate = 0.5
	}
	if rate > 3 {
		rate = 3
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
	s.clock.SetRate(rate)
	if s.prefs != nil {
		if err := s.prefs.SetPlaybackRate(rate); err != nil {
			s.log.Warnw("persisting playback rate", "error", err)
		}
	}
}

// Rate returns the current playback speed.
func (s *Session) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetVolume sets the volume in [0, 1] and persists the preference.
func (s *Session) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	s.clock.SetVolume(volume)
	if s.prefs != nil {
		if err := s.prefs.SetVolume(volume); err != nil {
			s.log.Warnw("persisting volume", "error", err)
		}
	}
}

// ToggleSubtitles flips the subtitle display flag and persists it.
// Returns the new value.
func (s *Session) ToggleSubtitles() bool {
	s.mu.Lock()
	s.subEnabled = !s.subEnabled
	if s.subEnabled {
		// forget the last resolved cue so the next tick re-announces
		// the one currently active instead of staying blank until the
		// next cue boundary
		s.cueTrack.Reset()
	} else {
		s.queueLocked(Event{Kind: CueChanged, HasCue: false})
	}
	if s.prefs != nil {
		if err := s.prefs.SetSubtitlesEnabled(s.subEnabled); err != nil {
			s.log.Warnw("persisting subtitle flag", "error", err)
		}
	}
	enabled := s.subEnabled
	evs := s.flushLocked()
	s.mu.Unlock()
	s.emit(evs)
	return enabled
}

// SetSleepTimer pauses playback after the given duration, checked on
// the clock tick. A non-positive duration cancels the timer.
func (s *Session) SetSleepTimer(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		s.sleepDeadline = time.Time{}
		return
	}
	s.sleepDeadline = s.now().Add(d)
}

// Stop pauses playback and returns the session to Idle.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.preload != nil {
		s.preload.Clear()
	}
	s.clock.Pause()
	s.track = nil
	s.st = Idle
	s.queueLocked(Event{Kind: StateChanged, State: s.st})
	evs := s.flushLocked()
	s.mu.Unlock()
	s.emit(evs)
}

// Current returns the current album and track (either may be nil).
func (s *Session) Current() (*catalog.Album, *catalog.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.album, s.track
}

// State returns the current playback state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}
