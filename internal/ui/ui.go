// Package ui is the Bubble Tea presentation layer: album browser,
// track list, password prompt and player view. It is a pure subscriber
// of session events and never owns playback state.
package ui

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"kanade/internal/catalog"
	"kanade/internal/session"
	"kanade/internal/state"
	"kanade/internal/subtitle"
)

// sessionMsg carries one session event into the Bubble Tea loop.
type sessionMsg struct {
	ev session.Event
}

// Relay bridges session notifications into the running program.
// Program.Send blocks until the event loop picks the message up, so
// the relay decouples the two: Notify enqueues without blocking and a
// drain goroutine feeds Send in order. Once the buffer fills the
// oldest events are dropped; the session re-announces position and
// cue state every tick, so a lagging view only loses stale frames.
type Relay struct {
	events chan session.Event
	once   sync.Once
}

func NewRelay() *Relay {
	return &Relay{events: make(chan session.Event, 256)}
}

// Notify implements session.Notifier. It never blocks.
func (r *Relay) Notify(ev session.Event) {
	for {
		select {
		case r.events <- ev:
			return
		default:
		}
		select {
		case <-r.events: // shed the oldest
		default:
		}
	}
}

func (r *Relay) bind(p *tea.Program) {
	r.once.Do(func() {
		go func() {
			for ev := range r.events {
				p.Send(sessionMsg{ev})
			}
		}()
	})
}

type viewState int

const (
	stateBrowse viewState = iota
	statePassword
	stateTracks
	statePlayer
)

// Options wires the interface's collaborators. Album opens the track
// list directly; StartTrackID additionally starts playback of that
// track once the program is running.
type Options struct {
	Catalog *catalog.Catalog
	Session *session.Session
	Store   *state.Store
	Relay   *Relay
	Logger  *zap.SugaredLogger

	Album        *catalog.Album
	StartTrackID int
}

// Run starts the interactive interface and blocks until the user
// quits.
func Run(opts Options) error {
	m := newModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if opts.Relay != nil {
		opts.Relay.bind(p)
	}
	_, err := p.Run()
	return err
}

// sleepSteps are the sleep-timer durations the t key cycles through.
var sleepSteps = []time.Duration{0, 15 * time.Minute, 30 * time.Minute, 60 * time.Minute}

type model struct {
	cat   *catalog.Catalog
	sess  *session.Session
	store *state.Store
	log   *zap.SugaredLogger
	keys  keymap

	state viewState

	albums    list.Model
	tracks    list.Model
	search    textinput.Model
	password  textinput.Model
	progressC progress.Model
	helpC     help.Model

	searching bool
	recent    bool // sort albums by latest activity
	pending   *catalog.Album
	album     *catalog.Album

	// tag clouds for the c/p filter keys; index -1 means no filter
	circles      []catalog.TagCount
	performers   []catalog.TagCount
	circleIdx    int
	performerIdx int

	playState session.State
	track     *catalog.Track
	position  float64
	duration  float64
	cue       subtitle.Cue
	hasCue    bool
	volume    float64
	sleepStep int

	startTrackID int

	status string
	width  int
	height int
}

func newModel(opts Options) *model {
	m := &model{
		cat:          opts.Catalog,
		sess:         opts.Session,
		store:        opts.Store,
		log:          opts.Logger,
		keys:         newKeymap(),
		volume:       opts.Store.Volume(),
		circleIdx:    -1,
		performerIdx: -1,
	}
	if m.log == nil {
		m.log = zap.NewNop().Sugar()
	}
	m.circles = m.cat.CircleCounts()
	m.performers = m.cat.PerformerCounts()

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedTitleStyle
	delegate.Styles.SelectedDesc = selectedTitleStyle.Foreground(subtleColor)

	m.albums = list.New(nil, delegate, 0, 0)
	m.albums.Title = "Albums"
	m.albums.Styles.Title = titleStyle
	m.albums.SetShowStatusBar(false)
	m.albums.SetFilteringEnabled(false)
	m.albums.SetStatusBarItemName("album", "albums")

	m.tracks = list.New(nil, delegate, 0, 0)
	m.tracks.Styles.Title = titleStyle
	m.tracks.SetShowStatusBar(false)
	m.tracks.SetFilteringEnabled(false)
	m.tracks.SetStatusBarItemName("track", "tracks")

	m.search = textinput.New()
	m.search.Placeholder = "title, circle, performer or tag"
	m.search.Prompt = "search: "
	m.search.CharLimit = 60

	m.password = textinput.New()
	m.password.Prompt = "password: "
	m.password.EchoMode = textinput.EchoPassword
	m.password.CharLimit = 60

	m.progressC = progress.New(progress.WithDefaultGradient())
	m.helpC = help.New()

	m.refreshAlbums()
	if opts.Album != nil {
		m.showTracks(opts.Album)
		m.startTrackID = opts.StartTrackID
	}

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		m.resize(w, h)
	}
	return m
}

func (m *model) Init() tea.Cmd {
	if m.startTrackID != 0 && m.album != nil {
		album, trackID := m.album, m.startTrackID
		return tea.Batch(textinput.Blink, func() tea.Msg {
			if err := m.sess.SelectTrack(album, trackID, true); err != nil {
				m.log.Warnw("starting initial track", "album", album.ID, "track", trackID, "error", err)
			}
			return nil
		})
	}
	return textinput.Blink
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height

	x, y := paddingStyle.GetFrameSize()
	listWidth := width - x
	listHeight := height - y - 2 // search / status rows

	m.albums.SetSize(listWidth, listHeight)
	m.tracks.SetSize(listWidth, listHeight)
	m.progressC.Width = width - 2*x
	m.helpC.Width = listWidth
	m.search.Width = listWidth - len(m.search.Prompt)
}

// refreshAlbums rebuilds the browser items from the current search
// text, tag filters and sort order.
func (m *model) refreshAlbums() {
	filter := catalog.Filter{Search: m.search.Value()}
	if m.circleIdx >= 0 {
		filter.CircleID = m.circles[m.circleIdx].ID
	}
	if m.performerIdx >= 0 {
		filter.Performer = m.performers[m.performerIdx].ID
	}
	albums := filter.Apply(m.cat)
	if m.recent {
		catalog.SortRecent(albums, m.store.LatestActivity)
	}

	items := make([]list.Item, 0, len(albums))
	for _, a := range albums {
		rating, _ := m.store.Rating(a.ID)
		items = append(items, albumItem{
			album:  a,
			circle: m.cat.CircleName(a.CircleID),
			rating: rating,
			locked: a.Locked() && !m.store.IsUnlocked(a.ID),
		})
	}
	m.albums.SetItems(items)
}

// openAlbum enters the track list, or the password prompt when the
// album is still locked.
func (m *model) openAlbum(a *catalog.Album) {
	if a.Locked() && !m.store.IsUnlocked(a.ID) {
		m.pending = a
		m.password.SetValue("")
		m.password.Focus()
		m.state = statePassword
		return
	}
	m.showTracks(a)
}

func (m *model) showTracks(a *catalog.Album) {
	m.album = a
	m.tracks.Title = a.Title
	items := make([]list.Item, 0, len(a.Tracks))
	for _, t := range a.Tracks {
		note := ""
		if rec, ok, err := m.store.Progress(a.ID, t.ID); err == nil && ok {
			if rec.Completed {
				note = "finished"
			} else if rec.Position > 0 {
				note = "resumes at " + catalog.FormatDuration(rec.Position)
			}
		}
		items = append(items, trackItem{track: t, note: note})
	}
	m.tracks.SetItems(items)
	m.state = stateTracks
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case sessionMsg:
		m.applySessionEvent(msg.ev)
		return m, nil
	case tea.KeyMsg:
		switch m.state {
		case stateBrowse:
			return m.updateBrowse(msg)
		case statePassword:
			return m.updatePassword(msg)
		case stateTracks:
			return m.updateTracks(msg)
		case statePlayer:
			return m.updatePlayer(msg)
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case stateBrowse:
		m.albums, cmd = m.albums.Update(msg)
	case stateTracks:
		m.tracks, cmd = m.tracks.Update(msg)
	}
	return m, cmd
}

func (m *model) applySessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.StateChanged:
		m.playState = ev.State
	case session.TrackChanged:
		if ev.Album != nil {
			m.album = ev.Album
		}
		m.track = ev.Track
		m.position = 0
		m.cue = subtitle.Cue{}
		m.hasCue = false
		if ev.Focus {
			m.state = statePlayer
		}
	case session.TimeUpdated:
		m.position = ev.Position
		m.duration = ev.Duration
	case session.CueChanged:
		m.cue = ev.Cue
		m.hasCue = ev.HasCue
	case session.PlaylistFinished:
		m.track = nil
		m.position = 0
		m.status = "album finished"
		if m.album != nil {
			m.showTracks(m.album)
		} else {
			m.state = stateBrowse
		}
	case session.HistoryChanged:
		// list annotations refresh lazily when views rebuild
	case session.SleepTimerFired:
		m.sleepStep = 0
		m.status = "sleep timer: paused"
	}
}

func (m *model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.refreshAlbums()
			return m, nil
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.refreshAlbums()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case msg.String() == "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case msg.String() == "r":
		m.recent = !m.recent
		m.refreshAlbums()
		if m.recent {
			m.status = "sorted by recently played"
		} else {
			m.status = ""
		}
		return m, nil
	case msg.String() == "c":
		m.cycleCircle()
		return m, nil
	case msg.String() == "p":
		m.cyclePerformer()
		return m, nil
	case msg.String() == "enter":
		if item, ok := m.albums.SelectedItem().(albumItem); ok {
			m.status = ""
			m.openAlbum(item.album)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.albums, cmd = m.albums.Update(msg)
	return m, cmd
}

// cycleCircle steps through the circle tag cloud, busiest circle
// first, wrapping back to no filter.
func (m *model) cycleCircle() {
	m.circleIdx++
	if m.circleIdx >= len(m.circles) {
		m.circleIdx = -1
	}
	m.refreshAlbums()
	if m.circleIdx < 0 {
		m.status = ""
		return
	}
	tc := m.circles[m.circleIdx]
	m.status = fmt.Sprintf("circle: %s (%d)", m.cat.CircleName(tc.ID), tc.Count)
}

// cyclePerformer steps through the performer tag cloud the same way.
func (m *model) cyclePerformer() {
	m.performerIdx++
	if m.performerIdx >= len(m.performers) {
		m.performerIdx = -1
	}
	m.refreshAlbums()
	if m.performerIdx < 0 {
		m.status = ""
		return
	}
	tc := m.performers[m.performerIdx]
	m.status = fmt.Sprintf("performer: %s (%d)", m.cat.PerformerName(tc.ID), tc.Count)
}

func (m *model) updatePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pending = nil
		m.status = ""
		m.state = stateBrowse
		return m, nil
	case "enter":
		if m.pending.CheckPassword(m.password.Value()) {
			if err := m.store.Unlock(m.pending.ID); err != nil {
				m.log.Warnw("persisting unlock", "album", m.pending.ID, "error", err)
			}
			m.status = ""
			album := m.pending
			m.pending = nil
			m.refreshAlbums()
			m.showTracks(album)
		} else {
			m.status = "wrong password"
			m.password.SetValue("")
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return m, cmd
}

func (m *model) updateTracks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.status = ""
		m.refreshAlbums()
		m.state = stateBrowse
		return m, nil
	case msg.String() == "enter":
		if item, ok := m.tracks.SelectedItem().(trackItem); ok {
			if err := m.sess.SelectTrack(m.album, item.track.ID, true); err != nil {
				m.status = err.Error()
			}
		}
		return m, nil
	}
	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= 5 {
		if err := m.store.SetRating(m.album.ID, n); err != nil {
			m.log.Warnw("saving rating", "album", m.album.ID, "error", err)
		} else {
			m.status = fmt.Sprintf("rated %d/5", n)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m *model) updatePlayer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.album != nil {
			m.showTracks(m.album)
		} else {
			m.state = stateBrowse
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.sess.TogglePlay()
	case key.Matches(msg, m.keys.next):
		m.sess.Next()
	case key.Matches(msg, m.keys.prev):
		m.sess.Prev()
	case key.Matches(msg, m.keys.seekBack):
		m.sess.SeekRelative(-10)
	case key.Matches(msg, m.keys.seekFwd):
		m.sess.SeekRelative(10)
	case key.Matches(msg, m.keys.rateDown):
		m.sess.SetRate(m.sess.Rate() - 0.25)
		m.status = fmt.Sprintf("rate %.2fx", m.sess.Rate())
	case key.Matches(msg, m.keys.rateUp):
		m.sess.SetRate(m.sess.Rate() + 0.25)
		m.status = fmt.Sprintf("rate %.2fx", m.sess.Rate())
	case key.Matches(msg, m.keys.volDown):
		m.setVolume(m.volume - 0.1)
	case key.Matches(msg, m.keys.volUp):
		m.setVolume(m.volume + 0.1)
	case key.Matches(msg, m.keys.subtitles):
		if m.sess.ToggleSubtitles() {
			m.status = "subtitles on"
		} else {
			m.status = "subtitles off"
		}
	case key.Matches(msg, m.keys.sleepTimer):
		m.sleepStep = (m.sleepStep + 1) % len(sleepSteps)
		d := sleepSteps[m.sleepStep]
		m.sess.SetSleepTimer(d)
		if d == 0 {
			m.status = "sleep timer off"
		} else {
			m.status = fmt.Sprintf("sleep in %s", d)
		}
	}
	return m, nil
}

func (m *model) setVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.volume = v
	m.sess.SetVolume(v)
	m.status = fmt.Sprintf("volume %d%%", int(v*100+0.5))
}

func (m *model) View() string {
	switch m.state {
	case stateBrowse:
		return m.viewBrowse()
	case statePassword:
		return m.viewPassword()
	case stateTracks:
		return m.viewTracks()
	case statePlayer:
		return m.viewPlayer()
	}
	return ""
}

func (m *model) viewBrowse() string {
	rows := []string{}
	if m.searching || m.search.Value() != "" {
		rows = append(rows, m.search.View())
	}
	rows = append(rows, m.albums.View())
	rows = append(rows, m.statusLine("/ search · c circle · p performer · r recent · enter open · q quit"))
	return paddingStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *model) viewPassword() string {
	title := "locked album"
	if m.pending != nil {
		title = m.pending.Title
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		lockedStyle.Render("This album is locked."),
		m.password.View(),
		m.statusLine("enter unlock · esc back"),
	)
	return paddingStyle.Render(body)
}

func (m *model) viewTracks() string {
	return paddingStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.tracks.View(),
		m.statusLine("enter play · 1-5 rate · esc back · q quit"),
	))
}

func (m *model) viewPlayer() string {
	if m.album == nil || m.track == nil {
		return paddingStyle.Render(statusStyle.Render("nothing playing"))
	}

	ratio := 0.0
	if m.duration > 0 {
		ratio = m.position / m.duration
		if ratio > 1 {
			ratio = 1
		}
	}

	stateLine := fmt.Sprintf("%s · %.2fx · vol %d%%",
		m.playState, m.sess.Rate(), int(m.volume*100+0.5))
	if d := sleepSteps[m.sleepStep]; d > 0 {
		stateLine += fmt.Sprintf(" · sleep %s", d)
	}

	rows := []string{
		titleStyle.Render(m.album.Title),
		trackTitleStyle.Render(m.track.Title),
		statusStyle.Render(stateLine),
		"",
		m.progressC.ViewAs(ratio),
		statusStyle.Render(fmt.Sprintf("%s / %s",
			catalog.FormatDuration(m.position), catalog.FormatDuration(m.duration))),
		"",
	}
	if m.hasCue {
		rows = append(rows, cueStyle.Render(m.cue.Text))
		if m.cue.Secondary != "" {
			rows = append(rows, cueSubStyle.Render(m.cue.Secondary))
		}
	} else {
		rows = append(rows, "", "")
	}
	rows = append(rows, "", m.helpC.View(m.keys))
	if m.status != "" {
		rows = append(rows, statusStyle.Render(m.status))
	}
	return paddingStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *model) statusLine(hint string) string {
	if m.status != "" {
		if m.status == "wrong password" {
			return errorStyle.Render(m.status)
		}
		return statusStyle.Render(m.status)
	}
	return statusStyle.Render(hint)
}
