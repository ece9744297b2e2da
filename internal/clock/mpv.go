package clock

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// MPV drives a single long-lived mpv process over its JSON IPC
// socket. The process idles between loads; track changes reuse it.
// Socket lives in a randomized temp dir (prevents symlink attacks).
type MPV struct {
	cmd       *exec.Cmd
	conn      net.Conn
	socketDir string
	events    chan Event
	quit      chan struct{}

	mu       sync.Mutex
	writeMu  sync.Mutex
	position float64
	duration float64
	hasDur   bool
	loading  bool
	closed   bool
}

// Available checks that the mpv binary exists in PATH.
func Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// NewMPV starts an idle mpv process and connects to its IPC socket.
func NewMPV() (*MPV, error) {
	socketDir, err := os.MkdirTemp("", "kanade-mpv-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	socketPath := filepath.Join(socketDir, "socket")

	cmd := exec.Command("mpv",
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server="+socketPath,
	)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(socketDir)
		return nil, fmt.Errorf("starting mpv: %w", err)
	}

	conn, err := dialSocket(socketPath)
	if err != nil {
		cmd.Process.Kill()
		os.RemoveAll(socketDir)
		return nil, err
	}

	m := &MPV{
		cmd:       cmd,
		conn:      conn,
		socketDir: socketDir,
		events:    make(chan Event, 64),
		quit:      make(chan struct{}),
	}

	// property observation drives the Tick/Loaded events
	m.command("observe_property", 1, "time-pos")
	m.command("observe_property", 2, "duration")

	go m.readLoop()
	return m, nil
}

// dialSocket waits for the IPC socket to appear, then connects.
func dialSocket(path string) (net.Conn, error) {
	for i := 0; i < 50; i++ {
		if _, err := os.Stat(path); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("connecting to mpv socket: %w", err)
	}
	return conn, nil
}

// command sends a single IPC command. Responses are handled by the
// read loop; errors here mean the pipe itself broke.
func (m *MPV) command(args ...interface{}) error {
	payload := map[string]interface{}{"command": args}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if _, err := m.conn.Write(data); err != nil {
		return fmt.Errorf("writing mpv command: %w", err)
	}
	return nil
}

// ipcMessage is the union of mpv's event and property-change frames.
type ipcMessage struct {
	Event  string      `json:"event"`
	Name   string      `json:"name"`
	Data   interface{} `json:"data"`
	Reason string      `json:"reason"`
}

func (m *MPV) readLoop() {
	scanner := bufio.NewScanner(m.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		switch msg.Event {
		case "property-change":
			m.handleProperty(msg)
		case "end-file":
			switch msg.Reason {
			case "eof":
				m.emit(Event{Kind: Ended})
			case "error":
				m.emit(Event{Kind: Errored, Err: fmt.Errorf("mpv failed to play the source")})
			}
		}
	}

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if !closed {
		m.emit(Event{Kind: Errored, Err: fmt.Errorf("mpv IPC connection lost")})
	}
	close(m.events)
}

func (m *MPV) handleProperty(msg ipcMessage) {
	value, ok := msg.Data.(float64)
	if !ok {
		return
	}

	switch msg.Name {
	case "time-pos":
		m.mu.Lock()
		m.position = value
		m.mu.Unlock()
		m.emit(Event{Kind: Tick, Position: value})
	case "duration":
		if value <= 0 {
			return
		}
		m.mu.Lock()
		m.duration = value
		m.hasDur = true
		wasLoading := m.loading
		m.loading = false
		m.mu.Unlock()
		if wasLoading {
			m.emit(Event{Kind: Loaded, Duration: value})
		}
	}
}

// emit forwards an event, dropping ticks when the consumer lags.
// Other kinds wait for the consumer, but give up on Close so the read
// loop cannot wedge on a full channel nobody drains anymore.
func (m *MPV) emit(ev Event) {
	select {
	case m.events <- ev:
		return
	default:
	}
	if ev.Kind == Tick {
		return
	}
	select {
	case m.events <- ev:
	case <-m.quit:
	}
}

// Load replaces the current source with the given URL or path.
func (m *MPV) Load(url string) error {
	m.mu.Lock()
	m.position = 0
	m.duration = 0
	m.hasDur = false
	m.loading = true
	m.mu.Unlock()
	return m.command("loadfile", url, "replace")
}

func (m *MPV) Play() error {
	return m.command("set_property", "pause", false)
}

func (m *MPV) Pause() error {
	return m.command("set_property", "pause", true)
}

// Seek jumps to an absolute position, clamped to [0, duration].
func (m *MPV) Seek(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	m.mu.Lock()
	if m.hasDur && seconds > m.duration {
		seconds = m.duration
	}
	m.mu.Unlock()
	return m.command("seek", seconds, "absolute")
}

func (m *MPV) SetRate(rate float64) error {
	return m.command("set_property", "speed", rate)
}

// SetVolume sets the volume; the clock takes 0..1, mpv wants 0..100.
func (m *MPV) SetVolume(volume float64) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return m.command("set_property", "volume", volume*100)
}

func (m *MPV) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *MPV) Duration() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration, m.hasDur
}

func (m *MPV) Events() <-chan Event {
	return m.events
}

// Close quits mpv and releases the socket dir.
func (m *MPV) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	close(m.quit)

	m.command("quit")
	m.conn.Close()

	done := make(chan struct{})
	go func() {
		m.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		m.cmd.Process.Kill()
		<-done
	}

	os.RemoveAll(m.socketDir)
	return nil
}
