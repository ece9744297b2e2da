// Package preload speculatively fetches the next track's media once
// playback nears the end of the current one, so the silent advance
// starts without a network stall. Fetched files land in a private
// temp dir and never attach to the visible clock.
package preload

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"kanade/internal/catalog"
	"kanade/internal/httputil"
	"kanade/internal/playlist"
)

// startRatio is the progress fraction at which preloading begins.
const startRatio = 0.8

// Manager owns at most one in-flight speculative fetch.
type Manager struct {
	resolve func(string) string
	client  *http.Client
	dir     string

	mu       sync.Mutex
	inflight string // audio file currently being fetched, "" when idle
	cancel   context.CancelFunc
	fetched  map[string]string // audio file -> local path
}

// NewManager creates a preload manager resolving media paths through
// the given resolver function.
func NewManager(resolve func(string) string) (*Manager, error) {
	dir, err := os.MkdirTemp("", "kanade-preload-*")
	if err != nil {
		return nil, fmt.Errorf("creating preload dir: %w", err)
	}
	return &Manager{
		resolve: resolve,
		client:  httputil.NewClient(),
		dir:     dir,
		fetched: make(map[string]string),
	}, nil
}

// MaybeStart begins preloading the next track's media when the
// current track is at least 80% played, a next track exists, and it
// is not already fetched or being fetched. Local sources need no
// preloading.
func (m *Manager) MaybeStart(album *catalog.Album, current *catalog.Track, progressRatio float64) {
	if progressRatio < startRatio {
		return
	}
	next := playlist.Next(album, current.ID)
	if next == nil {
		return
	}
	location := m.resolve(next.AudioFile)
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return
	}

	m.mu.Lock()
	if m.inflight == next.AudioFile {
		m.mu.Unlock()
		return
	}
	if _, done := m.fetched[next.AudioFile]; done {
		m.mu.Unlock()
		return
	}
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.inflight = next.AudioFile
	m.cancel = cancel
	m.mu.Unlock()

	go m.fetch(ctx, next.AudioFile, location)
}

func (m *Manager) fetch(ctx context.Context, audioFile, location string) {
	data, err := httputil.Fetch(ctx, m.client, location)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inflight != audioFile {
		// superseded or cleared while fetching; discard
		return
	}
	m.inflight = ""
	m.cancel = nil
	if err != nil {
		return
	}

	local := filepath.Join(m.dir, httputil.SanitizeFilename(audioFile))
	if err := os.WriteFile(local, data, 0600); err != nil {
		return
	}
	m.fetched[audioFile] = local
}

// Fetched returns the local path of a preloaded audio file, if the
// fetch completed.
func (m *Manager) Fetched(audioFile string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path, ok := m.fetched[audioFile]
	return path, ok
}

// Clear drops any in-flight preload. Called on track end or explicit
// track change so the speculative fetch does not leak.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.inflight = ""
}

// Close clears any in-flight fetch and removes the preload dir.
func (m *Manager) Close() {
	m.Clear()
	os.RemoveAll(m.dir)
}
