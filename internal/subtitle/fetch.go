package subtitle

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"kanade/internal/httputil"
)

// Loader fetches per-track cue files from a remote base or the local
// filesystem. A missing file is not an error: playback proceeds with
// an empty cue list.
type Loader struct {
	client *http.Client
}

// NewLoader creates a subtitle loader.
func NewLoader() *Loader {
	return &Loader{client: httputil.NewClient()}
}

// Load fetches and parses the cue file at the resolved location. The
// context cancels an in-flight remote fetch when the session moves to
// another track. An empty location or a missing local file yields an
// empty track, not an error.
func (l *Loader) Load(ctx context.Context, location string) (*Track, error) {
	if location == "" {
		return NewTrack(nil), nil
	}

	var raw []byte
	var err error
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		raw, err = httputil.Fetch(ctx, l.client, location)
	} else {
		raw, err = os.ReadFile(location)
		if os.IsNotExist(err) {
			return NewTrack(nil), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading subtitle %s: %w", location, err)
	}

	return NewTrack(Parse(string(raw))), nil
}
