package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"kanade/internal/httputil"
)

// Catalog is the read-once album table. It is loaded during startup
// and never re-fetched within a session.
type Catalog struct {
	Albums     []Album              `json:"albums"`
	Circles    map[string]Circle    `json:"circles"`
	Performers map[string]Performer `json:"performers"`
}

// Load reads the catalog feed from a local file path or a URL. URL
// schemes beyond https (a loopback http server, say) are vetted by
// the HTTP client, not here.
func Load(source string) (*Catalog, error) {
	var data []byte
	var err error

	if strings.Contains(source, "://") {
		client := httputil.NewClient()
		data, err = httputil.GetJSON(client, source)
		if err != nil {
			return nil, fmt.Errorf("fetching catalog: %w", err)
		}
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
	}

	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Albums))
	for i := range c.Albums {
		a := &c.Albums[i]
		if a.ID == "" {
			return fmt.Errorf("album %d has no id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate album id %q", a.ID)
		}
		seen[a.ID] = true

		trackSeen := make(map[int]bool, len(a.Tracks))
		for _, t := range a.Tracks {
			if trackSeen[t.ID] {
				return fmt.Errorf("album %q: duplicate track id %d", a.ID, t.ID)
			}
			trackSeen[t.ID] = true
			if t.AudioFile == "" {
				return fmt.Errorf("album %q: track %d has no audio file", a.ID, t.ID)
			}
		}
	}
	return nil
}

// Album returns the album with the given id, or nil.
func (c *Catalog) Album(id string) *Album {
	for i := range c.Albums {
		if c.Albums[i].ID == id {
			return &c.Albums[i]
		}
	}
	return nil
}

// CircleName resolves a circle id to its display name, falling back
// to the id itself.
func (c *Catalog) CircleName(id string) string {
	if circle, ok := c.Circles[id]; ok {
		return circle.Name
	}
	return id
}

// PerformerName resolves a performer id to its display name, falling
// back to the id itself.
func (c *Catalog) PerformerName(id string) string {
	if p, ok := c.Performers[id]; ok {
		return p.Name
	}
	return id
}

// PerformerNames resolves an album's performer ids to display names.
func (c *Catalog) PerformerNames(a *Album) []string {
	names := make([]string, 0, len(a.PerformerIDs))
	for _, id := range a.PerformerIDs {
		names = append(names, c.PerformerName(id))
	}
	return names
}
