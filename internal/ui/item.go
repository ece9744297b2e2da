package ui

import (
	"fmt"
	"strings"

	"kanade/internal/catalog"
)

// albumItem adapts a catalog album for the browser list.
type albumItem struct {
	album  *catalog.Album
	circle string
	rating int
	locked bool
}

func (i albumItem) Title() string {
	title := i.album.Title
	if i.locked {
		title += " " + lockedStyle.Render("[locked]")
	}
	if i.rating > 0 {
		title += " " + statusStyle.Render(strings.Repeat("★", i.rating))
	}
	return title
}

func (i albumItem) Description() string {
	parts := []string{i.circle, fmt.Sprintf("%d tracks", len(i.album.Tracks))}
	if len(i.album.Tags) > 0 {
		parts = append(parts, strings.Join(i.album.Tags, ", "))
	}
	return strings.Join(parts, " · ")
}

func (i albumItem) FilterValue() string { return i.album.Title }

// trackItem adapts a catalog track for the track list. note carries the
// saved-progress annotation.
type trackItem struct {
	track catalog.Track
	note  string
}

func (i trackItem) Title() string { return i.track.Title }

func (i trackItem) Description() string {
	desc := i.track.Duration
	if i.track.TitleLocalized != "" {
		desc = i.track.TitleLocalized + " · " + desc
	}
	if i.note != "" {
		desc += " · " + i.note
	}
	return desc
}

func (i trackItem) FilterValue() string { return i.track.Title }
