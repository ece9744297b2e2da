package state

import (
	"fmt"
	"time"
)

// historyCap bounds the play history to the most recent entries.
const historyCap = 5

// HistoryEntry is one row of the most-recent-first play history.
type HistoryEntry struct {
	AlbumID  string
	TrackID  int
	PlayedAt time.Time
}

// RecordPlay inserts a play into the history. Re-playing an existing
// (album, track) moves it to the front instead of duplicating, and
// the history is trimmed to its cap afterwards.
func (s *Store) RecordPlay(albumID string, trackID int) error {
	_, err := s.db.Exec(`
		INSERT INTO history (album_id, track_id, played_at)
		VALUES (?, ?, ?)
		ON CONFLICT(album_id, track_id) DO UPDATE SET
			played_at = excluded.played_at
	`, albumID, trackID, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("recording play: %w", err)
	}

	_, err = s.db.Exec(`
		DELETE FROM history WHERE (album_id, track_id) NOT IN (
			SELECT album_id, track_id FROM history
			ORDER BY played_at DESC LIMIT ?
		)
	`, historyCap)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}
	return nil
}

// History returns the play history, most recent first.
func (s *Store) History() ([]HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT album_id, track_id, played_at FROM history
		ORDER BY played_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var playedAt int64
		if err := rows.Scan(&e.AlbumID, &e.TrackID, &playedAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.PlayedAt = time.Unix(0, playedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
