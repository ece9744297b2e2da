package state

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SetPref stores a preference value.
func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving pref %s: %w", key, err)
	}
	return nil
}

// Pref returns a preference value, if set.
func (s *Store) Pref(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM prefs WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Preference keys.
const (
	prefRate       = "playback_rate"
	prefVolume     = "volume"
	prefSubtitles  = "subtitles_enabled"
	prefLastPlayed = "last_played"
)

// SetPlaybackRate persists the playback rate preference.
func (s *Store) SetPlaybackRate(rate float64) error {
	return s.SetPref(prefRate, strconv.FormatFloat(rate, 'f', -1, 64))
}

// PlaybackRate returns the persisted playback rate, defaulting to 1.
func (s *Store) PlaybackRate() float64 {
	if v, ok := s.Pref(prefRate); ok {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate > 0 {
			return rate
		}
	}
	return 1.0
}

// SetVolume persists the volume preference (0..1).
func (s *Store) SetVolume(v float64) error {
	return s.SetPref(prefVolume, strconv.FormatFloat(v, 'f', -1, 64))
}

// Volume returns the persisted volume, defaulting to 1.
func (s *Store) Volume() float64 {
	if v, ok := s.Pref(prefVolume); ok {
		if vol, err := strconv.ParseFloat(v, 64); err == nil && vol >= 0 && vol <= 1 {
			return vol
		}
	}
	return 1.0
}

// SetSubtitlesEnabled persists the subtitle toggle.
func (s *Store) SetSubtitlesEnabled(enabled bool) error {
	return s.SetPref(prefSubtitles, strconv.FormatBool(enabled))
}

// SubtitlesEnabled returns the persisted subtitle toggle, defaulting
// to true.
func (s *Store) SubtitlesEnabled() bool {
	if v, ok := s.Pref(prefSubtitles); ok {
		return v != "false"
	}
	return true
}

// SetLastPlayed stores the last-played pointer.
func (s *Store) SetLastPlayed(albumID string, trackID int) error {
	return s.SetPref(prefLastPlayed, fmt.Sprintf("%s/%d", albumID, trackID))
}

// LastPlayed returns the last-played pointer, if any.
func (s *Store) LastPlayed() (albumID string, trackID int, ok bool) {
	v, ok := s.Pref(prefLastPlayed)
	if !ok {
		return "", 0, false
	}
	idx := strings.LastIndex(v, "/")
	if idx <= 0 {
		return "", 0, false
	}
	id, err := strconv.Atoi(v[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return v[:idx], id, true
}

// SetRating stores a 1-5 album rating.
func (s *Store) SetRating(albumID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d out of range 1-5", rating)
	}
	_, err := s.db.Exec(`
		INSERT INTO ratings (album_id, rating, rated_at) VALUES (?, ?, ?)
		ON CONFLICT(album_id) DO UPDATE SET
			rating = excluded.rating,
			rated_at = excluded.rated_at
	`, albumID, rating, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saving rating: %w", err)
	}
	return nil
}

// Rating returns an album's rating, if rated.
func (s *Store) Rating(albumID string) (int, bool) {
	var rating int
	err := s.db.QueryRow("SELECT rating FROM ratings WHERE album_id = ?", albumID).Scan(&rating)
	if err != nil {
		return 0, false
	}
	return rating, true
}

// Unlock records a successful password entry for an album.
func (s *Store) Unlock(albumID string) error {
	_, err := s.db.Exec(`
		INSERT INTO unlocked (album_id, unlocked_at) VALUES (?, ?)
		ON CONFLICT(album_id) DO NOTHING
	`, albumID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("recording unlock: %w", err)
	}
	return nil
}

// IsUnlocked reports whether an album has been unlocked before.
func (s *Store) IsUnlocked(albumID string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM unlocked WHERE album_id = ?", albumID).Scan(&one)
	return err == nil
}
