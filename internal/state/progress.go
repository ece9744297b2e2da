package state

import (
	"database/sql"
	"fmt"
	"time"
)

// minSavePosition is the position below which progress is not worth
// persisting; resuming near the very start is indistinguishable from
// starting over.
const minSavePosition = 5.0

// ProgressRecord is the saved playback state of one (album, track).
type ProgressRecord struct {
	Position  float64
	Completed bool
	SavedAt   int64 // unix seconds
}

// Progress returns the saved record for a track, if any.
func (s *Store) Progress(albumID string, trackID int) (ProgressRecord, bool, error) {
	var rec ProgressRecord
	var completed int
	err := s.db.QueryRow(`
		SELECT position, completed, saved_at FROM progress
		WHERE album_id = ? AND track_id = ?
	`, albumID, trackID).Scan(&rec.Position, &completed, &rec.SavedAt)
	if err == sql.ErrNoRows {
		return ProgressRecord{}, false, nil
	}
	if err != nil {
		return ProgressRecord{}, false, fmt.Errorf("reading progress: %w", err)
	}
	rec.Completed = completed != 0
	return rec, true, nil
}

// SaveProgress records a playback position. It no-ops when the media
// duration is unknown or the position is below the save floor. For an
// existing non-completed record the stored position never moves
// backwards, so a stale tick arriving after a newer one cannot rewind
// recorded progress. Completed records are left untouched.
func (s *Store) SaveProgress(albumID string, trackID int, position, duration float64) error {
	if duration <= 0 || position < minSavePosition {
		return nil
	}

	_, err := s.db.Exec(`
		INSERT INTO progress (album_id, track_id, position, completed, saved_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT(album_id, track_id) DO UPDATE SET
			position = excluded.position,
			saved_at = excluded.saved_at
		WHERE progress.completed = 0 AND excluded.position >= progress.position
	`, albumID, trackID, position, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// MarkCompleted unconditionally marks a track finished, discarding
// the position. Completion wins over any in-flight position write.
func (s *Store) MarkCompleted(albumID string, trackID int) error {
	_, err := s.db.Exec(`
		INSERT INTO progress (album_id, track_id, position, completed, saved_at)
		VALUES (?, ?, 0, 1, ?)
		ON CONFLICT(album_id, track_id) DO UPDATE SET
			position = 0,
			completed = 1,
			saved_at = excluded.saved_at
	`, albumID, trackID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("marking completed: %w", err)
	}
	return nil
}

// LatestActivity returns the newest saved_at across all tracks of an
// album, or 0 when the album was never played. Used for the
// recently-played ordering.
func (s *Store) LatestActivity(albumID string) int64 {
	var latest sql.NullInt64
	err := s.db.QueryRow(`
		SELECT MAX(saved_at) FROM progress WHERE album_id = ?
	`, albumID).Scan(&latest)
	if err != nil || !latest.Valid {
		return 0
	}
	return latest.Int64
}
