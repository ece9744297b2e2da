package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kanade/internal/catalog"
	"kanade/internal/state"
	"kanade/internal/ui"
)

var playCmd = &cobra.Command{
	Use:   "play <album-id> [track-id]",
	Short: "Play an album, optionally starting at a specific track",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  playRun,
}

func playRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	album := a.cat.Album(args[0])
	if album == nil {
		return fmt.Errorf("unknown album %q", args[0])
	}
	if len(album.Tracks) == 0 {
		return fmt.Errorf("album %q has no tracks", album.ID)
	}

	trackID := album.Tracks[0].ID
	if len(args) == 2 {
		trackID, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("track id %q is not a number", args[1])
		}
		if album.Track(trackID) == nil {
			return fmt.Errorf("album %q has no track %d", album.ID, trackID)
		}
	}

	if err := unlockAlbum(a.store, album); err != nil {
		return err
	}

	return ui.Run(ui.Options{
		Catalog:      a.cat,
		Session:      a.sess,
		Store:        a.store,
		Relay:        a.relay,
		Logger:       a.log,
		Album:        album,
		StartTrackID: trackID,
	})
}

// unlockAlbum prompts for a locked album's password without echoing
// it, and persists a successful unlock.
func unlockAlbum(store *state.Store, album *catalog.Album) error {
	if !album.Locked() || store.IsUnlocked(album.ID) {
		return nil
	}

	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(os.Stderr, "Password for %q: ", album.Title)
		entered, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		if album.CheckPassword(string(entered)) {
			return store.Unlock(album.ID)
		}
		fmt.Fprintln(os.Stderr, "Wrong password.")
	}
	return fmt.Errorf("album %q remains locked", album.ID)
}
