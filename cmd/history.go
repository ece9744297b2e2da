package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played tracks",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func historyRun(cmd *cobra.Command, args []string) error {
	cat, _, err := openCatalog()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.History()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No history yet.")
		return nil
	}

	for _, e := range entries {
		albumTitle, trackTitle := e.AlbumID, fmt.Sprintf("track %d", e.TrackID)
		if album := cat.Album(e.AlbumID); album != nil {
			albumTitle = album.Title
			if track := album.Track(e.TrackID); track != nil {
				trackTitle = track.Title
			}
		}
		fmt.Printf("%s  %s — %s\n", e.PlayedAt.Format("2006-01-02 15:04"), albumTitle, trackTitle)
	}
	return nil
}
