package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kanade/internal/catalog"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List albums by most recent playback activity",
	Args:  cobra.NoArgs,
	RunE:  recentRun,
}

func recentRun(cmd *cobra.Command, args []string) error {
	cat, _, err := openCatalog()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	albums := catalog.Filter{}.Apply(cat)
	played := albums[:0]
	for _, a := range albums {
		if store.LatestActivity(a.ID) > 0 {
			played = append(played, a)
		}
	}
	if len(played) == 0 {
		fmt.Println("Nothing played yet.")
		return nil
	}
	catalog.SortRecent(played, store.LatestActivity)

	for _, a := range played {
		when := time.Unix(store.LatestActivity(a.ID), 0).Format("2006-01-02 15:04")
		fmt.Printf("%s  %s\n", when, formatAlbumLine(cat, store, a))
	}
	return nil
}
