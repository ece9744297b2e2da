package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kanade/internal/catalog"
)

var (
	flagListSearch    string
	flagListCircle    string
	flagListPerformer string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog albums",
	Args:  cobra.NoArgs,
	RunE:  listRun,
}

func init() {
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "Filter by title, circle, performer or tag")
	listCmd.Flags().StringVar(&flagListCircle, "circle", "", "Filter by circle id")
	listCmd.Flags().StringVar(&flagListPerformer, "performer", "", "Filter by performer id")
}

func listRun(cmd *cobra.Command, args []string) error {
	cat, _, err := openCatalog()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	filter := catalog.Filter{
		Search:    flagListSearch,
		CircleID:  flagListCircle,
		Performer: flagListPerformer,
	}
	albums := filter.Apply(cat)
	if len(albums) == 0 {
		fmt.Println("No albums match.")
		return nil
	}

	for _, a := range albums {
		fmt.Println(formatAlbumLine(cat, store, a))
	}
	return nil
}

// formatAlbumLine renders one album summary row for plain output.
func formatAlbumLine(cat *catalog.Catalog, store ratingSource, a *catalog.Album) string {
	parts := []string{a.ID, a.Title, cat.CircleName(a.CircleID), fmt.Sprintf("%d tracks", len(a.Tracks))}
	if rating, ok := store.Rating(a.ID); ok {
		parts = append(parts, strings.Repeat("★", rating))
	}
	if a.Locked() && !store.IsUnlocked(a.ID) {
		parts = append(parts, "[locked]")
	}
	return strings.Join(parts, "  ")
}

// ratingSource is the slice of the state store the album formatter
// needs; it keeps the formatter testable without a database.
type ratingSource interface {
	Rating(albumID string) (int, bool)
	IsUnlocked(albumID string) bool
}
