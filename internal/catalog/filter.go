package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Filter selects albums from the catalog. Zero values match everything.
type Filter struct {
	Search    string // free-text query over title, circle, performers, tags
	CircleID  string
	Performer string // performer id
}

// Apply returns the albums matching the filter, in catalog order.
// Search matching is substring-first with a fuzzy fallback, both
// case-insensitive.
func (f Filter) Apply(c *Catalog) []*Album {
	var out []*Album
	for i := range c.Albums {
		a := &c.Albums[i]
		if f.CircleID != "" && a.CircleID != f.CircleID {
			continue
		}
		if f.Performer != "" && !containsString(a.PerformerIDs, f.Performer) {
			continue
		}
		if f.Search != "" && !f.matches(c, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (f Filter) matches(c *Catalog, a *Album) bool {
	haystack := searchable(c, a)
	query := strings.ToLower(f.Search)
	if strings.Contains(haystack, query) {
		return true
	}
	return fuzzy.MatchNormalizedFold(query, haystack)
}

// searchable builds the lowercase text an album is matched against,
// mirroring the fields a user sees on the album card.
func searchable(c *Catalog, a *Album) string {
	parts := []string{a.Title, a.TitleJP, c.CircleName(a.CircleID), a.ProductID}
	parts = append(parts, c.PerformerNames(a)...)
	parts = append(parts, a.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// TagCount is a (id, count) pair for building filter tag clouds.
type TagCount struct {
	ID    string
	Count int
}

// CircleCounts returns per-circle album counts, descending.
func (c *Catalog) CircleCounts() []TagCount {
	counts := make(map[string]int)
	for i := range c.Albums {
		counts[c.Albums[i].CircleID]++
	}
	return sortedCounts(counts)
}

// PerformerCounts returns per-performer album counts, descending.
func (c *Catalog) PerformerCounts() []TagCount {
	counts := make(map[string]int)
	for i := range c.Albums {
		for _, id := range c.Albums[i].PerformerIDs {
			counts[id]++
		}
	}
	return sortedCounts(counts)
}

func sortedCounts(counts map[string]int) []TagCount {
	out := make([]TagCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, TagCount{ID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortRecent orders albums by most recent playback activity, as
// reported by latestActivity (0 for never played). Albums with equal
// activity keep their relative catalog order.
func SortRecent(albums []*Album, latestActivity func(albumID string) int64) {
	sort.SliceStable(albums, func(i, j int) bool {
		return latestActivity(albums[i].ID) > latestActivity(albums[j].ID)
	})
}
