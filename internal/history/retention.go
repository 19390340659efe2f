package history

import (
	"sort"
	"time"
)

// candidate is the slice of an entry the retention policy looks at.
type candidate struct {
	ID        int64
	CreatedAt time.Time
}

// evict computes which unpinned entries a retention pass removes: everything
// except the maxUnpinned most recent. Recency is created_at descending with
// id descending as the tie-break, so rapid insertions that land on the same
// timestamp still evict deterministically, oldest insertion first.
//
// evict is a pure function over its inputs and is idempotent: applied to a
// survivor set it returns nothing.
func evict(unpinned []candidate, maxUnpinned int) []int64 {
	if len(unpinned) <= maxUnpinned {
		return nil
	}

	sorted := make([]candidate, len(unpinned))
	copy(sorted, unpinned)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	ids := make([]int64, 0, len(sorted)-maxUnpinned)
	for _, c := range sorted[maxUnpinned:] {
		ids = append(ids, c.ID)
	}
	return ids
}
