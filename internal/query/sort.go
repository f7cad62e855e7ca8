package query

import (
	"sort"
	"time"

	"github.com/agentmart/agentmart/internal/store"
)

// recentWindow is the HotNow recency promotion window.
const recentWindow = 7 * 24 * time.Hour

// sortRecords orders the working set in place according to the
// strategy. SortNone and SortFree leave store order untouched. The sort
// is stable so that equal records keep their store order.
func sortRecords(strategy SortStrategy, recs []*store.AgentRecord, now time.Time) {
	switch strategy {
	case SortHotNow:
		sort.SliceStable(recs, func(i, j int) bool {
			return hotNowLess(recs[i], recs[j], now)
		})
	case SortTopRated:
		sort.SliceStable(recs, func(i, j int) bool {
			return topRatedLess(recs[i], recs[j])
		})
	case SortNewest:
		sort.SliceStable(recs, func(i, j int) bool {
			return newestLess(recs[i], recs[j])
		})
	}
}

// hotNowLess promotes records created within the recency window: recent
// before old, recent ties by date then popularity. Outside the window
// popularity rules, with the creation date as tiebreak; records with no
// resolvable date sort last and order among themselves by popularity.
func hotNowLess(a, b *store.AgentRecord, now time.Time) bool {
	aCreated, aOK := a.CreatedTime()
	bCreated, bOK := b.CreatedTime()

	aRecent := aOK && now.Sub(aCreated) <= recentWindow
	bRecent := bOK && now.Sub(bCreated) <= recentWindow

	if aRecent != bRecent {
		return aRecent
	}

	if aRecent {
		if !aCreated.Equal(bCreated) {
			return aCreated.After(bCreated)
		}
		return a.Popularity > b.Popularity
	}

	if aOK != bOK {
		return aOK
	}
	if a.Popularity != b.Popularity {
		return a.Popularity > b.Popularity
	}
	return aCreated.After(bCreated)
}

// topRatedLess orders by rating average descending, ties by rating
// count descending.
func topRatedLess(a, b *store.AgentRecord) bool {
	if a.RatingAverage() != b.RatingAverage() {
		return a.RatingAverage() > b.RatingAverage()
	}
	return a.RatingCount() > b.RatingCount()
}

// newestLess orders by creation date descending. Unresolvable dates are
// the zero time and naturally sort last.
func newestLess(a, b *store.AgentRecord) bool {
	return a.CreatedAt.After(b.CreatedAt)
}
