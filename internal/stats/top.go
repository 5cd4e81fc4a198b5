package stats

import (
	"sort"

	"github.com/verte-zerg/secprep/internal/model"
)

// MostPracticed returns the top n domains by number of recorded attempts.
func MostPracticed(averages []model.DomainAverage, n int) []string {
	if n <= 0 || len(averages) == 0 {
		return nil
	}
	items := make([]model.DomainAverage, len(averages))
	copy(items, averages)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Attempts == items[j].Attempts {
			return items[i].Domain < items[j].Domain
		}
		return items[i].Attempts > items[j].Attempts
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for _, item := range items[:n] {
		out = append(out, item.Domain)
	}
	return out
}
