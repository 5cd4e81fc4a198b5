package stats

import (
	"sort"

	"github.com/verte-zerg/secprep/internal/model"
)

// WeakThreshold is the domain average (percent) below which a domain is weak.
const WeakThreshold = 70.0

// WeakDomains returns domains whose mean score is below threshold, weakest
// first. Domains with no recorded scores are skipped.
func WeakDomains(scores map[string][]float64, threshold float64) []string {
	candidates := make([]model.DomainAverage, 0, len(scores))
	for domain, values := range scores {
		if len(values) == 0 {
			continue
		}
		avg := Mean(values)
		if avg < threshold {
			candidates = append(candidates, model.DomainAverage{Domain: domain, Average: avg, Attempts: len(values)})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Average == candidates[j].Average {
			return candidates[i].Domain < candidates[j].Domain
		}
		return candidates[i].Average < candidates[j].Average
	})
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Domain)
	}
	return out
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
