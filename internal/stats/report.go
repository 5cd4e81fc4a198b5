package stats

import (
	"context"

	"github.com/verte-zerg/secprep/internal/model"
)

// DefaultTrendDomains is how many domains the trend plot shows by default.
const DefaultTrendDomains = 3

// ProgressSource provides the study history to report on.
type ProgressSource interface {
	Progress(ctx context.Context) model.StudyProgress
	WeakDomains(ctx context.Context) []string
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Progress     model.StudyProgress
	Averages     []model.DomainAverage
	Weak         []string
	Bank         []model.DomainStat
	TrendDomains []string
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src ProgressSource, weights []model.DomainWeight, bank []model.DomainStat, domains []string) Report {
	p := src.Progress(ctx)
	averages := DomainAverages(p, weights)
	if len(domains) == 0 {
		domains = MostPracticed(averages, DefaultTrendDomains)
	}
	return Report{
		Progress:     p,
		Averages:     averages,
		Weak:         src.WeakDomains(ctx),
		Bank:         bank,
		TrendDomains: domains,
	}
}
