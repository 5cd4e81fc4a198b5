// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/secprep/internal/model"
)

const sparkChars = " .:-=+*#%@"

// DomainAverages summarizes every domain with recorded scores. Weighted
// domains come first in table order, then any others by name.
func DomainAverages(p model.StudyProgress, weights []model.DomainWeight) []model.DomainAverage {
	out := make([]model.DomainAverage, 0, len(p.DomainScores))
	seen := map[string]struct{}{}
	for _, dw := range weights {
		scores, ok := p.DomainScores[dw.Name]
		if !ok || len(scores) == 0 {
			continue
		}
		seen[dw.Name] = struct{}{}
		out = append(out, model.DomainAverage{
			Domain:   dw.Name,
			Average:  Mean(scores),
			Attempts: len(scores),
			Weight:   dw.Weight,
		})
	}
	var extra []string
	for domain, scores := range p.DomainScores {
		if _, ok := seen[domain]; ok || len(scores) == 0 {
			continue
		}
		extra = append(extra, domain)
	}
	sort.Strings(extra)
	for _, domain := range extra {
		scores := p.DomainScores[domain]
		out = append(out, model.DomainAverage{Domain: domain, Average: Mean(scores), Attempts: len(scores)})
	}
	return out
}

// OverallDomainAverage is the mean of every recorded domain percentage.
func OverallDomainAverage(p model.StudyProgress) float64 {
	var sum float64
	n := 0
	for _, scores := range p.DomainScores {
		for _, s := range scores {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Trend returns the last n scores recorded for domain (all when n <= 0).
func Trend(p model.StudyProgress, domain string, n int) []float64 {
	scores := p.DomainScores[domain]
	if n > 0 && len(scores) > n {
		scores = scores[len(scores)-n:]
	}
	out := make([]float64, len(scores))
	copy(out, scores)
	return out
}

// ShortDomain keeps the last two words of a domain name for narrow columns.
func ShortDomain(domain string) string {
	fields := strings.Fields(domain)
	if len(fields) <= 2 {
		return domain
	}
	return strings.Join(fields[len(fields)-2:], " ")
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline on a fixed 0-100 scale.
func Sparkline(values []float64) string {
	var b strings.Builder
	for _, v := range values {
		pos := clampPercent(v) / 100
		b.WriteByte(sparkChars[int(math.Round(pos*float64(len(sparkChars)-1)))])
	}
	return b.String()
}

// RenderSummary prints the headline progress numbers.
func RenderSummary(w io.Writer, p model.StudyProgress) error {
	lines := []string{
		"Summary",
		fmt.Sprintf("Quizzes taken: %d", p.TotalQuizzes),
		fmt.Sprintf("Avg correct per quiz: %.2f", p.AverageScore),
		fmt.Sprintf("Avg domain score: %.1f%%", OverallDomainAverage(p)),
		fmt.Sprintf("Flashcards studied: %d", p.FlashcardsStudied),
		fmt.Sprintf("Last study: %s", p.LastStudyDate.Local().Format("2006-01-02 15:04")),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderDomainTable prints per-domain averages.
func RenderDomainTable(w io.Writer, averages []model.DomainAverage, scores map[string][]float64) error {
	if len(averages) == 0 {
		_, err := fmt.Fprintln(w, "No domain scores yet. Take a quiz first.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Domains"); err != nil {
		return err
	}
	headers := []string{"Domain", "Weight", "Attempts", "Average", "Status", "Recent"}
	rows := make([][]string, 0, len(averages))
	for _, avg := range averages {
		status := "ok"
		if avg.Average < WeakThreshold {
			status = "weak"
		}
		weight := "-"
		if avg.Weight > 0 {
			weight = fmt.Sprintf("%d%%", avg.Weight)
		}
		rows = append(rows, []string{
			avg.Domain,
			weight,
			fmt.Sprintf("%d", avg.Attempts),
			fmt.Sprintf("%.1f%%", avg.Average),
			status,
			Sparkline(lastN(scores[avg.Domain], 10)),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderWeakDomains lists weak domains with their averages.
func RenderWeakDomains(w io.Writer, weak []string, averages []model.DomainAverage) error {
	if len(weak) == 0 {
		_, err := fmt.Fprintln(w, "No weak domains. Keep it up.")
		return err
	}
	byDomain := map[string]model.DomainAverage{}
	for _, avg := range averages {
		byDomain[avg.Domain] = avg
	}
	if _, err := fmt.Fprintf(w, "Needs work (below %.0f%%)\n", WeakThreshold); err != nil {
		return err
	}
	for i, domain := range weak {
		if _, err := fmt.Fprintf(w, "%d. %s  %.1f%%\n", i+1, domain, byDomain[domain].Average); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrends plots the recent score history of the given domains.
func RenderTrends(w io.Writer, p model.StudyProgress, domains []string, last, window, totalWidth, height int, useColor bool) error {
	series := make([]Series, 0, len(domains))
	for _, domain := range domains {
		values := MovingAverage(Trend(p, domain, last), window)
		if len(values) == 0 {
			continue
		}
		series = append(series, Series{Name: ShortDomain(domain), Values: values})
	}
	if len(series) == 0 {
		_, err := fmt.Fprintln(w, "No score history yet.")
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Score Trends", series, width, height, useColor)
}

func lastN(values []float64, n int) []float64 {
	if len(values) > n {
		return values[len(values)-n:]
	}
	return values
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// RenderBankTable prints bank size, weight, and the expected share of a quiz
// of quizSize questions for each weighted domain.
func RenderBankTable(w io.Writer, bank []model.DomainStat, quizSize int) error {
	headers := []string{"Domain", "Weight", "Questions", fmt.Sprintf("~In %d", quizSize)}
	rows := make([][]string, 0, len(bank))
	for _, st := range bank {
		rows = append(rows, []string{
			st.Domain,
			fmt.Sprintf("%d%%", st.Weight),
			fmt.Sprintf("%d", st.Total),
			fmt.Sprintf("%d", int(math.Round(float64(quizSize*st.Weight)/100))),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
