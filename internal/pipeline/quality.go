package pipeline

import (
	"fmt"
	"math"
	"sort"

	"optilink/internal"
)

// Quality tier boundaries over similarity scores.
const (
	tierHighMin   = 90.0
	tierMediumMin = 80.0
)

type QualityReport struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Std    float64

	HighCount   int
	MediumCount int
	LowCount    int

	HighShare float64
	Verdict   string
}

// AnalyzeQuality computes descriptive statistics and tier counts over match
// results. Purely reporting; the matches themselves are never altered.
func AnalyzeQuality(matches []internal.MatchResult) QualityReport {
	report := QualityReport{Count: len(matches)}
	if len(matches) == 0 {
		report.Verdict = "Low"
		return report
	}

	scores := make([]float64, 0, len(matches))
	for _, m := range matches {
		scores = append(scores, m.SimilarityScore)
	}
	sort.Float64s(scores)

	report.Min = scores[0]
	report.Max = scores[len(scores)-1]
	report.Median = median(scores)

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	report.Mean = sum / float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		variance += (s - report.Mean) * (s - report.Mean)
	}
	if len(scores) > 1 {
		// Sample standard deviation, matching the reference statistics.
		report.Std = math.Sqrt(variance / float64(len(scores)-1))
	}

	for _, s := range scores {
		switch {
		case s >= tierHighMin:
			report.HighCount++
		case s >= tierMediumMin:
			report.MediumCount++
		default:
			report.LowCount++
		}
	}

	report.HighShare = float64(report.HighCount) / float64(report.Count) * 100
	report.Verdict = verdict(report.HighShare)
	return report
}

func verdict(highShare float64) string {
	switch {
	case highShare >= 70:
		return "Excellent"
	case highShare >= 50:
		return "Good"
	case highShare >= 30:
		return "Moderate"
	default:
		return "Low"
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Print writes the analyzer output in the console format the downstream
// review workflow expects.
func (r QualityReport) Print() {
	fmt.Printf("match quality: count=%d mean=%.2f median=%.2f min=%.2f max=%.2f std=%.2f\n",
		r.Count, r.Mean, r.Median, r.Min, r.Max, r.Std)
	fmt.Printf("tiers: high(>=90)=%d medium(80-89)=%d low(<80)=%d\n", r.HighCount, r.MediumCount, r.LowCount)
	fmt.Printf("verdict: %s (%.1f%% high quality)\n", r.Verdict, r.HighShare)
}
