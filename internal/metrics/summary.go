package metrics

import (
	"sort"

	"github.com/lamim/launch-dash/internal/dataset"
)

// Summary contains aggregated launch figures for one site option
type Summary struct {
	Site        string  `json:"site"`
	Launches    int     `json:"launches"`
	Successes   int     `json:"successes"`
	Failures    int     `json:"failures"`
	SuccessRate float64 `json:"success_rate"` // percent

	MinPayload float64 `json:"min_payload_kg"`
	MaxPayload float64 `json:"max_payload_kg"`
	AvgPayload float64 `json:"avg_payload_kg"`
	P50Payload float64 `json:"p50_payload_kg"`

	// Launch counts per booster version
	BoosterBreakdown map[string]int `json:"booster_breakdown"`
}

// ComputeSummary computes summary figures for the records of site
// (all records for dataset.AllSites).
func ComputeSummary(records []dataset.Record, site string) *Summary {
	summary := &Summary{
		Site:             site,
		BoosterBreakdown: make(map[string]int),
	}

	var totalPayload float64
	payloads := make([]float64, 0, len(records))

	for _, r := range records {
		if site != dataset.AllSites && r.Site != site {
			continue
		}
		summary.Launches++
		if r.Success() {
			summary.Successes++
		} else {
			summary.Failures++
		}
		summary.BoosterBreakdown[r.BoosterVersion]++

		totalPayload += r.PayloadMassKg
		payloads = append(payloads, r.PayloadMassKg)

		if summary.Launches == 1 {
			summary.MinPayload = r.PayloadMassKg
			summary.MaxPayload = r.PayloadMassKg
			continue
		}
		if r.PayloadMassKg < summary.MinPayload {
			summary.MinPayload = r.PayloadMassKg
		}
		if r.PayloadMassKg > summary.MaxPayload {
			summary.MaxPayload = r.PayloadMassKg
		}
	}

	if summary.Launches > 0 {
		summary.SuccessRate = float64(summary.Successes) / float64(summary.Launches) * 100
		summary.AvgPayload = totalPayload / float64(summary.Launches)
		summary.P50Payload = calculatePercentile(payloads, 0.50)
	}

	return summary
}

// Summaries returns one summary per site option, AllSites first.
func Summaries(ds *dataset.Dataset) []*Summary {
	records := ds.Records()
	options := ds.SiteOptions()
	out := make([]*Summary, 0, len(options))
	for _, site := range options {
		out = append(out, ComputeSummary(records, site))
	}
	return out
}

// calculatePercentile returns the nearest-rank percentile of values
func calculatePercentile(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := int(float64(len(sorted)-1) * percentile)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
