// Package metrics provides the filters and aggregations the dashboard charts are
// computed from. Every function is pure over a read-only dataset.
package metrics

import (
	"fmt"

	"github.com/lamim/launch-dash/internal/dataset"
)

// Outcome labels used when a single site is selected.
const (
	LabelSuccess = "success"
	LabelFailure = "failure"
)

// SuccessCount is one slice of the success distribution
type SuccessCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SuccessDistribution is an ordered mapping of category label to launch count.
// Proportions are left to the renderer.
type SuccessDistribution struct {
	Site   string         `json:"site"`
	Title  string         `json:"title"`
	Counts []SuccessCount `json:"counts"`
}

// Total returns the sum of all counts.
func (d SuccessDistribution) Total() int {
	total := 0
	for _, c := range d.Counts {
		total += c.Count
	}
	return total
}

// Count returns the count for label, or zero when the label is absent.
func (d SuccessDistribution) Count(label string) int {
	for _, c := range d.Counts {
		if c.Label == label {
			return c.Count
		}
	}
	return 0
}

// AsMap returns the distribution as a plain map.
func (d SuccessDistribution) AsMap() map[string]int {
	m := make(map[string]int, len(d.Counts))
	for _, c := range d.Counts {
		m[c.Label] = c.Count
	}
	return m
}

// SuccessTitle returns the pie chart title for a site filter.
func SuccessTitle(site string) string {
	if site == dataset.AllSites {
		return "Launch Successes, all sites"
	}
	return fmt.Sprintf("Launch Successes and Failures, %s", site)
}

// AggregateSuccess computes the success distribution for a site filter.
//
// For AllSites it counts successful launches per site; sites without a success
// are absent. For a single site it counts that site's launches as "success" or
// "failure"; labels with no launches are absent. A filter that is neither
// AllSites nor a known site returns an error wrapping dataset.ErrInvalidFilter.
func AggregateSuccess(ds *dataset.Dataset, site string) (SuccessDistribution, error) {
	if err := ds.ValidateSite(site); err != nil {
		return SuccessDistribution{}, err
	}

	dist := SuccessDistribution{
		Site:   site,
		Title:  SuccessTitle(site),
		Counts: []SuccessCount{},
	}

	if site == dataset.AllSites {
		bySite := make(map[string]int)
		ds.Each(func(r dataset.Record) {
			if r.Success() {
				bySite[r.Site]++
			}
		})
		for _, s := range ds.Sites() {
			if n := bySite[s]; n > 0 {
				dist.Counts = append(dist.Counts, SuccessCount{Label: s, Count: n})
			}
		}
		return dist, nil
	}

	var successes, failures int
	ds.Each(func(r dataset.Record) {
		if r.Site != site {
			return
		}
		if r.Success() {
			successes++
		} else {
			failures++
		}
	})
	if successes > 0 {
		dist.Counts = append(dist.Counts, SuccessCount{Label: LabelSuccess, Count: successes})
	}
	if failures > 0 {
		dist.Counts = append(dist.Counts, SuccessCount{Label: LabelFailure, Count: failures})
	}
	return dist, nil
}
