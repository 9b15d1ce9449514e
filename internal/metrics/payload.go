package metrics

import "github.com/lamim/launch-dash/internal/dataset"

// FilterByPayload returns the records whose payload lies strictly between low and
// high and whose site matches site (any site for dataset.AllSites), in dataset
// order. It never fails: no match, an out-of-range window or low > high give an
// empty slice.
func FilterByPayload(ds *dataset.Dataset, site string, low, high float64) []dataset.Record {
	out := []dataset.Record{}
	ds.Each(func(r dataset.Record) {
		if matches(r, site, low, high) {
			out = append(out, r)
		}
	})
	return out
}

// FilterRecords applies the FilterByPayload predicate to an arbitrary record slice.
func FilterRecords(records []dataset.Record, site string, low, high float64) []dataset.Record {
	out := []dataset.Record{}
	for _, r := range records {
		if matches(r, site, low, high) {
			out = append(out, r)
		}
	}
	return out
}

// Boundary-equal payloads are excluded on both ends.
func matches(r dataset.Record, site string, low, high float64) bool {
	if r.PayloadMassKg <= low || r.PayloadMassKg >= high {
		return false
	}
	return site == dataset.AllSites || r.Site == site
}
