// Package dataset loads the launch records table and exposes it as an immutable,
// explicitly passed value.
package dataset

import (
	"fmt"
	"math"
)

// AllSites is the site option that disables site filtering.
const AllSites = "ALL"

// Column headers read from the input table.
const (
	ColumnSite            = "Launch Site"
	ColumnPayload         = "Payload Mass (kg)"
	ColumnClass           = "class"
	ColumnBoosterVersion  = "Booster Version"
	ColumnFlightNumber    = "Flight Number"
	ColumnBoosterCategory = "Booster Version Category"
	ColumnMissionOutcome  = "Mission Outcome"
)

// RequiredColumns lists the headers every input table must carry.
var RequiredColumns = []string{ColumnSite, ColumnPayload, ColumnClass, ColumnBoosterVersion}

// Record is one launch row
type Record struct {
	Site            string  `json:"site"`
	PayloadMassKg   float64 `json:"payload_mass_kg"`
	Class           int     `json:"class"`
	BoosterVersion  string  `json:"booster_version"`
	FlightNumber    int     `json:"flight_number,omitempty"`
	BoosterCategory string  `json:"booster_category,omitempty"`
	MissionOutcome  string  `json:"mission_outcome,omitempty"`
}

// Success reports whether the launch outcome class is 1.
func (r Record) Success() bool {
	return r.Class == 1
}

// PayloadBounds is the observed payload range of a dataset
type PayloadBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Dataset is an ordered, read-only table of launch records together with the
// values derived from it at construction time.
type Dataset struct {
	source  string
	records []Record
	sites   []string
	siteSet map[string]struct{}
	bounds  PayloadBounds
}

// New validates records and builds a Dataset from them. The slice is copied.
func New(records []Record) (*Dataset, error) {
	return build("", records)
}

func build(source string, records []Record) (*Dataset, error) {
	ds := &Dataset{
		source:  source,
		records: make([]Record, len(records)),
		siteSet: make(map[string]struct{}),
	}
	copy(ds.records, records)

	for i, r := range ds.records {
		if err := validateRecord(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, seen := ds.siteSet[r.Site]; !seen {
			ds.siteSet[r.Site] = struct{}{}
			ds.sites = append(ds.sites, r.Site)
		}
		if i == 0 {
			ds.bounds = PayloadBounds{Min: r.PayloadMassKg, Max: r.PayloadMassKg}
			continue
		}
		ds.bounds.Min = math.Min(ds.bounds.Min, r.PayloadMassKg)
		ds.bounds.Max = math.Max(ds.bounds.Max, r.PayloadMassKg)
	}

	return ds, nil
}

func validateRecord(r Record) error {
	if r.Site == "" {
		return &SchemaError{Column: ColumnSite, Reason: "site must not be empty"}
	}
	if r.Class != 0 && r.Class != 1 {
		return &SchemaError{Column: ColumnClass, Value: fmt.Sprint(r.Class), Reason: "class must be 0 or 1"}
	}
	if math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0) || r.PayloadMassKg < 0 {
		return &SchemaError{Column: ColumnPayload, Value: fmt.Sprint(r.PayloadMassKg), Reason: "payload must be a finite non-negative number"}
	}
	return nil
}

// Source returns the path the dataset was loaded from, if any.
func (d *Dataset) Source() string {
	return d.source
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the records in their original order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Each calls fn for every record in order without copying the table.
func (d *Dataset) Each(fn func(Record)) {
	for _, r := range d.records {
		fn(r)
	}
}

// Sites returns the distinct sites in first-encountered order.
func (d *Dataset) Sites() []string {
	out := make([]string, len(d.sites))
	copy(out, d.sites)
	return out
}

// SiteOptions returns the values offered by the site selector: AllSites first,
// then every distinct site.
func (d *Dataset) SiteOptions() []string {
	out := make([]string, 0, len(d.sites)+1)
	out = append(out, AllSites)
	return append(out, d.sites...)
}

// HasSite reports whether site occurs in the dataset.
func (d *Dataset) HasSite(site string) bool {
	_, ok := d.siteSet[site]
	return ok
}

// ValidateSite returns an error wrapping ErrInvalidFilter unless site is AllSites
// or a site present in the dataset.
func (d *Dataset) ValidateSite(site string) error {
	if site == AllSites || d.HasSite(site) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidFilter, site)
}

// Bounds returns the payload range of the dataset.
func (d *Dataset) Bounds() PayloadBounds {
	return d.bounds
}

// HasCategories reports whether any record carries a booster version category.
func (d *Dataset) HasCategories() bool {
	for _, r := range d.records {
		if r.BoosterCategory != "" {
			return true
		}
	}
	return false
}
