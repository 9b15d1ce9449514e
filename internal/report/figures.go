// Package report turns filtered and aggregated launch data into chart figures and
// renders them as a dashboard page, static images, and export files.
package report

import (
	"fmt"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/metrics"
)

// Color dimensions for the scatter chart.
const (
	ColorByBoosterVersion  = "booster_version"
	ColorByBoosterCategory = "booster_category"
)

// Filters is the state of the dashboard controls
type Filters struct {
	Site string  `json:"site"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DefaultFilters selects every site and the full payload range.
func DefaultFilters(ds *dataset.Dataset) Filters {
	b := ds.Bounds()
	return Filters{Site: dataset.AllSites, Low: b.Min, High: b.Max}
}

// Figure is chart-ready data for one dashboard output.
type Figure interface {
	Kind() string
	Heading() string
	Empty() bool
}

// PieFigure is the success distribution as pie slices
type PieFigure struct {
	Type   string   `json:"type"`
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Total  int      `json:"total"`
}

func (p *PieFigure) Kind() string    { return "pie" }
func (p *PieFigure) Heading() string { return p.Title }
func (p *PieFigure) Empty() bool     { return p.Total == 0 }

// ScatterPoint is one launch plotted as payload (x) against outcome class (y),
// sized by payload.
type ScatterPoint struct {
	X              float64 `json:"x"`
	Y              int     `json:"y"`
	Size           float64 `json:"size"`
	Site           string  `json:"site"`
	BoosterVersion string  `json:"booster_version"`
	FlightNumber   int     `json:"flight_number,omitempty"`
	MissionOutcome string  `json:"mission_outcome,omitempty"`
}

// ScatterSeries groups the points sharing one color value
type ScatterSeries struct {
	Name   string         `json:"name"`
	Points []ScatterPoint `json:"points"`
}

// ScatterFigure is the payload vs. outcome chart
type ScatterFigure struct {
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	XLabel  string          `json:"x_label"`
	YLabel  string          `json:"y_label"`
	ColorBy string          `json:"color_by"`
	Low     float64         `json:"low"`
	High    float64         `json:"high"`
	MaxSize float64         `json:"max_size"`
	Count   int             `json:"count"`
	Series  []ScatterSeries `json:"series"`
}

func (s *ScatterFigure) Kind() string    { return "scatter" }
func (s *ScatterFigure) Heading() string { return s.Title }
func (s *ScatterFigure) Empty() bool     { return s.Count == 0 }

// BuildPie computes the pie figure for a site filter.
func BuildPie(ds *dataset.Dataset, site string) (*PieFigure, error) {
	dist, err := metrics.AggregateSuccess(ds, site)
	if err != nil {
		return nil, err
	}

	fig := &PieFigure{
		Type:   "pie",
		Title:  dist.Title,
		Labels: make([]string, 0, len(dist.Counts)),
		Values: make([]int, 0, len(dist.Counts)),
		Total:  dist.Total(),
	}
	for _, c := range dist.Counts {
		fig.Labels = append(fig.Labels, c.Label)
		fig.Values = append(fig.Values, c.Count)
	}
	return fig, nil
}

// ScatterTitle returns the scatter chart title for a site filter.
func ScatterTitle(site string) string {
	if site == dataset.AllSites {
		return "Payload vs. Launch Outcome, all sites"
	}
	return fmt.Sprintf("Payload vs. Launch Outcome, %s", site)
}

// BuildScatter computes the scatter figure for the given filters. Points are
// grouped into one series per color value in first-seen order; overlapping
// points are kept.
func BuildScatter(ds *dataset.Dataset, f Filters, colorBy string) (*ScatterFigure, error) {
	if err := ds.ValidateSite(f.Site); err != nil {
		return nil, err
	}
	if colorBy == ColorByBoosterCategory && !ds.HasCategories() {
		colorBy = ColorByBoosterVersion
	}
	if colorBy != ColorByBoosterCategory {
		colorBy = ColorByBoosterVersion
	}

	fig := &ScatterFigure{
		Type:    "scatter",
		Title:   ScatterTitle(f.Site),
		XLabel:  dataset.ColumnPayload,
		YLabel:  dataset.ColumnClass,
		ColorBy: colorBy,
		Low:     f.Low,
		High:    f.High,
		MaxSize: ds.Bounds().Max,
		Series:  []ScatterSeries{},
	}

	index := make(map[string]int)
	for _, r := range metrics.FilterByPayload(ds, f.Site, f.Low, f.High) {
		key := r.BoosterVersion
		if colorBy == ColorByBoosterCategory {
			key = r.BoosterCategory
		}
		i, ok := index[key]
		if !ok {
			i = len(fig.Series)
			index[key] = i
			fig.Series = append(fig.Series, ScatterSeries{Name: key})
		}
		fig.Series[i].Points = append(fig.Series[i].Points, ScatterPoint{
			X:              r.PayloadMassKg,
			Y:              r.Class,
			Size:           r.PayloadMassKg,
			Site:           r.Site,
			BoosterVersion: r.BoosterVersion,
			FlightNumber:   r.FlightNumber,
			MissionOutcome: r.MissionOutcome,
		})
		fig.Count++
	}
	return fig, nil
}
