package report

import (
	"fmt"
	"math"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/metrics"
)

// DefaultSliderStep is the payload selector increment in kg.
const DefaultSliderStep = 1000

const maxSliderMarks = 25

// Option is one entry of the site selector
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Mark is a labelled tick on the payload selector
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Slider describes the dual-handle payload range selector
type Slider struct {
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Step  float64    `json:"step"`
	Value [2]float64 `json:"value"`
	Marks []Mark     `json:"marks"`
}

// Layout is everything the page needs to draw its controls
type Layout struct {
	Title       string             `json:"title"`
	Options     []Option           `json:"options"`
	DefaultSite string             `json:"default_site"`
	Slider      Slider             `json:"slider"`
	Outputs     []string           `json:"outputs"`
	Summaries   []*metrics.Summary `json:"summaries"`
}

// BuildLayout derives the control layout from the dataset.
func BuildLayout(ds *dataset.Dataset, title string, step float64, outputs []string) Layout {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = DefaultSliderStep
	}

	options := make([]Option, 0, len(ds.SiteOptions()))
	for _, site := range ds.SiteOptions() {
		options = append(options, Option{Label: site, Value: site})
	}

	b := ds.Bounds()
	return Layout{
		Title:       title,
		Options:     options,
		DefaultSite: dataset.AllSites,
		Slider: Slider{
			Min:   b.Min,
			Max:   b.Max,
			Step:  step,
			Value: [2]float64{b.Min, b.Max},
			Marks: sliderMarks(b, step),
		},
		Outputs:   outputs,
		Summaries: metrics.Summaries(ds),
	}
}

// sliderMarks places a mark on every multiple of step inside the bounds, thinning
// them out so at most maxSliderMarks are produced.
func sliderMarks(b dataset.PayloadBounds, step float64) []Mark {
	first := math.Ceil(b.Min/step) * step
	last := math.Floor(b.Max/step) * step
	if last < first {
		return []Mark{}
	}

	// span stays a float: a tiny step makes it far larger than any int.
	span := (last - first) / step
	if math.IsNaN(span) || math.IsInf(span, 0) {
		return []Mark{}
	}
	every := 1.0
	if span+1 > maxSliderMarks {
		every = math.Ceil((span + 1) / maxSliderMarks)
	}

	marks := make([]Mark, 0, maxSliderMarks)
	for i := 0.0; i <= span && len(marks) < maxSliderMarks; i += every {
		v := first + i*step
		marks = append(marks, Mark{Value: v, Label: fmt.Sprintf("%s kg", formatKg(v))})
	}
	return marks
}

func formatKg(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
