package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyFigure is returned when a figure has no data to draw.
var ErrEmptyFigure = errors.New("figure has no data")

// Image formats supported by RenderFigure.
const (
	ImagePNG = "png"
	ImageSVG = "svg"
)

// Default image size in pixels.
const (
	DefaultImageWidth  = 1024
	DefaultImageHeight = 512
)

// ContentType returns the MIME type for an image format.
func ContentType(format string) string {
	if format == ImageSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// RenderFigure draws fig as a static image in the given format.
func RenderFigure(w io.Writer, fig Figure, format string, width, height int) error {
	if fig.Empty() {
		return ErrEmptyFigure
	}
	if width <= 0 {
		width = DefaultImageWidth
	}
	if height <= 0 {
		height = DefaultImageHeight
	}

	var rp chart.RendererProvider
	switch format {
	case ImagePNG:
		rp = chart.PNG
	case ImageSVG:
		rp = chart.SVG
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}

	switch f := fig.(type) {
	case *PieFigure:
		return renderPie(w, f, rp, width, height)
	case *ScatterFigure:
		return renderScatter(w, f, rp, width, height)
	default:
		return fmt.Errorf("cannot render %s figure", fig.Kind())
	}
}

func renderPie(w io.Writer, fig *PieFigure, rp chart.RendererProvider, width, height int) error {
	values := make([]chart.Value, 0, len(fig.Values))
	for i, v := range fig.Values {
		if v == 0 {
			continue
		}
		pct := float64(v) / float64(fig.Total) * 100
		values = append(values, chart.Value{
			Value: float64(v),
			Label: fmt.Sprintf("%s %.1f%%", fig.Labels[i], pct),
			Style: chart.Style{FillColor: chart.GetDefaultColor(i)},
		})
	}

	pie := chart.PieChart{
		Title:  fig.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	if err := pie.Render(rp, w); err != nil {
		return fmt.Errorf("rendering pie chart: %w", err)
	}
	return nil
}

func renderScatter(w io.Writer, fig *ScatterFigure, rp chart.RendererProvider, width, height int) error {
	maxSize := fig.MaxSize
	dotWidth := func(_, _ chart.Range, _ int, x, _ float64) float64 {
		if maxSize <= 0 {
			return 4
		}
		return 3 + 9*x/maxSize
	}

	series := make([]chart.Series, 0, len(fig.Series))
	for i, s := range fig.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j] = p.X
			ys[j] = float64(p.Y)
		}
		color := chart.GetDefaultColor(i).WithAlpha(180)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(color, dotWidth),
		})
	}

	low, high := fig.Low, fig.High
	if high <= low {
		high = low + 1
	}

	graph := chart.Chart{
		Title:  fig.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  fig.XLabel,
			Range: &chart.ContinuousRange{Min: low, Max: high},
		},
		YAxis: chart.YAxis{
			Name:  fig.YLabel,
			Range: &chart.ContinuousRange{Min: -0.5, Max: 1.5},
			Ticks: []chart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	if err := graph.Render(rp, w); err != nil {
		return fmt.Errorf("rendering scatter chart: %w", err)
	}
	return nil
}

func pointStyle(col drawing.Color, width chart.SizeProvider) chart.Style {
	return chart.Style{
		StrokeWidth:      chart.Disabled,
		DotColor:         col,
		DotWidth:         4,
		DotWidthProvider: width,
	}
}
