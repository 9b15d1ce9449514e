package report

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/testutil"
)

func TestBuildLayout(t *testing.T) {
	ds := sampleDataset(t)

	l := BuildLayout(ds, "SpaceX Launch Records Dashboard", 1000, []string{OutputPie})

	if l.Options[0] != (Option{Label: dataset.AllSites, Value: dataset.AllSites}) {
		t.Errorf("expected ALL first, got %+v", l.Options[0])
	}
	if len(l.Options) != 5 {
		t.Errorf("expected 5 options, got %d", len(l.Options))
	}
	if l.DefaultSite != dataset.AllSites {
		t.Errorf("expected default ALL, got %s", l.DefaultSite)
	}

	s := l.Slider
	if s.Min != 0 || s.Max != 9600 || s.Step != 1000 {
		t.Errorf("unexpected slider: %+v", s)
	}
	if s.Value != [2]float64{0, 9600} {
		t.Errorf("expected default value to span bounds, got %v", s.Value)
	}
	if len(s.Marks) != 10 || s.Marks[0].Label != "0 kg" || s.Marks[9].Label != "9000 kg" {
		t.Errorf("unexpected marks: %+v", s.Marks)
	}
	if len(l.Summaries) != 5 {
		t.Errorf("expected 5 summaries, got %d", len(l.Summaries))
	}
}

func TestBuildLayout_DefaultStep(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())
	l := BuildLayout(ds, "t", 0, nil)
	if l.Slider.Step != DefaultSliderStep {
		t.Errorf("expected default step, got %v", l.Slider.Step)
	}
	want := []Mark{{Value: 2000, Label: "2000 kg"}, {Value: 3000, Label: "3000 kg"}, {Value: 4000, Label: "4000 kg"}}
	if diff := cmp.Diff(want, l.Slider.Marks); diff != "" {
		t.Errorf("marks mismatch (-want +got):\n%s", diff)
	}
}

func TestSliderMarks_Thinned(t *testing.T) {
	marks := sliderMarks(dataset.PayloadBounds{Min: 0, Max: 10000}, 1)
	if len(marks) > maxSliderMarks {
		t.Errorf("expected at most %d marks, got %d", maxSliderMarks, len(marks))
	}
	if marks[0].Value != 0 {
		t.Errorf("expected first mark at 0, got %v", marks[0].Value)
	}
}

func TestSliderMarks_TinyStep(t *testing.T) {
	tests := []struct {
		name string
		step float64
	}{
		{"huge count", 1e-300},
		{"subnormal", 5e-324},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marks := sliderMarks(dataset.PayloadBounds{Min: 0, Max: 9600}, tt.step)
			if len(marks) > maxSliderMarks {
				t.Errorf("expected at most %d marks, got %d", maxSliderMarks, len(marks))
			}
			for _, m := range marks {
				if m.Value < 0 || m.Value > 9600*(1+1e-9) {
					t.Errorf("mark %v outside bounds", m.Value)
				}
			}
		})
	}
}

func TestBuildLayout_NonFiniteStep(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())
	layout := BuildLayout(ds, "Launches", math.NaN(), nil)
	if layout.Slider.Step != DefaultSliderStep {
		t.Errorf("expected default step, got %v", layout.Slider.Step)
	}
}

func TestSliderMarks_NarrowBounds(t *testing.T) {
	marks := sliderMarks(dataset.PayloadBounds{Min: 1100, Max: 1900}, 1000)
	if len(marks) != 0 {
		t.Errorf("expected no marks, got %+v", marks)
	}
}
