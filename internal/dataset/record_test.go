package dataset_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lamim/launch-dash/internal/dataset"
	"github.com/lamim/launch-dash/internal/testutil"
)

func TestNew_DerivesOptionsAndBounds(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())

	if diff := cmp.Diff([]string{"ALL", "siteA", "siteB"}, ds.SiteOptions()); diff != "" {
		t.Errorf("site options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"siteA", "siteB"}, ds.Sites()); diff != "" {
		t.Errorf("sites mismatch (-want +got):\n%s", diff)
	}
	if got := ds.Bounds(); got != (dataset.PayloadBounds{Min: 2000, Max: 4000}) {
		t.Errorf("unexpected bounds: %+v", got)
	}
}

func TestNew_Empty(t *testing.T) {
	ds := testutil.MustDataset(t, nil)
	if ds.Len() != 0 {
		t.Errorf("expected empty dataset, got %d records", ds.Len())
	}
	if got := ds.Bounds(); got != (dataset.PayloadBounds{}) {
		t.Errorf("expected zero bounds, got %+v", got)
	}
	if diff := cmp.Diff([]string{"ALL"}, ds.SiteOptions()); diff != "" {
		t.Errorf("site options mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record dataset.Record
	}{
		{"class", dataset.Record{Site: "a", PayloadMassKg: 1, Class: 3}},
		{"negative payload", dataset.Record{Site: "a", PayloadMassKg: -1}},
		{"empty site", dataset.Record{PayloadMassKg: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataset.New([]dataset.Record{tt.record})
			var schemaErr *dataset.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *SchemaError, got %T: %v", err, err)
			}
		})
	}
}

func TestRecords_ReturnsCopy(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())

	records := ds.Records()
	records[0].Site = "mutated"
	records[0].PayloadMassKg = 1

	if got := ds.Records()[0]; got.Site != "siteA" || got.PayloadMassKg != 2000 {
		t.Errorf("dataset was mutated through Records(): %+v", got)
	}

	sites := ds.Sites()
	sites[0] = "mutated"
	if ds.Sites()[0] != "siteA" {
		t.Error("dataset was mutated through Sites()")
	}
}

func TestNew_CopiesInput(t *testing.T) {
	input := testutil.ThreeRows()
	ds := testutil.MustDataset(t, input)
	input[0].Site = "mutated"

	if ds.Records()[0].Site != "siteA" {
		t.Error("dataset shares backing array with caller")
	}
}

func TestValidateSite(t *testing.T) {
	ds := testutil.MustDataset(t, testutil.ThreeRows())

	for _, site := range ds.SiteOptions() {
		if err := ds.ValidateSite(site); err != nil {
			t.Errorf("expected %q to be valid, got %v", site, err)
		}
	}
	for _, site := range []string{"siteC", "", "all"} {
		if err := ds.ValidateSite(site); !errors.Is(err, dataset.ErrInvalidFilter) {
			t.Errorf("expected ErrInvalidFilter for %q, got %v", site, err)
		}
	}
}
