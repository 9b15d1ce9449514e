package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/lamim/launch-dash/internal/dataset"
)

// SampleCSV is a small launch table in the layout of the real input file.
const SampleCSV = `Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
1,CCAFS LC-40,0,0,F9 v1.0  B0003,v1.0
2,CCAFS LC-40,0,0,F9 v1.0  B0004,v1.0
3,CCAFS LC-40,0,525,F9 v1.0  B0005,v1.0
4,CCAFS LC-40,0,500,F9 v1.0  B0006,v1.0
5,CCAFS LC-40,0,677,F9 v1.0  B0007,v1.0
6,VAFB SLC-4E,0,500,F9 v1.1  B1003,v1.1
7,CCAFS LC-40,1,3170,F9 v1.1,v1.1
8,KSC LC-39A,1,2490,F9 FT B1031.1,FT
9,KSC LC-39A,1,5600,F9 FT B1032.1,FT
10,VAFB SLC-4E,1,9600,F9 FT B1029.1,FT
11,KSC LC-39A,0,5300,F9 FT B1030,FT
12,CCAFS SLC-40,1,3669,F9 FT B1035.2,FT
13,CCAFS SLC-40,0,2205,F9 B4 B1040.1,B4
14,KSC LC-39A,1,6070,F9 B5 B1046.1,B5
`

// ThreeRows is the minimal end-to-end table: two siteA launches and one siteB launch.
func ThreeRows() []dataset.Record {
	return []dataset.Record{
		{Site: "siteA", PayloadMassKg: 2000, Class: 1, BoosterVersion: "v1"},
		{Site: "siteA", PayloadMassKg: 3000, Class: 0, BoosterVersion: "v2"},
		{Site: "siteB", PayloadMassKg: 4000, Class: 1, BoosterVersion: "v1"},
	}
}

// MustDataset builds a dataset from records or fails the test.
func MustDataset(t testing.TB, records []dataset.Record) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(records)
	if err != nil {
		t.Fatalf("building dataset: %v", err)
	}
	return ds
}

// WriteFile writes content to name inside a fresh temp dir and returns the path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// WriteRecordsCSV writes records with the required headers and returns the path.
func WriteRecordsCSV(t testing.TB, records []dataset.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launches.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	_ = w.Write(dataset.RequiredColumns)
	for _, r := range records {
		_ = w.Write([]string{
			r.Site,
			strconv.FormatFloat(r.PayloadMassKg, 'f', -1, 64),
			strconv.Itoa(r.Class),
			r.BoosterVersion,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
