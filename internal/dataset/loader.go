package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// Format identifies the container of an input table
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Load reads the table at path and returns the validated Dataset.
// Container problems and missing columns are reported as *LoadError, bad cell
// values as *SchemaError.
func Load(path string) (*Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var tbl *table
	switch format {
	case FormatXLSX:
		tbl, err = readXLSX(path)
	default:
		tbl, err = readCSV(path)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	records, err := tbl.records(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &LoadError{Path: path, Err: errors.New("no data rows")}
	}

	return build(path, records)
}

// DetectFormat sniffs the file content and falls back to the extension when the
// content is ambiguous.
func DetectFormat(path string) (Format, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	if mtype.Is(xlsxMIME) {
		return FormatXLSX, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		// Detection of OOXML needs the zip directory near the start; tiny or
		// unusual workbooks come back as application/zip.
		if mtype.Is("application/zip") {
			return FormatXLSX, nil
		}
		return "", fmt.Errorf("file has .xlsx extension but content is %s", mtype.String())
	}
	return FormatCSV, nil
}

// table is the raw header + rows of an input file before typing.
type table struct {
	header []string
	rows   []row
}

type row struct {
	line  int
	cells []string
}

func readCSV(path string) (*table, error) {
	// #nosec G304 - reading the configured dataset is the purpose of this function
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	tbl := &table{header: header}
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		tbl.rows = append(tbl.rows, row{line: line, cells: cells})
	}
	return tbl, nil
}

func readXLSX(path string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	tbl := &table{header: rows[0]}
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		tbl.rows = append(tbl.rows, row{line: i + 2, cells: cells})
	}
	return tbl, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (t *table) records(path string) ([]Record, error) {
	index := make(map[string]int, len(t.header))
	for i, name := range t.header {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))}
	}

	cell := func(r row, col string) string {
		i, ok := index[col]
		if !ok || i >= len(r.cells) {
			return ""
		}
		return strings.TrimSpace(r.cells[i])
	}

	records := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		schemaErr := func(col, value, reason string) error {
			return &SchemaError{Path: path, Line: r.line, Column: col, Value: value, Reason: reason}
		}

		site := cell(r, ColumnSite)
		if site == "" {
			return nil, schemaErr(ColumnSite, site, "site must not be empty")
		}

		rawPayload := cell(r, ColumnPayload)
		payload, err := strconv.ParseFloat(rawPayload, 64)
		if err != nil {
			return nil, schemaErr(ColumnPayload, rawPayload, "payload is not numeric")
		}

		rawClass := cell(r, ColumnClass)
		class, err := parseClass(rawClass)
		if err != nil {
			return nil, schemaErr(ColumnClass, rawClass, err.Error())
		}

		rec := Record{
			Site:            site,
			PayloadMassKg:   payload,
			Class:           class,
			BoosterVersion:  cell(r, ColumnBoosterVersion),
			BoosterCategory: cell(r, ColumnBoosterCategory),
			MissionOutcome:  cell(r, ColumnMissionOutcome),
		}
		if n, err := strconv.Atoi(cell(r, ColumnFlightNumber)); err == nil {
			rec.FlightNumber = n
		}

		if err := validateRecord(rec); err != nil {
			var se *SchemaError
			if errors.As(err, &se) {
				se.Path, se.Line = path, r.line
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseClass accepts "0", "1" and their float spellings ("1.0").
func parseClass(s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("class is not numeric")
	}
	switch v {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, errors.New("class must be 0 or 1")
}
