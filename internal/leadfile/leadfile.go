// Package leadfile loads lead records from CSV and XLSX files for batch
// enrichment. It parses only; it never persists anything.
package leadfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/enrich-cli/internal/model"
)

// columns maps recognized header names to lead field setters.
var columns = map[string]func(*model.Lead, string){
	"company":   func(l *model.Lead, v string) { l.Company = v },
	"contact":   func(l *model.Lead, v string) { l.Contact = v },
	"title":     func(l *model.Lead, v string) { l.Title = v },
	"email":     func(l *model.Lead, v string) { l.Email = v },
	"website":   func(l *model.Lead, v string) { l.Website = v },
	"industry":  func(l *model.Lead, v string) { l.Industry = v },
	"employees": func(l *model.Lead, v string) { l.Employees = v },
	"revenue":   func(l *model.Lead, v string) { l.Revenue = v },
}

// Load reads leads from path, dispatching on the file extension (.csv or
// .xlsx). The first row must be a header naming the lead columns.
func Load(ctx context.Context, path string) ([]model.Lead, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "leadfile: open file")
		}
		defer f.Close()
		return LoadCSV(ctx, f)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, eris.Errorf("leadfile: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadCSV reads leads from CSV data with a header row.
func LoadCSV(ctx context.Context, r io.Reader) ([]model.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	var header []string
	var leads []model.Lead
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "leadfile: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "leadfile: read row")
		}

		if header == nil {
			header = record
			continue
		}
		leads = append(leads, fromRow(header, record))
	}

	if header == nil {
		return nil, eris.New("leadfile: empty file")
	}
	return leads, nil
}

// LoadXLSX reads leads from the first sheet of an XLSX workbook with a
// header row.
func LoadXLSX(path string) ([]model.Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("leadfile: workbook has no sheets")
	}

	var header []string
	var leads []model.Lead
	for i, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			header = cells
			continue
		}
		leads = append(leads, fromRow(header, cells))
	}

	if header == nil {
		return nil, eris.New("leadfile: empty sheet")
	}
	return leads, nil
}

// fromRow maps one data row onto a Lead using the header. Unrecognized
// columns are ignored; missing required fields are caught later by
// Lead.Validate.
func fromRow(header, row []string) model.Lead {
	var lead model.Lead
	for i, name := range header {
		if i >= len(row) {
			break
		}
		set, ok := columns[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		set(&lead, strings.TrimSpace(row[i]))
	}
	return lead
}
