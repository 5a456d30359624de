package leadfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/enrich-cli/internal/model"
)

func TestLoadCSV(t *testing.T) {
	data := `Company,Contact,Title,Email,Website,Industry,Employees,Revenue
Acme,Jane Doe,VP Sales,jane@acme.io,acme.io,SaaS,50-200,$5M-$10M
Globex, Kim ,CTO,kim@globex.com,globex.com,,,
`
	leads, err := LoadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, model.Lead{
		Company:   "Acme",
		Contact:   "Jane Doe",
		Title:     "VP Sales",
		Email:     "jane@acme.io",
		Website:   "acme.io",
		Industry:  "SaaS",
		Employees: "50-200",
		Revenue:   "$5M-$10M",
	}, leads[0])

	// Cell whitespace is trimmed, missing optionals stay empty.
	assert.Equal(t, "Kim", leads[1].Contact)
	assert.Empty(t, leads[1].Industry)
}

func TestLoadCSV_UnknownColumnsIgnored(t *testing.T) {
	data := "company,linkedin,email,contact,website\nAcme,https://x,jane@acme.io,Jane,acme.io\n"
	leads, err := LoadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Acme", leads[0].Company)
	assert.Equal(t, "jane@acme.io", leads[0].Email)
}

func TestLoadCSV_ShortRows(t *testing.T) {
	data := "company,contact,email\nAcme,Jane\n"
	leads, err := LoadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Jane", leads[0].Contact)
	assert.Empty(t, leads[0].Email)
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	_, err := LoadCSV(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadCSV_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadCSV(ctx, strings.NewReader("company\nAcme\n"))
	assert.Error(t, err)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	require.NoError(t, err)
	for _, row := range [][]string{
		{"Company", "Contact", "Email", "Website"},
		{"Acme", "Jane Doe", "jane@acme.io", "acme.io"},
	} {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().SetString(v)
		}
	}
	require.NoError(t, f.Save(path))

	leads, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Acme", leads[0].Company)
	assert.Equal(t, "jane@acme.io", leads[0].Email)
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "leads.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("company,email\nAcme,jane@acme.io\n"), 0o644))

	leads, err := Load(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	_, err = Load(context.Background(), filepath.Join(dir, "leads.json"))
	assert.Error(t, err)

	_, err = Load(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
