package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-financial-extractor/internal/finance"
)

func sampleResult(t *testing.T) *finance.Result {
	t.Helper()
	result, err := finance.Extract([]string{
		"USD in millions, fiscal 2022 2021\nNet Revenue  1,500.5  1,200\nNet Income  (50)  200\n",
	})
	require.NoError(t, err)
	return result
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1+12*2)
	assert.Equal(t, "Line Item,Year,Value,Currency,Units,Confidence Flag", lines[0])
	assert.Contains(t, lines, "Net Income,2021,200,USD,Millions,OK")
	assert.Contains(t, lines, "Net Income,2022,-50,USD,Millions,OK")
	assert.Contains(t, lines, "Revenue,2022,1500.5,USD,Millions,OK")
	assert.Contains(t, lines, "EBITDA,2021,NULL,USD,Millions,Missing")
	assert.Contains(t, lines, `Research & Development,2022,NULL,USD,Millions,Missing`)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResult(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1+12*2)
	assert.Equal(t, Header, rows[0])

	var revenue2022 []string
	for _, row := range rows[1:] {
		if row[0] == "Revenue" && row[1] == "2022" {
			revenue2022 = row
		}
	}
	require.NotNil(t, revenue2022)
	assert.Equal(t, "1500.5", revenue2022[2])
	assert.Equal(t, "OK", revenue2022[5])

	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.InDelta(t, float64(len("Depreciation & Amortization")+4), width, 0.01)
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatCSV, FormatXLSX}, w.Formats())

	result := sampleResult(t)
	first, err := w.Write("Annual Report 2022.pdf", result)
	require.NoError(t, err)
	second, err := w.Write("Annual Report 2022.pdf", result)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.NotEqual(t, first[FormatCSV], second[FormatCSV])
	assert.NotEqual(t, first[FormatXLSX], second[FormatXLSX])

	for _, path := range first {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasPrefix(filepath.Base(path), "Annual_Report_2022_"))
	}
}

func TestWriter_WriteSingleFormat(t *testing.T) {
	w, err := NewWriter(t.TempDir(), FormatCSV)
	require.NoError(t, err)

	files, err := w.Write("q3", sampleResult(t))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".csv", filepath.Ext(files[FormatCSV]))
}

func TestWriter_WriteRejectsEmptyResult(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	_, err = w.Write("x", nil)
	assert.ErrorIs(t, err, ErrNoRecords)
	_, err = w.Write("x", &finance.Result{})
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestNewWriter_EmptyDir(t *testing.T) {
	_, err := NewWriter("")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestSanitizeBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Annual Report 2022.pdf", want: "Annual_Report_2022"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\uploads\q4 results.PDF`, want: "q4_results"},
		{in: "Société Générale.pdf", want: "Societe_Generale"},
		{in: ".hidden.pdf", want: "hidden"},
		{in: "年报.pdf", want: "document"},
		{in: "", want: "document"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeBaseName(tt.in))
		})
	}
}

func TestFormatValue(t *testing.T) {
	v := 0.1
	assert.Equal(t, "0.1", FormatValue(&v))
	w := -1234.5
	assert.Equal(t, "-1234.5", FormatValue(&w))
	assert.Equal(t, NullValue, FormatValue(nil))
}

func TestWritePreview(t *testing.T) {
	var buf bytes.Buffer
	WritePreview(&buf, sampleResult(t).Records)
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)

	var header, revenue, ebitda string
	for _, line := range lines {
		switch {
		case strings.Contains(line, "Line Item"):
			header = line
		case strings.Contains(line, "Revenue"):
			revenue = line
		case strings.Contains(line, "EBITDA"):
			ebitda = line
		}
	}

	assert.Regexp(t, `Line Item\s*\|\s*2021\s*\|\s*2022`, header)
	assert.Regexp(t, `Revenue\s*\|\s*1200\s*\|\s*1500\.5`, revenue)
	assert.Regexp(t, `EBITDA\s*\|\s*-\s*\|\s*-`, ebitda)
}

func TestWritePreview_LowConfidence(t *testing.T) {
	v := 10.0
	records := []finance.Record{
		{LineItem: finance.Revenue, Year: 2022, Value: &v, Confidence: finance.ConfidenceOK},
		{LineItem: finance.NetIncome, Year: 2022, Confidence: finance.ConfidenceLow},
	}

	var buf bytes.Buffer
	WritePreview(&buf, records)
	assert.Regexp(t, `Net Income\s*\|\s*\?`, buf.String())
}
