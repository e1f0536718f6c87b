package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-financial-extractor/internal/pdf/pdftest"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeStatement(t *testing.T) (pdfPath, outDir string) {
	t.Helper()
	root := t.TempDir()
	pdfPath = filepath.Join(root, "in", "statement.pdf")
	pdftest.WriteTextPDF(t, pdfPath, pdftest.StatementPages()...)
	return pdfPath, filepath.Join(root, "out")
}

func TestRun_Text(t *testing.T) {
	pdfPath, outDir := writeStatement(t)

	code, stdout, stderr := runCLI(t, "--outdir", outDir, pdfPath)
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Source:    "+pdfPath+" (3 pages)")
	assert.Contains(t, stdout, "Currency:  USD")
	assert.Contains(t, stdout, "Units:     Millions")
	assert.Contains(t, stdout, "Years:     [2021 2022]")
	assert.Contains(t, stdout, "Values:    8 of 24 rows")
	assert.Regexp(t, `Revenue\s*\|\s*1200\s*\|\s*1500`, stdout)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Contains(t, stdout, "Wrote "+outDir)
}

func TestRun_JSON(t *testing.T) {
	pdfPath, outDir := writeStatement(t)

	code, stdout, stderr := runCLI(t, "--outdir", outDir, "--formats", "csv", "--format", "json", "--maxyears", "1", pdfPath)
	require.Equal(t, 0, code, stderr)

	var result struct {
		Currency string            `json:"currency"`
		Years    []int             `json:"years"`
		Files    map[string]string `json:"files"`
		Records  []struct {
			LineItem   string   `json:"line_item"`
			Year       int      `json:"year"`
			Value      *float64 `json:"value"`
			Confidence string   `json:"confidence"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))

	assert.Equal(t, "USD", result.Currency)
	assert.Equal(t, []int{2022}, result.Years)
	assert.Len(t, result.Files, 1)
	assert.Contains(t, result.Files, "csv")
	assert.NotEmpty(t, result.Records)
	for _, rec := range result.Records {
		assert.Equal(t, 2022, rec.Year)
	}
}

func TestRun_Errors(t *testing.T) {
	pdfPath, outDir := writeStatement(t)
	garbage := filepath.Join(filepath.Dir(pdfPath), "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pdf"), 0o644))

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "no file", args: nil, wantCode: 2, wantErr: "exactly one PDF file path required"},
		{name: "two files", args: []string{pdfPath, pdfPath}, wantCode: 2, wantErr: "exactly one PDF file path required"},
		{name: "unknown flag", args: []string{"--diagnostic", pdfPath}, wantCode: 2, wantErr: "unknown flag"},
		{name: "bad console format", args: []string{"--format", "yaml", pdfPath}, wantCode: 1, wantErr: "unsupported output format"},
		{name: "bad file format", args: []string{"--formats", "docx", pdfPath}, wantCode: 1, wantErr: "unsupported format"},
		{name: "bad max years", args: []string{"--maxyears", "0", pdfPath}, wantCode: 1, wantErr: "maxyears"},
		{name: "missing file", args: []string{filepath.Join(filepath.Dir(pdfPath), "nope.pdf")}, wantCode: 1, wantErr: "does not exist"},
		{name: "not a pdf", args: []string{garbage}, wantCode: 1, wantErr: "invalid PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--outdir", outDir}, tt.args...)
			code, _, stderr := runCLI(t, args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "USAGE:")
	assert.Contains(t, stdout, "--outdir")
	assert.Contains(t, stdout, "--maxyears")
}
