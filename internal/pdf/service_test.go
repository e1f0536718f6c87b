package pdf

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-financial-extractor/internal/export"
	"github.com/a3tai/mcp-financial-extractor/internal/finance"
	"github.com/a3tai/mcp-financial-extractor/internal/metrics"
	"github.com/a3tai/mcp-financial-extractor/internal/pdf/pdftest"
)

type serviceFixture struct {
	service *Service
	inDir   string
	outDir  string
	metrics *metrics.ExtractionMetrics
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	root := t.TempDir()
	f := serviceFixture{
		inDir:   filepath.Join(root, "in"),
		outDir:  filepath.Join(root, "out"),
		metrics: metrics.NewExtractionMetrics(),
	}
	require.NoError(t, os.MkdirAll(f.inDir, 0o755))

	service, err := NewService(ServiceConfig{
		InputDirectory:  f.inDir,
		OutputDirectory: f.outDir,
		MaxFileSize:     1024 * 1024,
		MaxYears:        5,
		Metrics:         f.metrics,
	})
	require.NoError(t, err)
	f.service = service
	return f
}

func (f serviceFixture) scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func findRecord(t *testing.T, records []finance.Record, item finance.LineItem, year finance.Year) finance.Record {
	t.Helper()
	for _, rec := range records {
		if rec.LineItem == item && rec.Year == year {
			return rec
		}
	}
	t.Fatalf("no record for %s %s", item, year)
	return finance.Record{}
}

func TestNewService(t *testing.T) {
	dir := t.TempDir()

	_, err := NewService(ServiceConfig{InputDirectory: dir, OutputDirectory: dir})
	assert.Error(t, err, "zero max file size")

	_, err = NewService(ServiceConfig{OutputDirectory: dir, MaxFileSize: 1})
	assert.Error(t, err, "no input directory")

	_, err = NewService(ServiceConfig{InputDirectory: dir, MaxFileSize: 1})
	assert.Error(t, err, "no output directory")

	service, err := NewService(ServiceConfig{InputDirectory: dir, OutputDirectory: dir, MaxFileSize: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), service.GetMaxFileSize())
}

func TestService_ExtractFinancials(t *testing.T) {
	f := newServiceFixture(t)
	path := filepath.Join(f.inDir, "Acme 2022.pdf")
	pdftest.WriteTextPDF(t, path, pdftest.StatementPages()...)

	result, err := f.service.ExtractFinancials(context.Background(), ExtractFileRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, path, result.Source)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, finance.CurrencyUSD, result.Currency)
	assert.Equal(t, finance.UnitsMillions, result.Units)
	assert.Equal(t, []int{2021, 2022}, result.Years)
	assert.Equal(t, 8, result.RowCount)
	assert.Len(t, result.Records, 24)
	assert.Empty(t, result.Unaligned)

	revenue := findRecord(t, result.Records, finance.Revenue, 2022)
	require.NotNil(t, revenue.Value)
	assert.InDelta(t, 1500, *revenue.Value, 1e-9)

	netIncome := findRecord(t, result.Records, finance.NetIncome, 2022)
	require.NotNil(t, netIncome.Value)
	assert.InDelta(t, -50, *netIncome.Value, 1e-9)

	assert.Equal(t, finance.ConfidenceMissing, findRecord(t, result.Records, finance.EBITDA, 2021).Confidence)

	require.Len(t, result.Files, 2)
	for format, file := range result.Files {
		assert.Equal(t, f.outDir, filepath.Dir(file))
		assert.Equal(t, "."+string(format), filepath.Ext(file))
		assert.FileExists(t, file)
	}

	body := f.scrape(t)
	assert.Contains(t, body, `finx_extraction_total{status="success"} 1`)
	assert.Contains(t, body, "finx_extraction_in_flight 0")
}

func TestService_ExtractFinancialsRelativePathAndFormats(t *testing.T) {
	f := newServiceFixture(t)
	pdftest.WriteTextPDF(t, filepath.Join(f.inDir, "q3.pdf"), pdftest.StatementPages()...)

	result, err := f.service.ExtractFinancials(context.Background(), ExtractFileRequest{
		Path:    "q3.pdf",
		Formats: []export.Format{export.FormatCSV},
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Contains(t, result.Files, export.FormatCSV)
}

func TestService_ExtractFinancialsErrors(t *testing.T) {
	f := newServiceFixture(t)

	blank := filepath.Join(f.inDir, "scanned.pdf")
	pdftest.WriteTextPDF(t, blank, []string{}, []string{})

	outside := filepath.Join(t.TempDir(), "outside.pdf")
	pdftest.WriteTextPDF(t, outside, pdftest.StatementPages()...)

	garbage := filepath.Join(f.inDir, "broken.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pdf at all"), 0o644))

	_, err := f.service.ExtractFinancials(context.Background(), ExtractFileRequest{Path: blank})
	require.Error(t, err)
	assert.ErrorIs(t, err, finance.ErrNoText)
	assert.Contains(t, err.Error(), "scanned/image-based")

	_, err = f.service.ExtractFinancials(context.Background(), ExtractFileRequest{Path: outside})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security validation failed")

	_, err = f.service.ExtractFinancials(context.Background(), ExtractFileRequest{Path: garbage})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PDF file")

	assert.Contains(t, f.scrape(t), `finx_extraction_total{status="error"} 3`)
}

func TestService_ExtractText(t *testing.T) {
	f := newServiceFixture(t)

	text := "Figures in INR crores\nFY 2023 2022\nRevenue 900 800\f" +
		"Net profit 90 80 70\n"

	result, err := f.service.ExtractText(context.Background(), ExtractTextRequest{Text: text})
	require.NoError(t, err)

	assert.Equal(t, "text", result.Source)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, finance.CurrencyINR, result.Currency)
	assert.Equal(t, finance.UnitsCrores, result.Units)
	assert.Equal(t, []int{2022, 2023}, result.Years)
	assert.Empty(t, result.Files)
	require.Len(t, result.Unaligned, 1)
	assert.Equal(t, finance.NetIncome, result.Unaligned[0].LineItem)

	entries, err := os.ReadDir(f.outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	written, err := f.service.ExtractText(context.Background(), ExtractTextRequest{
		Text:       text,
		Name:       "pasted statement",
		WriteFiles: true,
	})
	require.NoError(t, err)
	require.Len(t, written.Files, 2)
	assert.Contains(t, filepath.Base(written.Files[export.FormatXLSX]), "pasted_statement_")
}

func TestService_ExtractTextErrors(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.ExtractText(context.Background(), ExtractTextRequest{Text: " \f \n"})
	assert.ErrorIs(t, err, finance.ErrNoText)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.service.ExtractText(ctx, ExtractTextRequest{Text: "Revenue 1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_PDFValidateFile(t *testing.T) {
	f := newServiceFixture(t)
	pdftest.WriteTextPDF(t, filepath.Join(f.inDir, "ok.pdf"), []string{"Revenue 10"})

	result, err := f.service.PDFValidateFile(PDFValidateFileRequest{Path: "ok.pdf"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, filepath.Join(f.inDir, "ok.pdf"), result.Path)

	_, err = f.service.PDFValidateFile(PDFValidateFileRequest{Path: "../escape.pdf"})
	assert.Error(t, err)
}

func TestService_PDFSearchDirectory(t *testing.T) {
	f := newServiceFixture(t)
	pdftest.WriteTextPDF(t, filepath.Join(f.inDir, "acme_10k.pdf"), []string{"Revenue 10"})

	result, err := f.service.PDFSearchDirectory(context.Background(), PDFSearchDirectoryRequest{Query: "10k"})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "acme_10k.pdf", result.Files[0].Name)

	_, err = f.service.PDFSearchDirectory(context.Background(), PDFSearchDirectoryRequest{Directory: t.TempDir()})
	assert.Error(t, err)
}

func TestService_PDFStatsDirectory(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.inDir, "small.pdf"), make([]byte, 100), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.inDir, "big.pdf"), make([]byte, 300), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(f.inDir, "2022"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.inDir, "2022", "mid.PDF"), make([]byte, 200), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.inDir, "huge.pdf"), make([]byte, 2*1024*1024), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.inDir, "notes.txt"), make([]byte, 50), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.inDir, "empty.pdf"), nil, 0o644))

	result, err := f.service.PDFStatsDirectory(context.Background(), PDFStatsDirectoryRequest{})
	require.NoError(t, err)

	assert.Equal(t, f.inDir, result.Directory)
	assert.Equal(t, 3, result.TotalFiles)
	assert.Equal(t, int64(600), result.TotalSize)
	assert.Equal(t, int64(200), result.AverageFileSize)
	assert.Equal(t, "big.pdf", result.LargestFileName)
	assert.Equal(t, int64(300), result.LargestFileSize)
	assert.Equal(t, "small.pdf", result.SmallestFileName)
	assert.Equal(t, int64(100), result.SmallestFileSize)
	assert.Equal(t, []string{"huge.pdf"}, result.OversizedFiles)

	_, err = f.service.PDFStatsDirectory(context.Background(), PDFStatsDirectoryRequest{Directory: t.TempDir()})
	assert.ErrorContains(t, err, "security validation failed")
}

func TestStats_GetDirectoryStats(t *testing.T) {
	stats := NewStats(1024)

	_, err := stats.GetDirectoryStats(context.Background(), PDFStatsDirectoryRequest{})
	assert.Error(t, err)

	_, err = stats.GetDirectoryStats(context.Background(), PDFStatsDirectoryRequest{Directory: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "does not exist")

	result, err := stats.GetDirectoryStats(context.Background(), PDFStatsDirectoryRequest{Directory: t.TempDir()})
	require.NoError(t, err)
	assert.Zero(t, result.TotalFiles)
	assert.Zero(t, result.SmallestFileSize)
	assert.Empty(t, result.OversizedFiles)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = stats.GetDirectoryStats(ctx, PDFStatsDirectoryRequest{Directory: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_ServerInfo(t *testing.T) {
	f := newServiceFixture(t)
	pdftest.WriteTextPDF(t, filepath.Join(f.inDir, "acme.pdf"), []string{"Revenue 10"})

	info, err := f.service.ServerInfo(context.Background(), ServerInfoRequest{}, "fin", "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "fin", info.ServerName)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, f.inDir, info.InputDirectory)
	assert.Equal(t, f.outDir, info.OutputDirectory)
	assert.Equal(t, 5, info.MaxYears)
	assert.Equal(t, []export.Format{export.FormatCSV, export.FormatXLSX}, info.OutputFormats)
	assert.Len(t, info.AvailableTools, 6)
	assert.Len(t, info.LineItems, 12)
	assert.Contains(t, info.LineItems["EBITDA"], "ebitda")
	require.Len(t, info.DirectoryContents, 1)
	assert.Equal(t, "acme.pdf", info.DirectoryContents[0].Name)
	assert.Contains(t, info.UsageGuidance, "financials_extract_file")
	assert.Contains(t, info.UsageGuidance, "1MB")
}
