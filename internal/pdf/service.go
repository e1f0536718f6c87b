package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-financial-extractor/internal/descriptions"
	"github.com/a3tai/mcp-financial-extractor/internal/export"
	"github.com/a3tai/mcp-financial-extractor/internal/finance"
	"github.com/a3tai/mcp-financial-extractor/internal/metrics"
	"github.com/a3tai/mcp-financial-extractor/internal/pdf/security"
)

const (
	pageSeparator      = "\f"
	defaultTextSource  = "text"
	directoryScanLimit = 100
	directoryScanWait  = 5 * time.Second
)

// ServiceConfig holds what the service needs beyond its defaults
type ServiceConfig struct {
	InputDirectory  string
	OutputDirectory string
	MaxFileSize     int64
	MaxYears        int
	Formats         []export.Format
	// Metrics may be nil
	Metrics *metrics.ExtractionMetrics
}

// Service runs extractions by orchestrating the PDF, finance and export components
type Service struct {
	maxFileSize   int64
	pathValidator *security.PathValidator
	reader        *Reader
	validator     *Validator
	search        *Search
	stats         *Stats
	extractor     *finance.Extractor
	writer        *export.Writer
	metrics       *metrics.ExtractionMetrics
	logger        *zap.Logger
}

// NewService creates a new service with all components
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.MaxFileSize <= 0 {
		return nil, eris.New("pdf: maxFileSize must be greater than 0")
	}

	pathValidator, err := security.NewPathValidator(cfg.InputDirectory)
	if err != nil {
		return nil, eris.Wrap(err, "pdf: create path validator")
	}

	writer, err := export.NewWriter(cfg.OutputDirectory, cfg.Formats...)
	if err != nil {
		return nil, eris.Wrap(err, "pdf: create export writer")
	}

	return &Service{
		maxFileSize:   cfg.MaxFileSize,
		pathValidator: pathValidator,
		reader:        NewReader(cfg.MaxFileSize),
		validator:     NewValidator(cfg.MaxFileSize),
		search:        NewSearch(cfg.MaxFileSize),
		stats:         NewStats(cfg.MaxFileSize),
		extractor:     finance.NewExtractor(finance.WithMaxYears(cfg.MaxYears)),
		writer:        writer,
		metrics:       cfg.Metrics,
		logger:        zap.L().With(zap.String("component", "extraction_service")),
	}, nil
}

// ExtractFinancials reads a statement PDF, extracts its line items and writes
// the configured output files.
func (s *Service) ExtractFinancials(ctx context.Context, req ExtractFileRequest) (result *ExtractionResult, err error) {
	start := time.Now()
	s.metrics.Start()
	defer func() {
		rows := 0
		if result != nil {
			rows = result.RowCount
		}
		s.metrics.Finish(time.Since(start), rows, err)
	}()

	path, err := s.pathValidator.ResolvePath(req.Path)
	if err != nil {
		return nil, eris.Wrap(err, "security validation failed")
	}

	pageCount, err := s.validator.validatePDFFile(path)
	if err != nil {
		return nil, err
	}

	pages, err := s.reader.ReadPages(ctx, path)
	if err != nil {
		return nil, err
	}

	extracted, err := s.extractor.Extract(pages)
	if eris.Is(err, finance.ErrNoText) {
		return nil, eris.Wrap(err, "could not extract text from the PDF, it may be scanned/image-based")
	}
	if err != nil {
		return nil, err
	}

	writer, err := s.writerFor(req.Formats)
	if err != nil {
		return nil, err
	}
	files, err := writer.Write(filepath.Base(path), extracted)
	if err != nil {
		return nil, err
	}

	result = newExtractionResult(path, pageCount, extracted, files)
	s.logExtraction(result, start)
	return result, nil
}

// ExtractText runs extraction over text the caller already holds. Pages are
// separated by form feeds. Files are only written when req.WriteFiles is set.
func (s *Service) ExtractText(ctx context.Context, req ExtractTextRequest) (result *ExtractionResult, err error) {
	start := time.Now()
	s.metrics.Start()
	defer func() {
		rows := 0
		if result != nil {
			rows = result.RowCount
		}
		s.metrics.Finish(time.Since(start), rows, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pdf: extract text")
	}

	pages := strings.Split(req.Text, pageSeparator)
	extracted, err := s.extractor.Extract(pages)
	if err != nil {
		return nil, err
	}

	source := req.Name
	if source == "" {
		source = defaultTextSource
	}

	var files export.Files
	if req.WriteFiles {
		files, err = s.writer.Write(source, extracted)
		if err != nil {
			return nil, err
		}
	}

	result = newExtractionResult(source, len(pages), extracted, files)
	s.logExtraction(result, start)
	return result, nil
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.pathValidator.ResolvePath(req.Path)
	if err != nil {
		return nil, eris.Wrap(err, "security validation failed")
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// PDFSearchDirectory searches for PDF files in a directory
func (s *Service) PDFSearchDirectory(ctx context.Context, req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, eris.Wrap(err, "security validation failed")
	}

	return s.search.SearchDirectory(ctx, req, 0)
}

// PDFStatsDirectory summarizes the PDFs in a directory
func (s *Service) PDFStatsDirectory(ctx context.Context, req PDFStatsDirectoryRequest) (*PDFStatsDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, eris.Wrap(err, "security validation failed")
	}

	return s.stats.GetDirectoryStats(ctx, req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// ServerInfo returns server capabilities, the line items it recognizes and
// the PDFs currently available in the input directory.
func (s *Service) ServerInfo(ctx context.Context, _ ServerInfoRequest, serverName, version string) (*ServerInfoResult, error) {
	inputDir := s.pathValidator.GetConfiguredDirectory()

	scanCtx, cancel := context.WithTimeout(ctx, directoryScanWait)
	defer cancel()

	directoryContents := []FileInfo{}
	found, err := s.search.SearchDirectory(scanCtx, PDFSearchDirectoryRequest{Directory: inputDir}, directoryScanLimit)
	if err != nil {
		// A missing or slow directory should not hide the rest of the info
		s.logger.Debug("directory scan failed", zap.String("directory", inputDir), zap.Error(err))
	} else {
		directoryContents = found.Files
	}

	table := s.extractor.AliasTable()
	lineItems := make(map[string][]string, len(table.Items()))
	for _, item := range table.Items() {
		lineItems[item.String()] = table.Aliases(item)
	}

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		InputDirectory:    inputDir,
		OutputDirectory:   s.writer.Dir(),
		MaxFileSize:       s.maxFileSize,
		MaxYears:          s.extractor.MaxYears(),
		OutputFormats:     s.writer.Formats(),
		AvailableTools:    availableTools(),
		LineItems:         lineItems,
		DirectoryContents: directoryContents,
		UsageGuidance:     s.usageGuidance(),
	}, nil
}

func (s *Service) writerFor(formats []export.Format) (*export.Writer, error) {
	if len(formats) == 0 {
		return s.writer, nil
	}
	return export.NewWriter(s.writer.Dir(), formats...)
}

func (s *Service) logExtraction(result *ExtractionResult, start time.Time) {
	s.logger.Info("extraction complete",
		zap.String("source", result.Source),
		zap.String("currency", string(result.Currency)),
		zap.String("units", string(result.Units)),
		zap.Ints("years", result.Years),
		zap.Int("rows", result.RowCount),
		zap.Int("unaligned", len(result.Unaligned)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func newExtractionResult(source string, pages int, extracted *finance.Result, files export.Files) *ExtractionResult {
	years := []int(extracted.Years)
	if years == nil {
		years = []int{}
	}

	return &ExtractionResult{
		Source:    source,
		Pages:     pages,
		Currency:  extracted.Metadata.Currency,
		Units:     extracted.Metadata.Units,
		Years:     years,
		RowCount:  extracted.RowCount,
		Files:     files,
		Records:   extracted.Records,
		Unaligned: extracted.Unaligned,
	}
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        descriptions.ExtractFileTool,
			Description: "Extract normalized financial line items from a statement PDF",
			Usage: "Use this tool on income statements or annual reports. Writes CSV and/or XLSX " +
				"files to the output directory and returns currency, units, fiscal years and records.",
			Parameters: "path (required): PDF path, absolute or relative to the input directory, " +
				"formats (optional): comma-separated list of csv, xlsx",
		},
		{
			Name:        descriptions.ExtractTextTool,
			Description: "Extract normalized financial line items from statement text",
			Usage:       "Use this tool when the statement text is already available. Separate pages with form feeds.",
			Parameters: "text (required): statement text, name (optional): base name for output files, " +
				"write_files (optional): also write output files",
		},
		{
			Name:        descriptions.ValidateFileTool,
			Description: "Validate if a file is a readable PDF",
			Usage:       "Use this tool to check if a file is a valid PDF before extracting from it.",
			Parameters:  "path (required): PDF path, absolute or relative to the input directory",
		},
		{
			Name:        descriptions.SearchDirectoryTool,
			Description: "Search for PDF files in the input directory",
			Usage:       "Use this tool to find statements to extract. Supports fuzzy search by filename.",
			Parameters: "directory (optional): directory to search (uses the input directory if empty), " +
				"query (optional): search query for fuzzy matching",
		},
		{
			Name:        descriptions.StatsDirectoryTool,
			Description: "Summarize the PDF collection in a directory",
			Usage:       "Use this tool before a batch extraction to see file counts, sizes and files over the size limit.",
			Parameters:  "directory (optional): directory to analyze (uses the input directory if empty)",
		},
		{
			Name:        descriptions.ServerInfoTool,
			Description: "Get server information, recognized line items and usage guidance",
			Usage:       "Use this tool first to learn the configured directories and supported line items.",
			Parameters:  "none",
		},
	}
}

func (s *Service) usageGuidance() string {
	return `Financial Extractor Usage Guide:

1. FIND STATEMENTS:
   - Use 'pdf_search_directory' to list PDFs in the input directory
   - Use 'pdf_stats_directory' to see how many there are and which exceed the size limit

2. VALIDATE FILES:
   - Use 'pdf_validate_file' to check that a file is a readable PDF

3. EXTRACT:
   - Use 'financials_extract_file' on a text-based statement PDF
   - Use 'financials_extract_text' when you already hold the text
   - Every recognized line item is reported for every detected fiscal year;
     values that could not be found are flagged "Missing"

4. READ THE CONFIDENCE FLAG:
   * "OK": the value parsed cleanly
   * "Low Confidence": a number-like token could not be parsed; review the source
   * "Missing": no value was found for that line item and year

IMPORTANT NOTES:
- Values are reported in the document's units; check the 'units' field
- Years are matched to numbers by column position, most recent first
- Scanned (image-only) PDFs have no extractable text
- The server can handle files up to ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB`
}
