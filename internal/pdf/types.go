package pdf

import (
	"github.com/a3tai/mcp-financial-extractor/internal/export"
	"github.com/a3tai/mcp-financial-extractor/internal/finance"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// ExtractFileRequest asks for line items from a PDF on disk
type ExtractFileRequest struct {
	Path string `json:"path"`
	// Formats overrides the configured output formats when non-empty
	Formats []export.Format `json:"formats,omitempty"`
}

// ExtractTextRequest asks for line items from text the caller already holds.
// Pages are separated by form feeds.
type ExtractTextRequest struct {
	Text       string `json:"text"`
	Name       string `json:"name,omitempty"`
	WriteFiles bool   `json:"write_files"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFSearchDirectoryRequest represents a request to search for PDF files in a directory
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// PDFStatsDirectoryRequest represents a request for statistics about a directory
type PDFStatsDirectoryRequest struct {
	Directory string `json:"directory"`
}

// ServerInfoRequest represents a request to get server information and capabilities
type ServerInfoRequest struct{}

// Response Types

// ExtractionResult is the outcome of one extraction run
type ExtractionResult struct {
	Source   string                   `json:"source"`
	Pages    int                      `json:"pages"`
	Currency finance.Currency         `json:"currency"`
	Units    finance.Units            `json:"units"`
	Years    []int                    `json:"years"`
	RowCount int                      `json:"row_count"`
	Files    map[export.Format]string `json:"files,omitempty"`
	Records  []finance.Record         `json:"records"`
	// Unaligned holds values that could not be tied to a detected year
	Unaligned []finance.Record `json:"unaligned,omitempty"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}

// PDFSearchDirectoryResult represents the result of a PDF search operation
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// PDFStatsDirectoryResult summarizes the PDFs in a directory
type PDFStatsDirectoryResult struct {
	Directory        string   `json:"directory"`
	TotalFiles       int      `json:"total_files"`
	TotalSize        int64    `json:"total_size"`
	LargestFileSize  int64    `json:"largest_file_size"`
	LargestFileName  string   `json:"largest_file_name"`
	SmallestFileSize int64    `json:"smallest_file_size"`
	SmallestFileName string   `json:"smallest_file_name"`
	AverageFileSize  int64    `json:"average_file_size"`
	OversizedFiles   []string `json:"oversized_files"`
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName        string              `json:"server_name"`
	Version           string              `json:"version"`
	InputDirectory    string              `json:"input_directory"`
	OutputDirectory   string              `json:"output_directory"`
	MaxFileSize       int64               `json:"max_file_size"`
	MaxYears          int                 `json:"max_years"`
	OutputFormats     []export.Format     `json:"output_formats"`
	AvailableTools    []ToolInfo          `json:"available_tools"`
	LineItems         map[string][]string `json:"line_items"`
	DirectoryContents []FileInfo          `json:"directory_contents"`
	UsageGuidance     string              `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
