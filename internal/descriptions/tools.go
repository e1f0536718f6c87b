package descriptions

// Tool descriptions with practical examples and use cases

// Tool names
const (
	ExtractFileTool     = "financials_extract_file"
	ExtractTextTool     = "financials_extract_text"
	ValidateFileTool    = "pdf_validate_file"
	SearchDirectoryTool = "pdf_search_directory"
	StatsDirectoryTool  = "pdf_stats_directory"
	ServerInfoTool      = "financials_server_info"
)

const (
	// Extraction Tools
	ExtractFileDescription = `Extract income statement line items per fiscal year from a statement PDF.

**When to use:** You have an annual report, 10-K or quarterly statement as a text-based PDF and need revenue, costs, profit and similar figures as a table.

**Why it's useful:** Detects the reporting currency, the unit scale (thousands, millions, crores, ...) and up to five fiscal years, then reports every recognized line item for every year with a confidence flag. Results are written to CSV and/or XLSX in the output directory.

**Examples:**
• Annual report: "Extract the income statement from infosys-2023.pdf"
• Only a spreadsheet: "Extract acme-10k.pdf with formats=xlsx"

**Common workflows:**
1. Discovery: pdf_search_directory → pdf_validate_file → financials_extract_file
2. Review: Extract → check rows flagged "Low Confidence" or "Missing" → confirm against the source

**Best practices:** Values stay in the document's units; always read the units field before comparing companies. Scanned PDFs have no text layer and cannot be extracted.`

	ExtractTextDescription = `Extract income statement line items from statement text you already have.

**When to use:** The statement text came from another tool, a copy/paste or an OCR step, so there is no PDF to read.

**Why it's useful:** Runs the same currency, unit, year and line item detection as the PDF tool. Files are only written when write_files is set.

**Examples:**
• Pasted table: "Extract financials from this text: Revenue 1,500 1,200 ..."
• OCR output: "Extract line items from the OCR text of scanned-report.pdf and save an XLSX"

**Best practices:** Separate pages with form feed characters so page boundaries are kept. Include the header lines; currency, units and years are detected from the whole text.`

	// File Tools
	ValidateFileDescription = `Verify PDF file integrity and readability before extraction.

**When to use:** Before extracting from a file you have not processed before, especially uploads or files from unknown sources.

**Why it's useful:** Identifies corrupted or non-PDF files early and reports the page count of valid ones.

**Examples:**
• Upload verification: "Check that statement-upload.pdf is a valid PDF"
• Batch safety: "Validate every report found in /filings before extracting"

**Best practices:** A valid PDF can still be image-only; extraction reports that case separately.`

	// Search and Discovery Tools
	SearchDirectoryDescription = `Discover and filter PDF files in the input directory with fuzzy search.

**When to use:** Need to find statements by name, explore the input directory, or build a list of files to extract.

**Why it's useful:** Quickly locates relevant documents without manual browsing, supports partial and out-of-order word matches.

**Examples:**
• Find a filing: "Search for 'annual 2023'"
• Inventory: "List all PDFs in the input directory"

**Best practices:** Leave the directory empty to search the configured input directory.`

	StatsDirectoryDescription = `Summarize the PDF collection in a directory.

**When to use:** Before a batch extraction, to see how many statements there are and how large they get.

**Why it's useful:** Reports file count, total and average size, and the largest and smallest files, so oversized files can be spotted before they fail the size limit.

**Examples:**
• Batch planning: "How many PDFs are waiting in the input directory?"

**Best practices:** Only files within the configured size limit are counted.`

	// Utility Tools
	ServerInfoDescription = `Get server configuration, recognized line items, available tools and usage guidance.

**When to use:** Starting work with the server, or checking which line items and aliases are recognized.

**Why it's useful:** Shows the input and output directories, the output formats, the file size limit, the PDFs currently available and every line item with the phrases that match it.

**Best practices:** Call this first in a new session.`
)

var toolDescriptions = map[string]string{
	ExtractFileTool:     ExtractFileDescription,
	ExtractTextTool:     ExtractTextDescription,
	ValidateFileTool:    ValidateFileDescription,
	SearchDirectoryTool: SearchDirectoryDescription,
	StatsDirectoryTool:  StatsDirectoryDescription,
	ServerInfoTool:      ServerInfoDescription,
}

var toolOrder = []string{
	ExtractFileTool,
	ExtractTextTool,
	ValidateFileTool,
	SearchDirectoryTool,
	StatsDirectoryTool,
	ServerInfoTool,
}

// GetToolDescription returns the description for a tool, or an empty string
// for an unknown name
func GetToolDescription(toolName string) string {
	return toolDescriptions[toolName]
}

// GetAllToolNames returns every tool name in registration order
func GetAllToolNames() []string {
	return append([]string(nil), toolOrder...)
}
