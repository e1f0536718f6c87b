package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/a3tai/mcp-financial-extractor/internal/export"
	"github.com/a3tai/mcp-financial-extractor/internal/pdf"
)

const maxListedFiles = 10

func formatExtractionResult(result *pdf.ExtractionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Extracted financial data from: %s\n", result.Source)
	fmt.Fprintf(&b, "Currency: %s\n", result.Currency)
	fmt.Fprintf(&b, "Units: %s\n", result.Units)
	fmt.Fprintf(&b, "Fiscal years: %s\n", formatYears(result.Years))
	fmt.Fprintf(&b, "Values found: %d of %d rows\n", result.RowCount, len(result.Records))

	if len(result.Files) > 0 {
		b.WriteString("\nOutput files:\n")
		for _, format := range sortedFormats(result.Files) {
			fmt.Fprintf(&b, "  %s: %s\n", format, result.Files[format])
		}
	}

	if len(result.Unaligned) > 0 {
		fmt.Fprintf(&b, "\n%d value(s) could not be tied to a detected year:\n", len(result.Unaligned))
		for _, rec := range result.Unaligned {
			fmt.Fprintf(&b, "  %s: %s (%s)\n", rec.LineItem, export.FormatValue(rec.Value), rec.Confidence)
		}
	}

	b.WriteString("\nPreview:\n")
	export.WritePreview(&b, result.Records)

	if result.RowCount == 0 {
		b.WriteString("\nNo values were found. The document may not contain an income statement, " +
			"or its layout may not be supported.\n")
	}

	return b.String()
}

func formatYears(years []int) string {
	if len(years) == 0 {
		return "none detected"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return strings.Join(parts, ", ")
}

func sortedFormats(files map[export.Format]string) []export.Format {
	formats := make([]export.Format, 0, len(files))
	for f := range files {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

func formatValidateResult(result *pdf.PDFValidateFileResult) string {
	if result.Valid {
		return fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)
	}
	return fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
}

func formatSearchResult(result *pdf.PDFSearchDirectoryResult) string {
	if result.TotalCount == 0 {
		text := fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			text += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		fmt.Fprintf(&b, "Search query: %s\n", result.SearchQuery)
	}
	b.WriteString("\nFiles:\n")

	for i, file := range result.Files {
		fmt.Fprintf(&b, "%d. %s\n", i+1, file.Name)
		fmt.Fprintf(&b, "   Path: %s\n", file.Path)
		fmt.Fprintf(&b, "   Size: %s\n", humanize.IBytes(uint64(file.Size)))
		fmt.Fprintf(&b, "   Modified: %s\n", file.ModifiedTime)
	}

	return b.String()
}

func formatStatsResult(result *pdf.PDFStatsDirectoryResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PDF statistics for directory: %s\n", result.Directory)
	fmt.Fprintf(&b, "Total Files: %d\n", result.TotalFiles)
	fmt.Fprintf(&b, "Total Size: %s\n", humanize.IBytes(uint64(result.TotalSize)))

	if result.TotalFiles > 0 {
		fmt.Fprintf(&b, "Average Size: %s\n", humanize.IBytes(uint64(result.AverageFileSize)))
		fmt.Fprintf(&b, "Largest File: %s (%s)\n", result.LargestFileName, humanize.IBytes(uint64(result.LargestFileSize)))
		fmt.Fprintf(&b, "Smallest File: %s (%s)\n", result.SmallestFileName, humanize.IBytes(uint64(result.SmallestFileSize)))
	}

	if len(result.OversizedFiles) > 0 {
		fmt.Fprintf(&b, "\nOver the size limit (%d):\n", len(result.OversizedFiles))
		for _, name := range result.OversizedFiles {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	return b.String()
}

func formatServerInfo(result *pdf.ServerInfoResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s v%s - Server Information\n", result.ServerName, result.Version)
	fmt.Fprintf(&b, "Input Directory: %s\n", result.InputDirectory)
	fmt.Fprintf(&b, "Output Directory: %s\n", result.OutputDirectory)
	fmt.Fprintf(&b, "Output Formats: %s\n", joinFormats(result.OutputFormats))
	fmt.Fprintf(&b, "Max File Size: %s\n", humanize.IBytes(uint64(result.MaxFileSize)))
	fmt.Fprintf(&b, "Fiscal Years Reported: up to %d most recent\n\n", result.MaxYears)

	if len(result.DirectoryContents) > 0 {
		fmt.Fprintf(&b, "Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= maxListedFiles {
				fmt.Fprintf(&b, "   ... and %d more files\n", len(result.DirectoryContents)-maxListedFiles)
				break
			}
			fmt.Fprintf(&b, "   %d. %s (%s)\n", i+1, file.Name, humanize.IBytes(uint64(file.Size)))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Directory Contents: No PDF files found in input directory\n\n")
	}

	b.WriteString("Recognized Line Items:\n")
	names := make([]string, 0, len(result.LineItems))
	for name := range result.LineItems {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  • %s: %s\n", name, strings.Join(result.LineItems[name], ", "))
	}

	b.WriteString("\nAvailable Tools:\n")
	for _, tool := range result.AvailableTools {
		fmt.Fprintf(&b, "\n• %s\n", tool.Name)
		fmt.Fprintf(&b, "  Description: %s\n", tool.Description)
		fmt.Fprintf(&b, "  Usage: %s\n", tool.Usage)
		fmt.Fprintf(&b, "  Parameters: %s\n", tool.Parameters)
	}

	b.WriteString("\n" + result.UsageGuidance)

	return b.String()
}

func joinFormats(formats []export.Format) string {
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}
