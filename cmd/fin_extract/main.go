package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-financial-extractor/internal/config"
	"github.com/a3tai/mcp-financial-extractor/internal/export"
	"github.com/a3tai/mcp-financial-extractor/internal/finance"
	"github.com/a3tai/mcp-financial-extractor/internal/pdf"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type options struct {
	outDir      string
	formats     []string
	output      string
	maxYears    int
	maxFileSize int64
	verbose     bool
	help        bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	opts := options{}
	flags := newFlagSet(&opts, stderr)

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if opts.help {
		printHelp(stdout, flags)
		return 0
	}
	if flags.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: exactly one PDF file path required\n\n")
		printUsage(stderr)
		return 2
	}

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			defer zap.ReplaceGlobals(logger)()
		}
	}

	result, err := extract(context.Background(), flags.Arg(0), opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := outputResults(stdout, result, opts.output); err != nil {
		fmt.Fprintf(stderr, "Error outputting results: %v\n", err)
		return 1
	}
	return 0
}

func newFlagSet(opts *options, stderr io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet("fin_extract", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.outDir, "outdir", config.DefaultOutputDir, "Directory to write CSV/XLSX files to")
	flags.StringSliceVar(&opts.formats, "formats", []string{"csv", "xlsx"}, "Output file formats: csv, xlsx")
	flags.StringVar(&opts.output, "format", outputText, "Console output format: text, json")
	flags.IntVar(&opts.maxYears, "maxyears", finance.DefaultMaxYears, "Number of most recent fiscal years to report")
	flags.Int64Var(&opts.maxFileSize, "maxfilesize", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging to stderr")
	flags.BoolVarP(&opts.help, "help", "h", false, "Show help message")
	return flags
}

func extract(ctx context.Context, path string, opts options) (*pdf.ExtractionResult, error) {
	if opts.output != outputText && opts.output != outputJSON {
		return nil, eris.Errorf("unsupported output format: %s", opts.output)
	}
	if opts.maxYears < 1 {
		return nil, eris.New("maxyears must be at least 1")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, eris.Wrap(err, "failed to get absolute path")
	}

	formats := make([]export.Format, 0, len(opts.formats))
	for _, name := range opts.formats {
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}

	service, err := pdf.NewService(pdf.ServiceConfig{
		InputDirectory:  filepath.Dir(absPath),
		OutputDirectory: opts.outDir,
		MaxFileSize:     opts.maxFileSize,
		MaxYears:        opts.maxYears,
		Formats:         formats,
	})
	if err != nil {
		return nil, err
	}

	return service.ExtractFinancials(ctx, pdf.ExtractFileRequest{Path: absPath})
}

func outputResults(w io.Writer, result *pdf.ExtractionResult, format string) error {
	switch format {
	case outputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	default:
		return writeText(w, result)
	}
}

func writeText(w io.Writer, result *pdf.ExtractionResult) error {
	fmt.Fprintf(w, "Source:    %s (%d pages)\n", result.Source, result.Pages)
	fmt.Fprintf(w, "Currency:  %s\n", result.Currency)
	fmt.Fprintf(w, "Units:     %s\n", result.Units)
	fmt.Fprintf(w, "Years:     %v\n", result.Years)
	fmt.Fprintf(w, "Values:    %d of %d rows\n\n", result.RowCount, len(result.Records))

	export.WritePreview(w, result.Records)

	if len(result.Unaligned) > 0 {
		fmt.Fprintf(w, "\n%d value(s) without a fiscal year were left out of the files\n", len(result.Unaligned))
	}

	if len(result.Files) > 0 {
		fmt.Fprintln(w)
		for _, format := range []export.Format{export.FormatCSV, export.FormatXLSX} {
			if path, ok := result.Files[format]; ok {
				_, err := fmt.Fprintf(w, "Wrote %s\n", path)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func printHelp(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "fin_extract - Extract income statement line items from a PDF")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reads a text-based statement PDF, detects currency, units and fiscal years,")
	fmt.Fprintln(w, "and writes one row per line item and year to CSV and XLSX files.")
	fmt.Fprintln(w)
	printUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	flags.SetOutput(w)
	flags.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  fin_extract annual-report.pdf")
	fmt.Fprintln(w, "  fin_extract --outdir exports --formats xlsx statements/q4.pdf")
	fmt.Fprintln(w, "  fin_extract --format json --maxyears 3 10k.pdf")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  fin_extract [OPTIONS] <pdf_file>")
}
