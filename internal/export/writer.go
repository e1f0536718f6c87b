package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/mcp-financial-extractor/internal/finance"
)

// Format is an output file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	// SheetName is the worksheet holding the records in XLSX output
	SheetName = "Financial Data"

	maxColumnWidth = 40
	defaultBase    = "document"
)

// ErrNoRecords is returned when there is nothing to serialize
var ErrNoRecords = eris.New("export: result has no records")

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("export: unsupported format %q", name)
	}
}

// Files lists the paths written for one result, keyed by format
type Files map[Format]string

// Writer writes results into a directory. Every call gets its own file names,
// so concurrent extractions of same-named documents never collide.
type Writer struct {
	dir     string
	formats []Format
	logger  *zap.Logger
}

// NewWriter creates a writer for dir, creating the directory if needed.
// Without formats both CSV and XLSX are written.
func NewWriter(dir string, formats ...Format) (*Writer, error) {
	if dir == "" {
		return nil, eris.New("export: output directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, eris.Wrapf(err, "export: create output directory %s", dir)
	}
	if len(formats) == 0 {
		formats = []Format{FormatCSV, FormatXLSX}
	}

	return &Writer{
		dir:     dir,
		formats: append([]Format(nil), formats...),
		logger:  zap.L().With(zap.String("component", "export")),
	}, nil
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// Formats returns the formats the writer produces
func (w *Writer) Formats() []Format {
	return append([]Format(nil), w.formats...)
}

// Write serializes result under <base>_<id>.<ext> for every configured format
func (w *Writer) Write(baseName string, result *finance.Result) (Files, error) {
	if result == nil || len(result.Records) == 0 {
		return nil, ErrNoRecords
	}

	stem := SanitizeBaseName(baseName) + "_" + uuid.NewString()[:8]
	files := make(Files, len(w.formats))

	for _, format := range w.formats {
		var buf bytes.Buffer
		var err error
		switch format {
		case FormatCSV:
			err = WriteCSV(&buf, result)
		case FormatXLSX:
			err = WriteXLSX(&buf, result)
		default:
			err = eris.Errorf("export: unsupported format %q", format)
		}
		if err != nil {
			return nil, err
		}

		path := filepath.Join(w.dir, stem+"."+string(format))
		if err := os.WriteFile(path, buf.Bytes(), 0o640); err != nil {
			return nil, eris.Wrapf(err, "export: write %s", path)
		}
		files[format] = path
	}

	w.logger.Debug("export written",
		zap.String("stem", stem),
		zap.Int("records", len(result.Records)),
		zap.Int("files", len(files)),
	)
	return files, nil
}

// WriteCSV writes the header and one line per record
func WriteCSV(out io.Writer, result *finance.Result) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, row := range Rows(result) {
		if err := cw.Write(row.Strings()); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Present values and known years are
// stored as numbers; columns are sized to their longest cell.
func WriteXLSX(out io.Writer, result *finance.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return eris.Wrap(err, "export: name sheet")
	}

	widths := make([]int, len(Header))
	set := func(col, row int, v any, text string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		if n := len(text); n > widths[col-1] {
			widths[col-1] = n
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	for i, h := range Header {
		if err := set(i+1, 1, h, h); err != nil {
			return eris.Wrap(err, "export: write xlsx header")
		}
	}

	for r, row := range Rows(result) {
		text := row.Strings()
		cells := []any{row.LineItem, yearCell(row.Year), text[2], row.Currency, row.Units, row.Confidence}
		if row.Value != nil {
			cells[2] = *row.Value
		}
		for c, v := range cells {
			if err := set(c+1, r+2, v, text[c]); err != nil {
				return eris.Wrap(err, "export: write xlsx row")
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return eris.Wrap(err, "export: column name")
		}
		if err := f.SetColWidth(SheetName, col, col, float64(min(w+4, maxColumnWidth))); err != nil {
			return eris.Wrap(err, "export: column width")
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

// SanitizeBaseName reduces a file name to a safe stem: the extension is dropped,
// accents are folded to ASCII, separators become underscores and anything outside
// [A-Za-z0-9_.-] is removed.
func SanitizeBaseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-':
			b.WriteRune(r)
		}
	}

	stem := strings.Trim(b.String(), "._")
	if stem == "" {
		return defaultBase
	}
	return stem
}
