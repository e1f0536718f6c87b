package pdf

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const defaultMaxTextSize = 10 * 1024 * 1024

// Reader handles PDF text extraction
type Reader struct {
	maxFileSize int64
	maxTextSize int
	logger      *zap.Logger
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: defaultMaxTextSize,
		logger:      zap.L().With(zap.String("component", "pdf_reader")),
	}
}

// ReadPages returns the text of every page that has any, in page order.
// Lines within a page are separated by "\n". Pages that fail to decode are
// skipped, and reading stops once the total text reaches the size cap.
func (r *Reader) ReadPages(ctx context.Context, path string) ([]string, error) {
	if path == "" {
		return nil, eris.New("pdf: path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, eris.Errorf("pdf: file does not exist: %s", path)
	}
	if err != nil {
		return nil, eris.Wrap(err, "pdf: cannot access file")
	}
	if err := checkFileInfo(path, fileInfo, r.maxFileSize); err != nil {
		return nil, err
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pdf: open %s", path)
	}
	defer f.Close()

	var pages []string
	total := 0
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pdf: read pages")
		}

		text, err := pageText(pdfReader, pageNum)
		if err != nil {
			r.logger.Debug("skipping unreadable page",
				zap.String("path", path),
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			continue
		}
		text = norm.NFKC.String(text)
		if strings.TrimSpace(text) == "" {
			continue
		}

		if total+len(text) > r.maxTextSize {
			if remaining := r.maxTextSize - total; remaining > 0 {
				pages = append(pages, strings.ToValidUTF8(text[:remaining], ""))
			}
			r.logger.Warn("text limit reached",
				zap.String("path", path),
				zap.Int("page", pageNum),
				zap.Int("limit", r.maxTextSize),
			)
			break
		}

		pages = append(pages, text)
		total += len(text)
	}

	return pages, nil
}

// pageText renders one page as text rows, top to bottom. It falls back to the
// plain text stream when row grouping fails; a panic inside the decoder is
// reported as an error for that page.
func pageText(pdfReader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = eris.Errorf("pdf: page %d: decoder panic: %v", pageNum, rec)
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	rows, rowErr := page.GetTextByRow()
	if rowErr == nil && len(rows) > 0 {
		return joinRows(rows), nil
	}

	plain, err := page.GetPlainText(nil)
	if err != nil {
		return "", eris.Wrapf(err, "pdf: page %d text", pageNum)
	}
	return plain, nil
}

func joinRows(rows pdf.Rows) string {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		words := append(pdf.TextHorizontal(nil), row.Content...)
		sort.SliceStable(words, func(i, j int) bool {
			return words[i].X < words[j].X
		})

		parts := make([]string, 0, len(words))
		for _, w := range words {
			if s := strings.TrimSpace(w.S); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n")
}
