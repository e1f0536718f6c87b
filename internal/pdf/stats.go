package pdf

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Stats handles PDF collection statistics
type Stats struct {
	validator *Validator
}

// NewStats creates a new PDF stats analyzer with the specified constraints
func NewStats(maxFileSize int64) *Stats {
	return &Stats{
		validator: NewValidator(maxFileSize),
	}
}

// GetDirectoryStats summarizes the PDFs under req.Directory. Files over the
// size limit are listed in OversizedFiles and left out of the totals.
func (s *Stats) GetDirectoryStats(ctx context.Context, req PDFStatsDirectoryRequest) (*PDFStatsDirectoryResult, error) {
	directory := req.Directory
	if directory == "" {
		return nil, eris.New("pdf: directory cannot be empty")
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, eris.Wrap(err, "pdf: resolve directory path")
	}
	if _, err := os.Stat(absDirectory); os.IsNotExist(err) {
		return nil, eris.Errorf("pdf: directory does not exist: %s", directory)
	}

	result := &PDFStatsDirectoryResult{
		Directory:      absDirectory,
		OversizedFiles: []string{},
	}

	err = filepath.WalkDir(absDirectory, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil //nolint:nilerr // Continue despite errors
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 || !strings.HasSuffix(strings.ToLower(d.Name()), ".pdf") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Continue despite errors
		}

		switch verr := s.validator.ValidateFileInfo(path, info); {
		case eris.Is(verr, ErrFileTooLarge):
			result.OversizedFiles = append(result.OversizedFiles, info.Name())
		case verr == nil:
			result.add(info)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "pdf: walk directory")
	}

	if result.TotalFiles > 0 {
		result.AverageFileSize = result.TotalSize / int64(result.TotalFiles)
	}

	return result, nil
}

func (r *PDFStatsDirectoryResult) add(info fs.FileInfo) {
	size := info.Size()
	if r.TotalFiles == 0 || size > r.LargestFileSize {
		r.LargestFileSize = size
		r.LargestFileName = info.Name()
	}
	if r.TotalFiles == 0 || size < r.SmallestFileSize {
		r.SmallestFileSize = size
		r.SmallestFileName = info.Name()
	}
	r.TotalFiles++
	r.TotalSize += size
}
