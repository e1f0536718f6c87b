package pdf

import (
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"
)

var (
	// ErrNotPDF is returned for paths that do not name a .pdf file
	ErrNotPDF = eris.New("pdf: file is not a PDF")
	// ErrFileTooLarge is returned for files above the configured size limit
	ErrFileTooLarge = eris.New("pdf: file too large")
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks that a file is a structurally sound PDF. Problems with
// the file are reported in the result, not as an error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	pages, err := v.validatePDFFile(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.validatePDFFile(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	return checkFileInfo(filePath, fileInfo, v.maxFileSize)
}

func (v *Validator) validatePDFFile(filePath string) (int, error) {
	if filePath == "" {
		return 0, eris.New("pdf: path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return 0, eris.Errorf("pdf: file does not exist: %s", filePath)
	}
	if err != nil {
		return 0, eris.Wrap(err, "pdf: cannot access file")
	}
	if err := checkFileInfo(filePath, fileInfo, v.maxFileSize); err != nil {
		return 0, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(filePath, conf); err != nil {
		return 0, eris.Wrapf(err, "pdf: invalid PDF file %s", filePath)
	}

	pages, err := api.PageCountFile(filePath)
	if err != nil {
		return 0, eris.Wrapf(err, "pdf: count pages of %s", filePath)
	}
	return pages, nil
}

func checkFileInfo(filePath string, fileInfo os.FileInfo, maxFileSize int64) error {
	if fileInfo.IsDir() {
		return eris.Errorf("pdf: path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return eris.Wrapf(ErrNotPDF, "%s", filePath)
	}

	if fileInfo.Size() == 0 {
		return eris.Errorf("pdf: file is empty: %s", filePath)
	}

	if maxFileSize > 0 && fileInfo.Size() > maxFileSize {
		return eris.Wrapf(ErrFileTooLarge, "%d bytes (max: %d bytes)", fileInfo.Size(), maxFileSize)
	}

	return nil
}
