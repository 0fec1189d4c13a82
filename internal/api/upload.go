package api

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pharmadash/pharmadash/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// MaxUploadSize is the bulk-import size ceiling, enforced before any network call.
const MaxUploadSize = 10 << 20 // 10 MiB

var allowedUploadExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
	".json": true,
}

var allowedPrescriptionExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// UploadFile is a validated, ready-to-send import file.
type UploadFile struct {
	Name string
	Size int64
	// Rows is the data row count for spreadsheet files, -1 when unknown.
	Rows int

	reader io.ReadCloser
}

func (f *UploadFile) Read(b []byte) (int, error) { return f.reader.Read(b) }
func (f *UploadFile) Close() error               { return f.reader.Close() }

// OpenUploadFile validates an import file and opens it for upload. Rejections
// happen entirely client-side: a disallowed extension, an oversized file or an
// unreadable spreadsheet never produce an HTTP request.
func OpenUploadFile(path string) (*UploadFile, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedUploadExtensions[ext] {
		return nil, errors.Validation(
			"invalid file type: upload Excel (.xlsx, .xls), CSV (.csv) or JSON (.json) files")
	}
	return openValidated(path, ext)
}

// OpenPrescriptionFile validates a prescription image for upload. Same size
// ceiling as bulk imports, image/PDF extensions only.
func OpenPrescriptionFile(path string) (*UploadFile, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedPrescriptionExtensions[ext] {
		return nil, errors.Validation(
			"invalid file type: upload an image (.jpg, .jpeg, .png) or PDF (.pdf)")
	}
	return openValidated(path, ext)
}

func openValidated(path, ext string) (*UploadFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("cannot read file: %v", err))
	}
	if info.Size() > MaxUploadSize {
		return nil, errors.Validation("file size exceeds 10MB limit")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("cannot open file: %v", err))
	}

	upload := &UploadFile{
		Name:   filepath.Base(path),
		Size:   info.Size(),
		Rows:   -1,
		reader: f,
	}

	// Preflight xlsx workbooks: a corrupt file fails here instead of after
	// a long server round-trip, and the row count feeds progress output.
	if ext == ".xlsx" {
		rows, err := countSheetRows(f)
		if err != nil {
			f.Close()
			return nil, errors.Validation(fmt.Sprintf("not a readable Excel workbook: %v", err))
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, errors.Validation(fmt.Sprintf("cannot rewind file: %v", err))
		}
		upload.Rows = rows
	}

	return upload, nil
}

// countSheetRows opens the workbook and counts data rows on the first sheet,
// excluding the header row.
func countSheetRows(r io.Reader) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize))
	if err != nil {
		return 0, err
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return 0, fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows) - 1, nil
}
