package inspect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxUploadBytes is the backend's default upload cap. The client never
// blocks an oversize file; it only warns before the server rejects it.
const MaxUploadBytes = 16 << 20

// DocumentInfo is an informational preflight of a local document.
type DocumentInfo struct {
	Path            string `json:"path"`
	SizeBytes       int64  `json:"sizeBytes"`
	PageCount       int    `json:"pageCount,omitempty"`
	OversizeWarning bool   `json:"oversizeWarning"`
}

// Inspect stats the document and, for PDFs, counts pages. Page-count
// failures are not errors; scanned or encrypted PDFs still upload fine.
func Inspect(path string) (DocumentInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return DocumentInfo{}, fmt.Errorf("not a file: %s", path)
	}

	doc := DocumentInfo{
		Path:            path,
		SizeBytes:       info.Size(),
		OversizeWarning: info.Size() > MaxUploadBytes,
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		doc.PageCount = pdfPageCount(path)
	}
	return doc, nil
}

// pdfPageCount returns the page count or zero when the PDF is unreadable.
func pdfPageCount(path string) int {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	return reader.NumPage()
}
