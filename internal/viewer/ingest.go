package viewer

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/csheth/studyhub/internal/library"
)

const pdfMIMEType = "application/pdf"

// ErrNotPDF is returned by Inspect for files that are not PDFs by type.
var ErrNotPDF = errors.New("only PDF files can be uploaded")

// PageCount reports how many pages the file at path has.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// Inspect validates a picked file and builds its upload descriptor. The page
// count is best effort: unreadable PDFs are still accepted with 0 pages.
func Inspect(path string) (library.FileDescriptor, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return library.FileDescriptor{}, errors.New("no file selected")
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return library.FileDescriptor{}, err
	}
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(abs)))
	if mediaType != pdfMIMEType {
		return library.FileDescriptor{}, fmt.Errorf("%w: %s", ErrNotPDF, filepath.Base(abs))
	}
	info, err := os.Stat(abs)
	if err != nil {
		return library.FileDescriptor{}, err
	}
	if info.IsDir() {
		return library.FileDescriptor{}, fmt.Errorf("%s is a directory", filepath.Base(abs))
	}
	desc := library.FileDescriptor{Name: filepath.Base(abs), Path: abs}
	if n, err := PageCount(abs); err == nil {
		desc.TotalPages = n
	}
	return desc, nil
}
