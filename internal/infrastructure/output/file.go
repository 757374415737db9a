package output

import (
	"errors"
	"fmt"
	"os"

	"github.com/wbscout/wbscout/internal/domain"
)

// DefaultPath is where the results page is written
const DefaultPath = "wildberries_results.html"

// FileWriter writes rendered pages to a single file, replacing its content each time
type FileWriter struct {
	path string
}

// NewFileWriter creates a writer for path
func NewFileWriter(path string) *FileWriter {
	if path == "" {
		path = DefaultPath
	}
	return &FileWriter{path: path}
}

// Path returns the output file path
func (w *FileWriter) Path() string {
	return w.path
}

// WritePage truncates the output file and writes the page to it
func (w *FileWriter) WritePage(page *domain.RenderedPage) error {
	if page == nil {
		return errors.New("nil page")
	}
	if err := os.WriteFile(w.path, page.HTML, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.path, err)
	}
	return nil
}
