// Package capture records the raw lines read from a source to a log file so a
// session can be replayed later with --replay, and prunes old recordings.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rileyhilliard/watchdog/internal/config"
	"github.com/rileyhilliard/watchdog/internal/errors"
)

// timestampLayout is the suffix on every recording's file name.
const timestampLayout = "20060102-150405"

// Writer appends lines to one recording file.
type Writer struct {
	mu     sync.Mutex
	dir    string
	path   string
	file   *os.File
	lines  int
	closed bool
}

// NewWriter creates <baseDir>/<source>-<timestamp>.log. The directory is
// created if needed.
func NewWriter(baseDir, source string) (*Writer, error) {
	baseDir = config.ExpandPath(baseDir)
	if baseDir == "" {
		return nil, errors.New(errors.ErrConfig,
			"No capture directory configured",
			"Set one with: watchdog config set capture.dir ~/.watchdog/captures")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't create capture directory "+baseDir,
			"Check your permissions for "+baseDir+".")
	}

	name := fmt.Sprintf("%s-%s.log", SourceName(source), time.Now().Format(timestampLayout))
	path := filepath.Join(baseDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't create capture file "+path,
			"Check your permissions for "+baseDir+".")
	}

	return &Writer{dir: baseDir, path: path, file: f}, nil
}

// WriteLine appends line followed by a newline.
func (w *Writer) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New(errors.ErrConfig,
			"Capture writer is closed",
			"This is unexpected - create a new Writer.")
	}
	if _, err := w.file.WriteString(line + "\n"); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't write to capture file "+w.path,
			"Check free disk space.")
	}
	w.lines++
	return nil
}

// Path returns the recording file.
func (w *Writer) Path() string {
	return w.path
}

// Dir returns the directory holding the recording.
func (w *Writer) Dir() string {
	return w.dir
}

// Lines returns how many lines were written.
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Close flushes and closes the file. Closing twice is harmless.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// SourceName turns a port or replay path into a file-name prefix, e.g.
// "/dev/ttyUSB0" becomes "ttyUSB0". An empty source is "capture".
func SourceName(source string) string {
	base := filepath.Base(source)
	if source == "" || base == "." || base == string(filepath.Separator) {
		return "capture"
	}
	if source == "-" {
		return "stdin"
	}

	result := make([]byte, len(base))
	for i := 0; i < len(base); i++ {
		c := base[i]
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			result[i] = '-'
		default:
			result[i] = c
		}
	}
	return string(result)
}
