// Package coverage dumps code coverage data of the running binary.
//
// Coverage is only available in binaries built with -cover. The capability
// is resolved once at startup; callers get ErrUnavailable when it is missing.
package coverage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/coverage"
)

// DefaultFileName is the coverage file written into the data directory.
const DefaultFileName = "coverage.ec"

// MetaSuffix is appended to the counter file path for the meta-data file.
const MetaSuffix = ".meta"

// ErrUnavailable is returned when the binary carries no coverage support.
var ErrUnavailable = errors.New("coverage data unavailable")

// Dumper writes coverage data to a file.
type Dumper interface {
	Dump(path string) error
}

// Writer is the pair of writers a Dumper relies on. runtime/coverage
// provides both.
type Writer struct {
	Meta     func(io.Writer) error
	Counters func(io.Writer) error
}

// Runtime returns the Writer of the running binary.
func Runtime() Writer {
	return Writer{Meta: coverage.WriteMeta, Counters: coverage.WriteCounters}
}

// Resolve checks w and returns a Dumper, or ErrUnavailable when w cannot
// produce meta-data.
func Resolve(w Writer) (Dumper, error) {
	if w.Meta == nil || w.Counters == nil {
		return nil, ErrUnavailable
	}
	if err := w.Meta(io.Discard); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &fileDumper{w: w}, nil
}

type fileDumper struct {
	w Writer
}

// Dump writes counters to path and meta-data to path+MetaSuffix.
func (d *fileDumper) Dump(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create coverage directory: %w", err)
	}
	if err := writeFile(path+MetaSuffix, d.w.Meta); err != nil {
		return fmt.Errorf("failed to write coverage meta-data: %w", err)
	}
	if err := writeFile(path, d.w.Counters); err != nil {
		return fmt.Errorf("failed to write coverage counters: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// DefaultPath returns the coverage file inside dataDir, falling back to the
// user cache directory.
func DefaultPath(dataDir string) (string, error) {
	if dataDir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate data directory: %w", err)
		}
		dataDir = filepath.Join(cache, "cuke-bridge")
	}
	return filepath.Join(dataDir, DefaultFileName), nil
}

// Hint returns a short suggestion for a coverage failure.
func Hint(err error) string {
	if errors.Is(err, ErrUnavailable) {
		return "Is the binary built with -cover?"
	}
	return ""
}
