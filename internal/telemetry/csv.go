// Package telemetry turns WWV core events into the bit-exact CSV and
// UDP records downstream tooling parses. The core package never
// imports this one: a host wires a CSVSink/UDPSink's methods as
// Core.On* callbacks.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
)

// WallClock maps a detector-relative elapsed_ms into a wall-clock time
// string, seeded once at construction so the core stays deterministic
// for tests (SPEC_FULL.md §9's "wall-clock seed" design note).
type WallClock struct {
	seed time.Time
}

func NewWallClock(seed time.Time) WallClock { return WallClock{seed: seed} }

func (w WallClock) At(elapsedMs float64) string {
	return w.seed.Add(time.Duration(elapsedMs * float64(time.Millisecond))).Format("15:04:05.000")
}

// CSVSink appends comma-separated telemetry lines to a file, rotating
// daily and gzip-compressing the rotated-out file.
type CSVSink struct {
	mu       sync.Mutex
	dir      string
	name     string
	header   string
	clock    WallClock
	file     *os.File
	day      int
}

// NewCSVSink opens (or creates) today's file <dir>/<name>-YYYYMMDD.csv
// and writes header as a leading comment line if the file is new.
func NewCSVSink(dir, name, header string, clock WallClock) (*CSVSink, error) {
	s := &CSVSink{dir: dir, name: name, header: header, clock: clock}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: mkdir %s: %w", dir, err)
	}
	if err := s.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVSink) rotateIfNeeded() error {
	day := time.Now().YearDay()
	if s.file != nil && s.day == day {
		return nil
	}

	if s.file != nil {
		oldPath := s.file.Name()
		s.file.Close()
		if err := gzipAndRemove(oldPath); err != nil {
			// Logging/telemetry failures must not perturb signal
			// processing; swallow and continue with a fresh file.
			_ = err
		}
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.csv", s.name, time.Now().Format("20060102")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}

	if info, statErr := f.Stat(); statErr == nil && info.Size() == 0 {
		fmt.Fprintf(f, "# %s\n", s.header)
	}

	s.file = f
	s.day = day
	return nil
}

// WriteLine appends one CSV record (caller supplies the fields already
// comma-joined; failures are swallowed per the external-collaborator
// contract).
func (s *CSVSink) WriteLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rotateIfNeeded(); err != nil {
		return
	}
	fmt.Fprintln(s.file, line)
}

// Close releases the underlying file handle.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func gzipAndRemove(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
