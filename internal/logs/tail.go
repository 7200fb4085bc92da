package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const maxLineBytes = 1024 * 1024

// Reader returns lines appended to a log file since the previous call.
type Reader struct {
	path   string
	offset int64
}

// NewReader creates a Reader positioned at the start of path. The file does
// not need to exist yet.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Offset reports the byte position of the next unread line.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Last returns up to limit trailing lines and positions the reader at the end
// of the file. A missing file yields no lines.
func (r *Reader) Last(limit int) ([]string, error) {
	return r.LastMatching(limit, nil)
}

// LastMatching is Last restricted to lines for which keep reports true. A nil
// keep accepts every line.
func (r *Reader) LastMatching(limit int, keep func(string) bool) ([]string, error) {
	file, err := r.open()
	if file == nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	if limit > 0 {
		ring := make([]string, 0, limit)
		scanner := newScanner(file)
		for scanner.Scan() {
			if keep != nil && !keep(scanner.Text()) {
				continue
			}
			if len(ring) == limit {
				ring = append(ring[:0], ring[1:]...)
			}
			ring = append(ring, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log file: %w", err)
		}
		lines = ring
	}

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek log file: %w", err)
	}
	r.offset = end
	return lines, nil
}

// Next returns complete lines written after the current offset. A trailing
// line without a newline is left for the following call.
func (r *Reader) Next() ([]string, error) {
	file, err := r.open()
	if file == nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < r.offset {
		r.offset = 0
	}
	if _, err := file.Seek(r.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, fmt.Errorf("read log file: %w", err)
		}
		r.offset += int64(len(line))
		lines = append(lines, trimNewline(line))
	}
}

// Follow polls for appended lines every interval and hands each batch to fn
// until ctx is done.
func (r *Reader) Follow(ctx context.Context, interval time.Duration, fn func([]string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		lines, err := r.Next()
		if err != nil {
			return err
		}
		if len(lines) > 0 {
			fn(lines)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// open returns a nil file and nil error when the log does not exist yet.
func (r *Reader) open() (*os.File, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.offset = 0
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", r.path)
	}
	return file, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return scanner
}

func trimNewline(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
