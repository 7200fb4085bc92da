package metadata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"letterbox/internal/fsx"
)

const (
	// ColumnClipID names the required identifier column.
	ColumnClipID = "ClipID"
	// ColumnCropSize names the column holding detected W:H:X:Y rectangles.
	ColumnCropSize = "CropSize"
)

const utf8BOM = "\ufeff"

// ErrUnknownClip is returned when a ClipID is not present in the table.
var ErrUnknownClip = errors.New("unknown clip id")

// Row is a read-only view of one metadata entry.
type Row struct {
	Index    int
	ClipID   string
	CropSize string
}

// Stem returns the source video stem for the row.
func (r Row) Stem() string {
	return VideoStem(r.ClipID)
}

// Table is the in-memory metadata table. Only the CropSize column is ever
// mutated; every other cell, the header, and the row order are written back
// exactly as read.
type Table struct {
	header  []string
	records [][]string
	clipCol int
	cropCol int
	index   map[string]int
	bom     bool
	dirty   bool
}

// Load reads the metadata table at path.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer file.Close()

	table, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("metadata %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes a CSV metadata table. The header must contain ClipID and
// ClipIDs must be unique and non-empty.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty metadata table")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{clipCol: -1, cropCol: -1}
	if len(header) > 0 && strings.HasPrefix(header[0], utf8BOM) {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
		t.bom = true
	}
	t.header = header
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnClipID:
			if t.clipCol < 0 {
				t.clipCol = i
			}
		case ColumnCropSize:
			if t.cropCol < 0 {
				t.cropCol = i
			}
		}
	}
	if t.clipCol < 0 {
		return nil, fmt.Errorf("missing %s column", ColumnClipID)
	}

	t.index = make(map[string]int)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(record), len(header))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		clipID := strings.TrimSpace(record[t.clipCol])
		if clipID == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, ColumnClipID)
		}
		if prev, ok := t.index[clipID]; ok {
			return nil, fmt.Errorf("line %d: duplicate %s %q (first seen in row %d)", line, ColumnClipID, clipID, prev+1)
		}
		t.index[clipID] = len(t.records)
		t.records = append(t.records, record)
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Header returns a copy of the header row.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// Row returns the i-th row in table order.
func (t *Table) Row(i int) Row {
	record := t.records[i]
	row := Row{Index: i, ClipID: strings.TrimSpace(record[t.clipCol])}
	if t.cropCol >= 0 {
		row.CropSize = strings.TrimSpace(record[t.cropCol])
	}
	return row
}

// Rows returns every row in table order.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.records))
	for i := range t.records {
		rows[i] = t.Row(i)
	}
	return rows
}

// CropSize returns the recorded rectangle for clipID, or "" when absent.
func (t *Table) CropSize(clipID string) (string, error) {
	i, ok := t.index[clipID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownClip, clipID)
	}
	return t.Row(i).CropSize, nil
}

// SetCropSize records value for clipID. An empty value clears the cell. The
// CropSize column is appended to the header the first time a value is set on
// a table that lacks it.
func (t *Table) SetCropSize(clipID, value string) error {
	i, ok := t.index[clipID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClip, clipID)
	}
	value = strings.TrimSpace(value)
	if t.cropCol < 0 {
		if value == "" {
			return nil
		}
		t.addCropColumn()
	}
	if t.records[i][t.cropCol] == value {
		return nil
	}
	t.records[i][t.cropCol] = value
	t.dirty = true
	return nil
}

// Dirty reports whether any cell changed since the table was loaded or saved.
func (t *Table) Dirty() bool {
	return t.dirty
}

func (t *Table) addCropColumn() {
	t.cropCol = len(t.header)
	t.header = append(t.header, ColumnCropSize)
	for i := range t.records {
		t.records[i] = append(t.records[i], "")
	}
	t.dirty = true
}

// Encode writes the table as CSV.
func (t *Table) Encode(w io.Writer) error {
	if t.bom {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(t.header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.records); err != nil {
		return err
	}
	return writer.Error()
}

// Save replaces the file at path with the table contents atomically.
func (t *Table) Save(path string) error {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fsx.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), buf.Bytes(), perm); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	t.dirty = false
	return nil
}

// VideoStem returns the part of a ClipID before the first "/", which names
// the source video file.
func VideoStem(clipID string) string {
	clipID = strings.TrimSpace(clipID)
	if i := strings.Index(clipID, "/"); i >= 0 {
		return clipID[:i]
	}
	return clipID
}
