package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"letterbox/internal/logging"
)

// Record is one decoded JSON log line.
type Record struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	ClipID    string
	RunID     string
	Pass      string
	Fields    map[string]any
}

// ParseRecord decodes a JSON log line. Lines that are not JSON objects report
// false.
func ParseRecord(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Record{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Record{}, false
	}
	rec := Record{Fields: make(map[string]any)}
	for key, value := range raw {
		switch key {
		case "ts":
			if s, ok := value.(string); ok {
				rec.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case "level":
			rec.Level = stringValue(value)
		case "msg":
			rec.Message = stringValue(value)
		case logging.FieldComponent:
			rec.Component = stringValue(value)
		case logging.FieldClipID:
			rec.ClipID = stringValue(value)
		case logging.FieldRunID:
			rec.RunID = stringValue(value)
		case logging.FieldPass:
			rec.Pass = stringValue(value)
		case "source":
		default:
			rec.Fields[key] = value
		}
	}
	return rec, true
}

// Filter selects records. Empty fields match everything; RunID matches by
// prefix.
type Filter struct {
	ClipID string
	RunID  string
	Pass   string
}

// Empty reports whether the filter matches every record.
func (f Filter) Empty() bool {
	return f.ClipID == "" && f.RunID == "" && f.Pass == ""
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec Record) bool {
	if f.ClipID != "" && rec.ClipID != f.ClipID {
		return false
	}
	if f.RunID != "" && !strings.HasPrefix(rec.RunID, f.RunID) {
		return false
	}
	if f.Pass != "" && rec.Pass != f.Pass {
		return false
	}
	return true
}

// Format renders rec on one line in the console layout:
// "2006-01-02 15:04:05 INFO component: [clip] message key=value".
func (rec Record) Format() string {
	var b strings.Builder
	if !rec.Time.IsZero() {
		b.WriteString(rec.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(fmt.Sprintf("%-5s ", strings.ToUpper(rec.Level)))
	if rec.Component != "" {
		b.WriteString(rec.Component)
		b.WriteString(": ")
	}
	if rec.ClipID != "" {
		b.WriteString("[" + rec.ClipID + "] ")
	}
	b.WriteString(rec.Message)

	keys := make([]string, 0, len(rec.Fields))
	for key := range rec.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf(" %s=%s", key, quote(fmt.Sprint(rec.Fields[key]))))
	}
	return b.String()
}

func stringValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func quote(value string) string {
	if value == "" || strings.ContainsAny(value, " \t\"=") {
		return fmt.Sprintf("%q", value)
	}
	return value
}
