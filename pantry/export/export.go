// export/export.go
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Common errors.
var (
	ErrEmptyHeaders  = errors.New("export: headers cannot be empty")
	ErrHeaderWritten = errors.New("export: header already written")
	ErrRowWidth      = errors.New("export: row width does not match header")
)

// Format names an output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("export: unknown format %q (want csv or xlsx)", s)
	}
}

// Writer streams a table: one header followed by rows of the same width.
// Close flushes buffered output; the underlying io.Writer is not closed.
type Writer interface {
	Header(cols ...string) error
	Row(vals ...any) error
	Close() error
}

// New returns a Writer for format writing to w.
func New(format Format, w io.Writer, sheet string) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSV(w), nil
	case FormatXLSX:
		return NewXLSX(w, sheet)
	default:
		return nil, fmt.Errorf("export: unknown format %q", format)
	}
}

// table tracks header state shared by the writers.
type table struct {
	width int
}

func (t *table) header(cols []string) error {
	if len(cols) == 0 {
		return ErrEmptyHeaders
	}
	if t.width != 0 {
		return ErrHeaderWritten
	}
	t.width = len(cols)
	return nil
}

func (t *table) row(vals []any) error {
	if t.width == 0 || len(vals) != t.width {
		return ErrRowWidth
	}
	return nil
}

// formatValue converts a cell value to its text form.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.UTC().Format(time.RFC3339)
	case interface{ Hex() string }:
		return val.Hex()
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
