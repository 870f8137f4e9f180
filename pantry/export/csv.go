// export/csv.go
package export

import (
	"encoding/csv"
	"io"
)

// CSV writes comma-separated rows with CRLF line endings.
type CSV struct {
	table
	w *csv.Writer
}

// NewCSV returns a CSV writer on w.
func NewCSV(w io.Writer) *CSV {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return &CSV{w: cw}
}

// Header writes the column names.
func (c *CSV) Header(cols ...string) error {
	if err := c.header(cols); err != nil {
		return err
	}
	return c.w.Write(cols)
}

// Row writes one record.
func (c *CSV) Row(vals ...any) error {
	if err := c.row(vals); err != nil {
		return err
	}
	rec := make([]string, len(vals))
	for i, v := range vals {
		rec[i] = formatValue(v)
	}
	return c.w.Write(rec)
}

// Close flushes buffered records.
func (c *CSV) Close() error {
	c.w.Flush()
	return c.w.Error()
}
