// export/excel.go
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSX streams rows into a single-sheet workbook written on Close.
type XLSX struct {
	table
	out   io.Writer
	file  *excelize.File
	sw    *excelize.StreamWriter
	line  int
	style int
}

// NewXLSX returns a workbook writer whose only sheet is named sheet.
func NewXLSX(w io.Writer, sheet string) (*XLSX, error) {
	if sheet == "" {
		sheet = "Sheet1"
	}
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, fmt.Errorf("export: rename sheet: %w", err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E0E0E0"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("export: stream writer: %w", err)
	}
	return &XLSX{out: w, file: f, sw: sw, line: 1, style: style}, nil
}

// Header writes a bold, frozen header row.
func (x *XLSX) Header(cols ...string) error {
	if err := x.header(cols); err != nil {
		return err
	}
	if err := x.sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	if err := x.sw.SetColWidth(1, len(cols), 20); err != nil {
		return err
	}

	cells := make([]any, len(cols))
	for i, c := range cols {
		cells[i] = excelize.Cell{StyleID: x.style, Value: c}
	}
	return x.next(cells)
}

// Row writes one record. Times stay typed; stringers become text.
func (x *XLSX) Row(vals ...any) error {
	if err := x.row(vals); err != nil {
		return err
	}
	cells := make([]any, len(vals))
	for i, v := range vals {
		switch v.(type) {
		case nil, string, bool, int, int32, int64, uint32, uint64, float64, time.Time:
			cells[i] = v
		default:
			cells[i] = formatValue(v)
		}
	}
	return x.next(cells)
}

func (x *XLSX) next(cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, x.line)
	if err != nil {
		return err
	}
	if err := x.sw.SetRow(cell, cells); err != nil {
		return err
	}
	x.line++
	return nil
}

// Close flushes the sheet and writes the workbook.
func (x *XLSX) Close() error {
	defer x.file.Close()
	if err := x.sw.Flush(); err != nil {
		return err
	}
	return x.file.Write(x.out)
}
