package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func Write(w io.Writer, f Format, t Table) error {
	if f == FormatXLSX {
		return WriteXLSX(w, t)
	}
	return WriteCSV(w, t)
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	if err := cw.Write(t.Totals); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Invoices"

func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := setRow(f, 1, t.Header, false); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, i+2, row, true); err != nil {
			return err
		}
	}
	totalsRow := len(t.Rows) + 2
	if err := setRow(f, totalsRow, t.Totals, true); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Header))
	if err != nil {
		return err
	}
	for _, r := range []int{1, totalsRow} {
		if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", lastCol, r), bold); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 16); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, row int, cells []string, typed bool) error {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
		if !typed || !numeric[i] || c == "" {
			continue
		}
		if n, err := strconv.ParseFloat(c, 64); err == nil {
			values[i] = n
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
