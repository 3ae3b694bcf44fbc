package export

import (
	"context"
	"fmt"

	"github.com/pentol/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the only sheet of a spreadsheet export
const SheetName = "Laporan Panen"

// xlsxWriter streams rows into a single worksheet
type xlsxWriter struct {
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func newXLSXWriter() (*xlsxWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open stream writer: %w", err)
	}

	// widths must be set before the first row
	for i, col := range report.Columns {
		if err := sw.SetColWidth(i+1, i+1, col.Width); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(report.Columns))
	for i, col := range report.Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: col.Header}
	}
	if err := sw.SetRow("A1", header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return &xlsxWriter{file: f, stream: sw, row: 1}, nil
}

func (w *xlsxWriter) WriteRows(rows []report.ExportRow) error {
	for _, r := range rows {
		w.row++
		cell, err := excelize.CoordinatesToCellName(1, w.row)
		if err != nil {
			return err
		}
		if err := w.stream.SetRow(cell, spreadsheetCells(r)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", w.row, err)
		}
	}
	return nil
}

func (w *xlsxWriter) Finish(_ context.Context) ([]byte, error) {
	if err := w.stream.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *xlsxWriter) Close() error {
	return w.file.Close()
}

// spreadsheetCells keeps numbers numeric; decimals become float cells.
func spreadsheetCells(r report.ExportRow) []any {
	cells := r.Cells()
	for i, c := range cells {
		if d, ok := c.(decimal.Decimal); ok {
			cells[i] = d.InexactFloat64()
		}
	}
	return cells
}
