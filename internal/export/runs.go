package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/deepread-extract/internal/common"
	"github.com/joseph-ayodele/deepread-extract/internal/repository"
)

const runsSheet = "Runs"

var runsHeaders = []string{
	"File",
	"Language",
	"Process Type",
	"Status",
	"JSON Output",
	"Visualisation",
	"Error",
	"Duration (ms)",
}

// Row is one line of a runs report.
type Row struct {
	File        string
	Language    string
	ProcessType string
	Status      string
	JSONPath    string
	ImagePath   string
	Error       string
	Duration    time.Duration
}

// RowsFromRuns converts ledger rows for reporting.
func RowsFromRuns(runs []repository.Run) []Row {
	out := make([]Row, 0, len(runs))
	for _, r := range runs {
		out = append(out, Row{
			File:        r.SourcePath,
			Language:    string(r.Language),
			ProcessType: string(r.ProcessType),
			Status:      string(r.Status),
			JSONPath:    r.JSONPath,
			ImagePath:   r.ImagePath,
			Error:       r.ErrorMessage,
			Duration:    r.Duration(),
		})
	}
	return out
}

// RunsXLSX returns an XLSX workbook (as bytes) with one row per run.
func RunsXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), runsSheet); err != nil {
		return nil, err
	}

	for i, h := range runsHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(runsSheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(runsSheet, cell, v)
		}
		write(1, r.File)
		write(2, r.Language)
		write(3, r.ProcessType)
		write(4, r.Status)
		write(5, r.JSONPath)
		write(6, r.ImagePath)
		write(7, common.Truncate(r.Error, 500, "…"))
		write(8, r.Duration.Milliseconds())
	}

	_ = f.SetColWidth(runsSheet, "A", "A", 48) // file
	_ = f.SetColWidth(runsSheet, "B", "D", 12)
	_ = f.SetColWidth(runsSheet, "E", "F", 48) // outputs
	_ = f.SetColWidth(runsSheet, "G", "G", 60) // error
	_ = f.SetColWidth(runsSheet, "H", "H", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
