package sheets

import (
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Workbook is a RowStore backed by an xlsx file. Every mutation is saved
// back to disk immediately; a save failure is logged and the in-memory
// state stays authoritative until the next successful save.
type Workbook struct {
	mu     sync.Mutex
	path   string
	sheet  string
	file   *excelize.File
	logger *zap.Logger
}

// OpenWorkbook opens the workbook at path, creating it with the given
// header row when the file does not exist yet. A nil headers slice
// falls back to the candidate headers.
func OpenWorkbook(path, sheet string, headers []string, logger *zap.Logger) (*Workbook, error) {
	if sheet == "" {
		sheet = "Demo"
	}
	if headers == nil {
		headers = CandidateHeaders()
	}

	wb := &Workbook{path: path, sheet: sheet, logger: logger}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		wb.file = excelize.NewFile()
		if err := wb.file.SetSheetName("Sheet1", sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
		if err := wb.writeHeader(headers); err != nil {
			return nil, err
		}
		if err := wb.file.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		return wb, nil
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	wb.file = file

	existing, err := wb.Headers()
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		if err := wb.writeHeader(headers); err != nil {
			return nil, err
		}
		wb.save()
	}

	return wb, nil
}

func (w *Workbook) writeHeader(headers []string) error {
	for i, name := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, name); err != nil {
			return fmt.Errorf("write header cell %s: %w", cell, err)
		}
	}
	return nil
}

func (w *Workbook) Headers() ([]string, error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (w *Workbook) columnIndex(column string) (int, error) {
	headers, err := w.Headers()
	if err != nil {
		return 0, err
	}
	for i, name := range headers {
		if name == column {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

func (w *Workbook) FindRowByColumn(column, value string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	col, err := w.columnIndex(column)
	if err != nil {
		return 0, err
	}

	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if col-1 < len(row) && row[col-1] == value {
			return i + 1, nil
		}
	}

	return 0, ErrRowNotFound
}

func (w *Workbook) RowValues(row int) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if row < 1 || row > len(rows) {
		return nil, ErrRowNotFound
	}
	return rows[row-1], nil
}

func (w *Workbook) Cell(row int, column string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	col, err := w.columnIndex(column)
	if err != nil {
		return "", err
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}

	value, err := w.file.GetCellValue(w.sheet, cell)
	if err != nil {
		return "", fmt.Errorf("read cell %s: %w", cell, err)
	}
	return value, nil
}

func (w *Workbook) UpdateCell(row int, column, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	col, err := w.columnIndex(column)
	if err != nil {
		return err
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	if err := w.file.SetCellValue(w.sheet, cell, value); err != nil {
		return fmt.Errorf("write cell %s: %w", cell, err)
	}

	w.save()
	return nil
}

func (w *Workbook) AppendRow(values []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}

	target := len(rows) + 1
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, target)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, value); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
	}

	w.save()
	return nil
}

func (w *Workbook) RowCount() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}
	return len(rows), nil
}

// save persists the workbook; errors are logged only.
func (w *Workbook) save() {
	if err := w.file.SaveAs(w.path); err != nil {
		w.logger.Error("saving workbook", zap.String("path", w.path), zap.Error(err))
	}
}

func (w *Workbook) Close() error {
	return w.file.Close()
}
