package sheets

import (
	"fmt"
	"sync"
)

// Memory is an in-memory RowStore used in tests and as a scratch table.
type Memory struct {
	mu   sync.Mutex
	rows [][]string
}

// NewMemory creates a Memory store seeded with the given header row.
func NewMemory(headers []string) *Memory {
	return &Memory{rows: [][]string{headers}}
}

func (m *Memory) Headers() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) == 0 {
		return nil, nil
	}
	return m.rows[0], nil
}

func (m *Memory) columnIndex(column string) (int, error) {
	if len(m.rows) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	for i, name := range m.rows[0] {
		if name == column {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

func (m *Memory) FindRowByColumn(column, value string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, err := m.columnIndex(column)
	if err != nil {
		return 0, err
	}

	for i := 1; i < len(m.rows); i++ {
		row := m.rows[i]
		if col < len(row) && row[col] == value {
			return i + 1, nil
		}
	}

	return 0, ErrRowNotFound
}

func (m *Memory) RowValues(row int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row < 1 || row > len(m.rows) {
		return nil, ErrRowNotFound
	}
	return m.rows[row-1], nil
}

func (m *Memory) Cell(row int, column string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, err := m.columnIndex(column)
	if err != nil {
		return "", err
	}
	if row < 1 || row > len(m.rows) {
		return "", ErrRowNotFound
	}
	values := m.rows[row-1]
	if col >= len(values) {
		return "", nil
	}
	return values[col], nil
}

func (m *Memory) UpdateCell(row int, column, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, err := m.columnIndex(column)
	if err != nil {
		return err
	}
	if row < 1 || row > len(m.rows) {
		return ErrRowNotFound
	}

	values := m.rows[row-1]
	for col >= len(values) {
		values = append(values, "")
	}
	values[col] = value
	m.rows[row-1] = values
	return nil
}

func (m *Memory) AppendRow(values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]string, len(values))
	copy(copied, values)
	m.rows = append(m.rows, copied)
	return nil
}

func (m *Memory) RowCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}
