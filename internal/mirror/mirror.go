// Package mirror pushes summary figures to an external, label-addressed
// store such as a spreadsheet. The value for a label lives in the cell
// directly below the cell whose text equals the label.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLabelNotFound is returned when no cell carries the label.
	ErrLabelNotFound = errors.New("label not found")
	// ErrNoValue is returned when the cell below the label is missing.
	ErrNoValue = errors.New("no value below label")
)

// Store reads and writes values addressed by label.
type Store interface {
	Get(ctx context.Context, label string) (string, error)
	Set(ctx context.Context, label, value string) error
}

// Cell is a zero-based grid position.
type Cell struct {
	Row int
	Col int
}

// Below returns the cell directly under c.
func (c Cell) Below() Cell {
	return Cell{Row: c.Row + 1, Col: c.Col}
}

// A1 renders the cell in A1 notation, optionally qualified with a sheet name.
func (c Cell) A1(sheet string) string {
	ref := fmt.Sprintf("%s%d", ColumnLetter(c.Col), c.Row+1)
	if sheet == "" {
		return ref
	}
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), ref)
}

// Locate scans rows top to bottom, left to right, and returns the first cell
// whose trimmed text equals the trimmed label.
func Locate(rows [][]any, label string) (Cell, error) {
	want := strings.TrimSpace(label)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			if strings.TrimSpace(fmt.Sprint(v)) == want {
				return Cell{Row: r, Col: c}, nil
			}
		}
	}
	return Cell{}, fmt.Errorf("%w: %q", ErrLabelNotFound, label)
}

// ValueAt returns the text at cell, or ErrNoValue if the grid is short.
func ValueAt(rows [][]any, cell Cell) (string, error) {
	if cell.Row >= len(rows) || cell.Col >= len(rows[cell.Row]) || rows[cell.Row][cell.Col] == nil {
		return "", ErrNoValue
	}
	return fmt.Sprint(rows[cell.Row][cell.Col]), nil
}

// ColumnLetter converts a zero-based column index to spreadsheet letters
// (0 -> A, 25 -> Z, 26 -> AA).
func ColumnLetter(col int) string {
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}
