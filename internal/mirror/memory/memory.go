// Package memory is an in-process mirror store backed by a grid of cells.
package memory

import (
	"context"
	"sync"

	"ledger/internal/mirror"
)

var _ mirror.Store = (*Store)(nil)

// Store keeps a sheet-like grid in memory.
type Store struct {
	mu   sync.Mutex
	rows [][]any
}

// New copies rows into a new Store.
func New(rows [][]any) *Store {
	s := &Store{rows: make([][]any, len(rows))}
	for i, row := range rows {
		s.rows[i] = append([]any(nil), row...)
	}
	return s
}

// Get returns the value below label.
func (s *Store) Get(_ context.Context, label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, err := mirror.Locate(s.rows, label)
	if err != nil {
		return "", err
	}
	return mirror.ValueAt(s.rows, cell.Below())
}

// Set writes value below label, growing the grid as needed.
func (s *Store) Set(_ context.Context, label, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, err := mirror.Locate(s.rows, label)
	if err != nil {
		return err
	}
	target := cell.Below()
	for len(s.rows) <= target.Row {
		s.rows = append(s.rows, nil)
	}
	for len(s.rows[target.Row]) <= target.Col {
		s.rows[target.Row] = append(s.rows[target.Row], nil)
	}
	s.rows[target.Row][target.Col] = value
	return nil
}

// Rows returns a copy of the grid.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}
