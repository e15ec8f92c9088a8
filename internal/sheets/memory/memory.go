// Package memory keeps exported statements in process, keyed by tab title.
package memory

import (
	"context"
	"fmt"
	"sync"

	"cardspend/internal/core"
	"cardspend/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	tabs    map[string][][]any
	exports int
}

var _ sheets.StatementExporter = (*Store)(nil)

func New() *Store {
	return &Store{tabs: make(map[string][][]any)}
}

// ExportStatement replaces the tab content and returns a synthetic reference.
func (s *Store) ExportStatement(_ context.Context, d core.StatementDetail) (string, error) {
	title := sheets.TabTitle(d)
	rows := sheets.Rows(d)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[title] = rows
	s.exports++
	return fmt.Sprintf("mem:%s:%d", title, len(rows)), nil
}

// Tab returns a copy of the rows stored under title.
func (s *Store) Tab(title string) ([][]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tabs[title]
	if !ok {
		return nil, false
	}
	return append([][]any(nil), rows...), true
}

// Exports counts every export call, including overwrites.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
