package table

import (
	"context"
	"sync"
)

// Memory is an in-process Backend. It is used by tests and by the day
// simulator.
type Memory struct {
	mu     sync.Mutex
	name   string
	table  *Table
	writes int

	// FailRead and FailWrite are returned by every call while set.
	FailRead  error
	FailWrite error
}

// NewMemory returns a Memory backend holding a copy of t. A nil t behaves
// like a table that has never been written.
func NewMemory(name string, t *Table) *Memory {
	return &Memory{name: name, table: t.Clone()}
}

func (m *Memory) Read(ctx context.Context) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRead != nil {
		return nil, m.FailRead
	}
	if m.table == nil {
		return nil, ErrNotExist
	}
	return m.table.Clone(), nil
}

func (m *Memory) Write(ctx context.Context, t *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrite != nil {
		return m.FailWrite
	}
	m.table = t.Clone()
	m.writes++
	return nil
}

func (m *Memory) Location() string { return "memory:" + m.name }

// Writes returns how many successful writes the backend has seen.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Snapshot returns a copy of the stored table, or nil.
func (m *Memory) Snapshot() *Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Clone()
}
