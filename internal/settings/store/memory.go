// Package store holds the settings.Store implementations: in-memory, YAML file and SQLite.
package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

// Memory keeps records in process. Retrieve returns copies, so callers never share slices with it.
type Memory struct {
	mu   sync.Mutex
	data map[string][]settings.Record
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]settings.Record{}}
}

func (m *Memory) Store(key string, records []settings.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = cloneRecords(records)
	return nil
}

func (m *Memory) Retrieve(key string) ([]settings.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", settings.ErrNoData, key)
	}
	return cloneRecords(recs), nil
}

func cloneRecords(in []settings.Record) []settings.Record {
	out := make([]settings.Record, len(in))
	for i, r := range in {
		r.Options = slices.Clone(r.Options)
		out[i] = r
	}
	return out
}
