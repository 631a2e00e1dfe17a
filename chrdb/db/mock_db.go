package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"
	"github.com/ZanzyTHEbar/chrdb/chrdb/ucd"
)

// MockCharacterStore is an in-memory mock for CharacterStore
type MockCharacterStore struct {
	mu      sync.Mutex
	rows    map[uint32]ucd.CharRecord
	schema  bool
	closed  bool
	Writes  int   // WriteRecords calls that inserted rows
	FailOn  int64 // codepoint whose insert fails; -1 disables
	FailErr error
}

func NewMockCharacterStore() *MockCharacterStore {
	return &MockCharacterStore{
		rows:   make(map[uint32]ucd.CharRecord),
		FailOn: -1,
	}
}

func (m *MockCharacterStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockCharacterStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockCharacterStore) InitSchema() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schema = true
	return nil
}

func (m *MockCharacterStore) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.schema {
		return 0, fmt.Errorf("%w: no such table: %s", common.ErrStore, TableName)
	}
	return len(m.rows), nil
}

func (m *MockCharacterStore) WriteRecords(ctx context.Context, records *ucd.RecordMap) (int, error) {
	if err := m.InitSchema(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) > 0 {
		return 0, nil
	}

	// Stage into a copy so that a failed write leaves the mock empty, like a
	// rolled back transaction.
	staged := make(map[uint32]ucd.CharRecord, records.Len())
	err := records.Each(func(rec *ucd.CharRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if int64(rec.Codepoint) == m.FailOn {
			failErr := m.FailErr
			if failErr == nil {
				failErr = fmt.Errorf("%w: failed to insert U+%04X", common.ErrStore, rec.Codepoint)
			}
			return failErr
		}
		staged[rec.Codepoint] = *rec
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.rows = staged
	m.Writes++
	return len(staged), nil
}

func (m *MockCharacterStore) LookupCodepoints(ctx context.Context, codepoints []uint32) ([]ucd.CharRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[uint32]bool, len(codepoints))
	var out []ucd.CharRecord
	for _, cp := range codepoints {
		rec, ok := m.rows[cp]
		if !ok || seen[cp] {
			continue
		}
		seen[cp] = true
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (m *MockCharacterStore) SearchName(ctx context.Context, fragment string) ([]ucd.CharRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToUpper(fragment)
	var out []ucd.CharRecord
	for _, rec := range m.rows {
		if strings.Contains(strings.ToUpper(rec.Name), needle) {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(recs []ucd.CharRecord) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Codepoint < recs[j].Codepoint })
}
