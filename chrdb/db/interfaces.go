package db

import (
	"context"

	"github.com/ZanzyTHEbar/chrdb/chrdb/ucd"
)

// CharacterStore is the interface for the per-codepoint store
type CharacterStore interface {
	Close() error
	InitSchema() error
	Count() (int, error)
	// WriteRecords populates an empty store and is a no-op on a populated one.
	WriteRecords(ctx context.Context, records *ucd.RecordMap) (int, error)
	// Consumer queries
	LookupCodepoints(ctx context.Context, codepoints []uint32) ([]ucd.CharRecord, error)
	SearchName(ctx context.Context, fragment string) ([]ucd.CharRecord, error)
}

var (
	_ CharacterStore = (*Store)(nil)
	_ CharacterStore = (*MockCharacterStore)(nil)
)
