package ucd

import (
	roaring "github.com/RoaringBitmap/roaring"
)

// MaxCodepoint is the largest valid Unicode code point.
const MaxCodepoint = 0x10FFFF

// NumericType classifies the numeric value of a character.
type NumericType string

const (
	NumericDecimal NumericType = "decimal"
	NumericDigit   NumericType = "digit"
	NumericNumeric NumericType = "numeric"
)

// CanonicalDecomposition is the decomposition type of an untagged mapping.
const CanonicalDecomposition = "canonical"

// CharRecord holds every stored property of one code point.
//
// Pointer fields are optional values (NULL in the store). Records expanded from
// one First>/Last> range share these pointers, so they are never mutated in
// place; annotators only assign fresh values.
type CharRecord struct {
	Codepoint               uint32
	Name                    string
	Category                Category
	Block                   string
	Age                     string
	CanonicalCombiningClass uint32
	BidiClass               BidiClass
	BidiMirrored            bool
	DecompositionType       *string
	DecompositionMapping    *string
	NumericType             *NumericType
	NumericValue            *string
	LowercaseMapping        *uint32
	UppercaseMapping        *uint32
	TitlecaseMapping        *uint32
	HTMLEntity              *string
}

// RecordMap owns the records of one build, keyed by code point. The key set is
// kept in a roaring bitmap so that iteration is always in ascending order.
type RecordMap struct {
	records map[uint32]*CharRecord
	keys    *roaring.Bitmap
}

// NewRecordMap returns an empty map.
func NewRecordMap() *RecordMap {
	return &RecordMap{
		records: make(map[uint32]*CharRecord),
		keys:    roaring.New(),
	}
}

// Insert stores rec under rec.Codepoint, replacing any previous record.
func (m *RecordMap) Insert(rec CharRecord) {
	r := rec
	m.records[rec.Codepoint] = &r
	m.keys.Add(rec.Codepoint)
}

// Get returns the record for cp.
func (m *RecordMap) Get(cp uint32) (*CharRecord, bool) {
	rec, ok := m.records[cp]
	return rec, ok
}

// Contains reports whether cp has a record.
func (m *RecordMap) Contains(cp uint32) bool {
	return m.keys.Contains(cp)
}

// Len returns the number of records.
func (m *RecordMap) Len() int {
	return int(m.keys.GetCardinality())
}

// Codepoints returns all keys in ascending order.
func (m *RecordMap) Codepoints() []uint32 {
	return m.keys.ToArray()
}

// Present returns the code points of r that have a record.
func (m *RecordMap) Present(r CodepointRange) *roaring.Bitmap {
	return roaring.And(m.keys, r.Bitmap())
}

// Each calls fn for every record in ascending code point order and stops at the
// first error.
func (m *RecordMap) Each(fn func(*CharRecord) error) error {
	it := m.keys.Iterator()
	for it.HasNext() {
		if err := fn(m.records[it.Next()]); err != nil {
			return err
		}
	}
	return nil
}
