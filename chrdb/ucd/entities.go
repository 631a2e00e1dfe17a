package ucd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"

	"github.com/armon/go-radix"
	"github.com/buger/jsonparser"
)

// EntityStats summarizes an entity annotation pass.
type EntityStats struct {
	Entities      int // entries in the file
	SingleCodes   int // entries naming exactly one code point
	Matched       int // entries applied to an existing record
	MultiCodeDrop int // composed entries dropped
}

// EntityIndex maps entity names to their single code point. Names are kept in
// a radix tree so they can be walked in ascending byte order.
type EntityIndex struct {
	tree *radix.Tree
}

// ParseEntities reads the WHATWG entities.json object: each member is
// "name": {"codepoints": [..], ...}. Entries whose codepoints array does not
// hold exactly one element are dropped.
func ParseEntities(data []byte) (*EntityIndex, EntityStats, error) {
	var stats EntityStats
	tree := radix.New()

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		if dataType != jsonparser.Object {
			return common.Malformed("entity %q is not an object", name)
		}

		codepoints, err := entityCodepoints(value)
		if err != nil {
			return common.Malformed("entity %q: %v", name, err)
		}

		stats.Entities++
		if len(codepoints) != 1 {
			stats.MultiCodeDrop++
			return nil
		}
		stats.SingleCodes++
		tree.Insert(name, codepoints[0])
		return nil
	})
	if err != nil {
		return nil, stats, &common.StageError{Stage: common.StageEntities, Err: asMalformed(err)}
	}
	return &EntityIndex{tree: tree}, stats, nil
}

func entityCodepoints(value []byte) ([]uint32, error) {
	var (
		codepoints []uint32
		itemErr    error
	)
	_, err := jsonparser.ArrayEach(value, func(v []byte, dataType jsonparser.ValueType, _ int, err error) {
		if itemErr != nil {
			return
		}
		if err != nil {
			itemErr = err
			return
		}
		if dataType != jsonparser.Number {
			itemErr = fmt.Errorf("codepoint %q is not a number", v)
			return
		}
		n, err := jsonparser.ParseInt(v)
		if err != nil || n < 0 || n > MaxCodepoint {
			itemErr = fmt.Errorf("invalid codepoint %q", v)
			return
		}
		codepoints = append(codepoints, uint32(n))
	}, "codepoints")
	if err != nil {
		return nil, fmt.Errorf("codepoints: %w", err)
	}
	if itemErr != nil {
		return nil, itemErr
	}
	return codepoints, nil
}

// Len returns the number of single code point entities.
func (idx *EntityIndex) Len() int {
	return idx.tree.Len()
}

// Lookup returns the code point of name.
func (idx *EntityIndex) Lookup(name string) (uint32, bool) {
	v, ok := idx.tree.Get(name)
	if !ok {
		return 0, false
	}
	return v.(uint32), true
}

// Walk visits entities in ascending name order until fn returns false.
func (idx *EntityIndex) Walk(fn func(name string, cp uint32) bool) {
	idx.tree.Walk(func(name string, v interface{}) bool {
		return !fn(name, v.(uint32))
	})
}

// Apply sets HTMLEntity on every record named by the index. Entities are applied
// in ascending name order, so when several names share a code point the
// greatest name is kept.
func (idx *EntityIndex) Apply(records *RecordMap) int {
	matched := 0
	idx.Walk(func(name string, cp uint32) bool {
		rec, ok := records.Get(cp)
		if !ok {
			return true
		}
		entity := name
		rec.HTMLEntity = &entity
		matched++
		return true
	})
	return matched
}

// AnnotateEntities parses the entity mapping in r and applies it to records.
func AnnotateEntities(r io.Reader, records *RecordMap) (EntityStats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return EntityStats{}, &common.StageError{Stage: common.StageEntities, Err: fmt.Errorf("failed to read: %w", err)}
	}
	idx, stats, err := ParseEntities(data)
	if err != nil {
		return stats, err
	}
	stats.Matched = idx.Apply(records)
	return stats, nil
}

// AnnotateEntitiesFile opens path and applies AnnotateEntities.
func AnnotateEntitiesFile(path string, records *RecordMap) (EntityStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return EntityStats{}, common.WithStage(common.StageEntities, path, fmt.Errorf("failed to open: %w", err))
	}
	defer f.Close()

	stats, err := AnnotateEntities(f, records)
	return stats, common.WithStage(common.StageEntities, path, err)
}

// asMalformed makes sure a decoding failure is classified as a malformed record;
// jsonparser's own errors do not wrap it.
func asMalformed(err error) error {
	if errors.Is(err, common.ErrMalformedRecord) {
		return err
	}
	return common.Malformed("%v", err)
}
