package ucd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"
)

// AnnotationStats summarizes one annotator pass.
type AnnotationStats struct {
	Rows    int // range rows applied
	Skipped int // comment-like or malformed rows ignored
	Matched int // record writes
}

// rangeValue turns the second field of a range row into the value to store.
type rangeValue func(field string) string

// AnnotateBlocks sets Block on every record covered by a Blocks.txt range.
func AnnotateBlocks(r io.Reader, records *RecordMap) (AnnotationStats, error) {
	return annotateRanges(r, records, common.StageBlocks, strings.TrimSpace, func(rec *CharRecord, v string) {
		rec.Block = v
	})
}

// AnnotateAges sets Age on every record covered by a DerivedAge.txt range. A
// trailing "#" comment after the version is dropped.
func AnnotateAges(r io.Reader, records *RecordMap) (AnnotationStats, error) {
	return annotateRanges(r, records, common.StageAges, stripComment, func(rec *CharRecord, v string) {
		rec.Age = v
	})
}

// AnnotateBlocksFile opens path and applies AnnotateBlocks.
func AnnotateBlocksFile(path string, records *RecordMap) (AnnotationStats, error) {
	return annotateFile(path, common.StageBlocks, records, AnnotateBlocks)
}

// AnnotateAgesFile opens path and applies AnnotateAges.
func AnnotateAgesFile(path string, records *RecordMap) (AnnotationStats, error) {
	return annotateFile(path, common.StageAges, records, AnnotateAges)
}

func annotateFile(path, stage string, records *RecordMap, fn func(io.Reader, *RecordMap) (AnnotationStats, error)) (AnnotationStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return AnnotationStats{}, common.WithStage(stage, path, fmt.Errorf("failed to open: %w", err))
	}
	defer f.Close()

	stats, err := fn(f, records)
	return stats, common.WithStage(stage, path, err)
}

// annotateRanges applies "<range>;<value>" rows in file order, so a later row
// covering the same code point wins. Rows without exactly two fields and rows
// whose range field starts with "#" are ignored; code points without a record
// are skipped.
func annotateRanges(r io.Reader, records *RecordMap, stage string, value rangeValue, set func(*CharRecord, string)) (AnnotationStats, error) {
	var stats AnnotationStats
	rows := newRowIterator(r, stage, '#')

	for {
		rw, ok := rows.Next()
		if !ok {
			break
		}
		if len(rw.fields) != 2 {
			stats.Skipped++
			continue
		}
		rangeField := strings.TrimSpace(rw.fields[0])
		if strings.HasPrefix(rangeField, "#") {
			stats.Skipped++
			continue
		}

		cpRange, err := ParseCodepointRange(rangeField)
		if err != nil {
			return stats, malformedAt(stage, rw.line, "%v", err)
		}
		v := value(rw.fields[1])

		present := records.Present(cpRange)
		it := present.Iterator()
		for it.HasNext() {
			rec, _ := records.Get(it.Next())
			set(rec, v)
			stats.Matched++
		}
		stats.Rows++
	}
	return stats, rows.Err()
}

func stripComment(field string) string {
	value, _, _ := strings.Cut(field, "#")
	return strings.TrimSpace(value)
}
