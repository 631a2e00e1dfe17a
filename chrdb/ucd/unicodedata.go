package ucd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"
)

// Field positions in UnicodeData.txt.
// https://www.unicode.org/reports/tr44/#UnicodeData.txt
const (
	fieldCodepoint = iota
	fieldName
	fieldCategory
	fieldCombiningClass
	fieldBidiClass
	fieldDecomposition
	fieldDecimalValue
	fieldDigitValue
	fieldNumericValue
	fieldBidiMirrored
	fieldUnicode1Name
	fieldISOComment
	fieldUppercase
	fieldLowercase
	fieldTitlecase

	unicodeDataFields
)

const (
	rangeFirstSuffix = "First>"
	rangeLastSuffix  = "Last>"
)

// ParseUnicodeDataFile opens path and parses it with ParseUnicodeData.
func ParseUnicodeDataFile(path string) (*RecordMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WithStage(common.StageParse, path, fmt.Errorf("failed to open: %w", err))
	}
	defer f.Close()

	records, err := ParseUnicodeData(f)
	if err != nil {
		return nil, common.WithStage(common.StageParse, path, err)
	}
	return records, nil
}

// ParseUnicodeData parses the UnicodeData.txt format into a record map. A row
// whose name ends in "First>" must be followed by its "Last>" row; together
// they produce one record per code point of the inclusive range.
func ParseUnicodeData(r io.Reader) (*RecordMap, error) {
	records := NewRecordMap()
	rows := newRowIterator(r, common.StageParse, 0)

	for {
		current, ok := rows.Next()
		if !ok {
			break
		}
		rec, err := decodeUnicodeDataRow(current)
		if err != nil {
			return nil, err
		}

		if !strings.HasSuffix(current.fields[fieldName], rangeFirstSuffix) {
			records.Insert(rec)
			continue
		}

		last, err := rangeEnd(rows, current)
		if err != nil {
			return nil, err
		}
		rec.Name = rangeLabel(rec.Name)
		for cp := rec.Codepoint; ; cp++ {
			expanded := rec
			expanded.Codepoint = cp
			records.Insert(expanded)
			if cp == last {
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// rangeEnd consumes the Last> row that must follow first and returns its code
// point.
func rangeEnd(rows *rowIterator, first row) (uint32, error) {
	next, ok := rows.Peek()
	if !ok {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, malformedAt(common.StageParse, first.line, "range start %q has no Last> row", first.fields[fieldName])
	}
	if len(next.fields) != unicodeDataFields || !strings.HasSuffix(next.fields[fieldName], rangeLastSuffix) {
		return 0, malformedAt(common.StageParse, next.line, "expected Last> row after %q", first.fields[fieldName])
	}
	rows.Next()

	lo, err := ParseCodepoint(first.fields[fieldCodepoint])
	if err != nil {
		return 0, malformedAt(common.StageParse, first.line, "%v", err)
	}
	hi, err := ParseCodepoint(next.fields[fieldCodepoint])
	if err != nil {
		return 0, malformedAt(common.StageParse, next.line, "%v", err)
	}
	if hi < lo {
		return 0, malformedAt(common.StageParse, next.line, "range end %04X before start %04X", hi, lo)
	}
	return hi, nil
}

// decodeUnicodeDataRow decodes every field of one row.
func decodeUnicodeDataRow(rw row) (CharRecord, error) {
	f := rw.fields
	if len(f) != unicodeDataFields {
		return CharRecord{}, malformedAt(common.StageParse, rw.line, "expected %d fields, got %d", unicodeDataFields, len(f))
	}
	fail := func(err error) (CharRecord, error) {
		return CharRecord{}, malformedAt(common.StageParse, rw.line, "%v", err)
	}

	cp, err := ParseCodepoint(f[fieldCodepoint])
	if err != nil {
		return fail(err)
	}
	category, err := ParseCategory(f[fieldCategory])
	if err != nil {
		return fail(err)
	}
	ccc, err := strconv.ParseUint(f[fieldCombiningClass], 10, 32)
	if err != nil {
		return fail(fmt.Errorf("invalid canonical combining class %q", f[fieldCombiningClass]))
	}
	bidi, err := ParseBidiClass(f[fieldBidiClass])
	if err != nil {
		return fail(err)
	}
	decompType, decompMapping, err := parseDecomposition(f[fieldDecomposition])
	if err != nil {
		return fail(err)
	}
	numType, numValue, err := parseNumeric(f[fieldDecimalValue], f[fieldDigitValue], f[fieldNumericValue])
	if err != nil {
		return fail(err)
	}
	upper, err := parseCaseMapping(f[fieldUppercase])
	if err != nil {
		return fail(fmt.Errorf("uppercase mapping: %w", err))
	}
	lower, err := parseCaseMapping(f[fieldLowercase])
	if err != nil {
		return fail(fmt.Errorf("lowercase mapping: %w", err))
	}
	title, err := parseCaseMapping(f[fieldTitlecase])
	if err != nil {
		return fail(fmt.Errorf("titlecase mapping: %w", err))
	}

	return CharRecord{
		Codepoint:               cp,
		Name:                    f[fieldName],
		Category:                category,
		CanonicalCombiningClass: uint32(ccc),
		BidiClass:               bidi,
		BidiMirrored:            parseBidiMirrored(f[fieldBidiMirrored]),
		DecompositionType:       decompType,
		DecompositionMapping:    decompMapping,
		NumericType:             numType,
		NumericValue:            numValue,
		LowercaseMapping:        lower,
		UppercaseMapping:        upper,
		TitlecaseMapping:        title,
	}, nil
}
