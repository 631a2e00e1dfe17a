package ucd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlocks = `# Blocks-13.0.0.txt
# Date: 2019-07-10, 19:06:00 GMT [KW]
#
# Format:
# Start Code..End Code; Block Name

0000..007F; Basic Latin
0080..00FF; Latin-1 Supplement
0100..017F; Latin Extended-A
0300..036F; Combining Diacritical Marks
E000..F8FF; Private Use Area
10FFF0..10FFFF; Nowhere In Particular

# EOF
`

const sampleAges = `# DerivedAge-13.0.0.txt
# Age=V1_1

0000..001F    ; 1.1 #  [32] <control-0000>..<control-001F>
0020..007E    ; 1.1 #  [95] SPACE..TILDE
00A0..00AC    ; 1.1 #  [13] NO-BREAK SPACE..NOT SIGN
00AE..01F5    ; 1.1 # [328] REGISTERED SIGN..LATIN SMALL LETTER G WITH ACUTE
0300..0345    ; 1.1 #  [70] COMBINING GRAVE ACCENT..COMBINING GREEK YPOGEGRAMMENI
E000..F8FF    ; 1.1 # [6400] <private-use-E000>..<private-use-F8FF>

# Total code points: 33979
`

func TestAnnotateBlocks(t *testing.T) {
	records := parseSample(t, sampleUnicodeData)

	stats, err := AnnotateBlocks(strings.NewReader(sampleBlocks), records)
	require.NoError(t, err)

	for _, cp := range []uint32{0x21, 0x28, 0x31, 0x41, 0x61} {
		rec, _ := records.Get(cp)
		assert.Equal(t, "Basic Latin", rec.Block, "U+%04X", cp)
	}
	for _, cp := range []uint32{0xB2, 0xBD, 0xC4} {
		rec, _ := records.Get(cp)
		assert.Equal(t, "Latin-1 Supplement", rec.Block, "U+%04X", cp)
	}
	acute, _ := records.Get(0x0301)
	assert.Equal(t, "Combining Diacritical Marks", acute.Block)

	// 01C5 lies in Latin Extended-B, which is not in the sample.
	dz, _ := records.Get(0x01C5)
	assert.Empty(t, dz.Block)

	for cp := uint32(0xE000); cp <= 0xE004; cp++ {
		rec, _ := records.Get(cp)
		assert.Equal(t, "Private Use Area", rec.Block)
	}

	// Ranges without records add nothing to the map.
	assert.Equal(t, 15, records.Len())
	assert.False(t, records.Contains(0x7F))
	assert.False(t, records.Contains(0x10FFFF))

	assert.Equal(t, 6, stats.Rows)
	assert.Equal(t, 5+3+1+5, stats.Matched)
}

func TestAnnotateBlocksBasicLatinOnly(t *testing.T) {
	records := parseSample(t, sampleUnicodeData)

	_, err := AnnotateBlocks(strings.NewReader("0000..007F;Basic Latin\n"), records)
	require.NoError(t, err)

	require.NoError(t, records.Each(func(rec *CharRecord) error {
		if rec.Codepoint <= 127 {
			assert.Equal(t, "Basic Latin", rec.Block, "U+%04X", rec.Codepoint)
		} else {
			assert.Empty(t, rec.Block, "U+%04X", rec.Codepoint)
		}
		return nil
	}))
}

func TestAnnotateBlocksLastRowWins(t *testing.T) {
	records := parseSample(t, sampleUnicodeData)

	_, err := AnnotateBlocks(strings.NewReader("0000..007F; Basic Latin\n0041; Letter A\n"), records)
	require.NoError(t, err)

	a, _ := records.Get(0x41)
	assert.Equal(t, "Letter A", a.Block)
	b, _ := records.Get(0x61)
	assert.Equal(t, "Basic Latin", b.Block)
}

func TestAnnotateBlocksIgnoresMalformedRows(t *testing.T) {
	records := parseSample(t, sampleUnicodeData)

	input := strings.Join([]string{
		"0000..007F; Basic Latin; extra",
		"just some text",
		"  # indented comment; with a separator",
		"0041; Only A",
		"",
	}, "\n")
	stats, err := AnnotateBlocks(strings.NewReader(input), records)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Rows)
	assert.Equal(t, 3, stats.Skipped)

	a, _ := records.Get(0x41)
	assert.Equal(t, "Only A", a.Block)
	bang, _ := records.Get(0x21)
	assert.Empty(t, bang.Block)
}

func TestAnnotateBlocksBadRange(t *testing.T) {
	records := parseSample(t, sampleUnicodeData)

	_, err := AnnotateBlocks(strings.NewReader("0000..007F; Basic Latin\n00G0..00FF; Broken\n"), records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMalformedRecord))

	var se *common.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, common.StageBlocks, se.Stage)
	assert.Equal(t, 2, se.Line)
}

func TestAnnotateAges(t *testing.T) {
	records := parseSample(t, sampleUnicodeData)

	stats, err := AnnotateAges(strings.NewReader(sampleAges), records)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Rows)

	bang, _ := records.Get(0x21)
	assert.Equal(t, "1.1", bang.Age)
	acute, _ := records.Get(0x0301)
	assert.Equal(t, "1.1", acute.Age)
	pua, _ := records.Get(0xE003)
	assert.Equal(t, "1.1", pua.Age)

	// 01C5 falls inside 00AE..01F5.
	dz, _ := records.Get(0x01C5)
	assert.Equal(t, "1.1", dz.Age)
}

func TestAnnotateAgesStripsComment(t *testing.T) {
	records := parseSample(t, sampleUnicodeData)

	_, err := AnnotateAges(strings.NewReader("0041          ; 13.0 # LATIN CAPITAL LETTER A\n0061;2.0\n"), records)
	require.NoError(t, err)

	a, _ := records.Get(0x41)
	assert.Equal(t, "13.0", a.Age)
	lower, _ := records.Get(0x61)
	assert.Equal(t, "2.0", lower.Age)
	bang, _ := records.Get(0x21)
	assert.Empty(t, bang.Age)
}

func TestAnnotateFiles(t *testing.T) {
	dir := t.TempDir()
	blocks := filepath.Join(dir, "Blocks.txt")
	ages := filepath.Join(dir, "DerivedAge.txt")
	require.NoError(t, os.WriteFile(blocks, []byte(sampleBlocks), 0o644))
	require.NoError(t, os.WriteFile(ages, []byte(sampleAges), 0o644))

	records := parseSample(t, sampleUnicodeData)

	_, err := AnnotateBlocksFile(blocks, records)
	require.NoError(t, err)
	_, err = AnnotateAgesFile(ages, records)
	require.NoError(t, err)

	rec, _ := records.Get(0xC4)
	assert.Equal(t, "Latin-1 Supplement", rec.Block)
	assert.Equal(t, "1.1", rec.Age)

	_, err = AnnotateBlocksFile(filepath.Join(dir, "missing.txt"), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocks: ")
	assert.Contains(t, err.Error(), "missing.txt")
}
