package ucd

import (
	"fmt"
	"strconv"
	"strings"

	roaring "github.com/RoaringBitmap/roaring"
)

// CodepointRange is an inclusive interval of code points.
type CodepointRange struct {
	First uint32
	Last  uint32
}

// Len returns the number of code points in the range.
func (r CodepointRange) Len() int {
	return int(r.Last-r.First) + 1
}

// Contains reports whether cp lies in the range.
func (r CodepointRange) Contains(cp uint32) bool {
	return cp >= r.First && cp <= r.Last
}

// Bitmap returns the range as a code point set.
func (r CodepointRange) Bitmap() *roaring.Bitmap {
	bm := roaring.New()
	bm.AddRange(uint64(r.First), uint64(r.Last)+1)
	return bm
}

func (r CodepointRange) String() string {
	if r.First == r.Last {
		return fmt.Sprintf("%04X", r.First)
	}
	return fmt.Sprintf("%04X..%04X", r.First, r.Last)
}

// ParseCodepointRange parses either a single hex code point ("0041") or two
// joined by ".." ("0041..005A").
func ParseCodepointRange(s string) (CodepointRange, error) {
	s = strings.TrimSpace(s)
	first, last, isRange := strings.Cut(s, "..")
	lo, err := ParseCodepoint(first)
	if err != nil {
		return CodepointRange{}, err
	}
	if !isRange {
		return CodepointRange{First: lo, Last: lo}, nil
	}
	hi, err := ParseCodepoint(last)
	if err != nil {
		return CodepointRange{}, err
	}
	if hi < lo {
		return CodepointRange{}, fmt.Errorf("inverted code point range %q", s)
	}
	return CodepointRange{First: lo, Last: hi}, nil
}

// ParseCodepoint decodes a hex code point and checks it is at most U+10FFFF.
func ParseCodepoint(s string) (uint32, error) {
	v, err := parseHex(s)
	if err != nil {
		return 0, err
	}
	if v > MaxCodepoint {
		return 0, fmt.Errorf("code point %q out of range", s)
	}
	return v, nil
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex value %q", s)
	}
	return uint32(v), nil
}
