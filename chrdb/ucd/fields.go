package ucd

import (
	"fmt"
	"strconv"
	"strings"
)

// parseBidiMirrored maps exactly "Y" to true.
func parseBidiMirrored(s string) bool {
	return s == "Y"
}

// parseDecomposition splits field 5 into its type and mapping. An empty field
// has neither. A leading <tag> names the type; otherwise the mapping is
// canonical. Mapping code points are re-encoded as space-joined decimals.
func parseDecomposition(s string) (*string, *string, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil, nil, nil
	}

	decompType := CanonicalDecomposition
	mapping := tokens
	if first := tokens[0]; len(first) >= 2 && strings.HasPrefix(first, "<") && strings.HasSuffix(first, ">") {
		decompType = first[1 : len(first)-1]
		mapping = tokens[1:]
	}

	decimals := make([]string, 0, len(mapping))
	for _, tok := range mapping {
		cp, err := ParseCodepoint(tok)
		if err != nil {
			return nil, nil, fmt.Errorf("decomposition mapping: %w", err)
		}
		decimals = append(decimals, strconv.FormatUint(uint64(cp), 10))
	}
	joined := strings.Join(decimals, " ")
	return &decompType, &joined, nil
}

// parseNumeric classifies fields 6, 7 and 8 (decimal digit value, digit value,
// numeric value). The branches are evaluated in this order:
//
//	all three present           -> decimal, field 6
//	6 absent, 7 and 8 present   -> digit,   field 7
//	only 8 present              -> numeric, field 8 verbatim
//	anything else               -> absent
func parseNumeric(decimal, digit, numeric string) (*NumericType, *string, error) {
	if decimal != "" {
		if _, err := strconv.ParseUint(decimal, 10, 32); err != nil {
			return nil, nil, fmt.Errorf("invalid decimal digit value %q", decimal)
		}
	}
	if digit != "" {
		if _, err := strconv.ParseUint(digit, 10, 32); err != nil {
			return nil, nil, fmt.Errorf("invalid digit value %q", digit)
		}
	}

	var (
		kind  NumericType
		value string
	)
	switch {
	case decimal != "" && digit != "" && numeric != "":
		kind, value = NumericDecimal, canonicalUint(decimal)
	case decimal == "" && digit != "" && numeric != "":
		kind, value = NumericDigit, canonicalUint(digit)
	case decimal == "" && digit == "" && numeric != "":
		kind, value = NumericNumeric, numeric
	default:
		return nil, nil, nil
	}
	return &kind, &value, nil
}

// canonicalUint renders an already validated unsigned integer without leading
// zeros.
func canonicalUint(s string) string {
	v, _ := strconv.ParseUint(s, 10, 32)
	return strconv.FormatUint(v, 10)
}

// parseCaseMapping decodes an optional hex case mapping.
func parseCaseMapping(s string) (*uint32, error) {
	if s == "" {
		return nil, nil
	}
	cp, err := ParseCodepoint(s)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// rangeLabel extracts the shared name of a First>/Last> pair:
// "<CJK Ideograph Extension A, First>" becomes "CJK Ideograph Extension A".
func rangeLabel(name string) string {
	label, _, _ := strings.Cut(name, ",")
	return strings.Trim(strings.TrimSpace(label), "<>")
}
