package ucd

import "fmt"

// Category is a two-letter General_Category code.
// https://www.unicode.org/reports/tr44/#General_Category_Values
type Category string

const (
	CategoryLu Category = "Lu"
	CategoryLl Category = "Ll"
	CategoryLt Category = "Lt"
	CategoryLm Category = "Lm"
	CategoryLo Category = "Lo"
	CategoryMn Category = "Mn"
	CategoryMc Category = "Mc"
	CategoryMe Category = "Me"
	CategoryNd Category = "Nd"
	CategoryNl Category = "Nl"
	CategoryNo Category = "No"
	CategoryPc Category = "Pc"
	CategoryPd Category = "Pd"
	CategoryPs Category = "Ps"
	CategoryPe Category = "Pe"
	CategoryPi Category = "Pi"
	CategoryPf Category = "Pf"
	CategoryPo Category = "Po"
	CategorySm Category = "Sm"
	CategorySc Category = "Sc"
	CategorySk Category = "Sk"
	CategorySo Category = "So"
	CategoryZs Category = "Zs"
	CategoryZl Category = "Zl"
	CategoryZp Category = "Zp"
	CategoryCc Category = "Cc"
	CategoryCf Category = "Cf"
	CategoryCs Category = "Cs"
	CategoryCo Category = "Co"
	CategoryCn Category = "Cn"
)

var categoryDescriptions = map[Category]string{
	CategoryLu: "Uppercase Letter",
	CategoryLl: "Lowercase Letter",
	CategoryLt: "Titlecase Letter",
	CategoryLm: "Modifier Letter",
	CategoryLo: "Other Letter",
	CategoryMn: "Non-spacing Mark",
	CategoryMc: "Spacing Mark",
	CategoryMe: "Enclosing Mark",
	CategoryNd: "Decimal Number",
	CategoryNl: "Letter Number",
	CategoryNo: "Other Number",
	CategoryPc: "Connector Punctuation",
	CategoryPd: "Dash Punctuation",
	CategoryPs: "Opening Punctuation",
	CategoryPe: "Closing Punctuation",
	CategoryPi: "Initial Quotation Mark",
	CategoryPf: "Final Quotation Mark",
	CategoryPo: "Other Punctuation",
	CategorySm: "Mathematical Symbol",
	CategorySc: "Currency Sign",
	CategorySk: "Non-letter Modifier Symbol",
	CategorySo: "Other Symbol",
	CategoryZs: "Space Separator",
	CategoryZl: "Line Separator",
	CategoryZp: "Paragraph Separator",
	CategoryCc: "Control Character",
	CategoryCf: "Format Control Character",
	CategoryCs: "Surrogate Code Point",
	CategoryCo: "Private-use Character",
	CategoryCn: "Reserved Unassigned Code Point",
}

// ParseCategory accepts exactly one of the 30 General_Category codes.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryDescriptions[c]; !ok {
		return "", fmt.Errorf("unknown general category %q", s)
	}
	return c, nil
}

// Description returns the long name of the category, or "" for an invalid code.
func (c Category) Description() string {
	return categoryDescriptions[c]
}

func (c Category) String() string {
	return string(c)
}

// BidiClass is a Bidi_Class code as used in UnicodeData.txt field 4.
// https://www.unicode.org/reports/tr44/#Bidi_Class_Values
type BidiClass string

const (
	BidiL   BidiClass = "L"
	BidiR   BidiClass = "R"
	BidiAL  BidiClass = "AL"
	BidiEN  BidiClass = "EN"
	BidiES  BidiClass = "ES"
	BidiET  BidiClass = "ET"
	BidiAN  BidiClass = "AN"
	BidiCS  BidiClass = "CS"
	BidiNSM BidiClass = "NSM"
	BidiBN  BidiClass = "BN"
	BidiB   BidiClass = "B"
	BidiS   BidiClass = "S"
	BidiWS  BidiClass = "WS"
	BidiON  BidiClass = "ON"
	BidiLRE BidiClass = "LRE"
	BidiLRO BidiClass = "LRO"
	BidiRLE BidiClass = "RLE"
	BidiRLO BidiClass = "RLO"
	BidiPDF BidiClass = "PDF"
	BidiLRI BidiClass = "LRI"
	BidiRLI BidiClass = "RLI"
	BidiFSI BidiClass = "FSI"
	BidiPDI BidiClass = "PDI"
)

var bidiClasses = map[BidiClass]struct{}{
	BidiL: {}, BidiR: {}, BidiAL: {},
	BidiEN: {}, BidiES: {}, BidiET: {}, BidiAN: {}, BidiCS: {}, BidiNSM: {}, BidiBN: {},
	BidiB: {}, BidiS: {}, BidiWS: {}, BidiON: {},
	BidiLRE: {}, BidiLRO: {}, BidiRLE: {}, BidiRLO: {}, BidiPDF: {},
	BidiLRI: {}, BidiRLI: {}, BidiFSI: {}, BidiPDI: {},
}

// ParseBidiClass accepts exactly one of the known Bidi_Class codes.
func ParseBidiClass(s string) (BidiClass, error) {
	b := BidiClass(s)
	if _, ok := bidiClasses[b]; !ok {
		return "", fmt.Errorf("unknown bidi class %q", s)
	}
	return b, nil
}

func (b BidiClass) String() string {
	return string(b)
}
