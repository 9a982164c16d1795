package document

// All lengths are millimeters on an A4 portrait page.

type MarginSize string

const (
	MarginSmall  MarginSize = "small"
	MarginMedium MarginSize = "medium"
	MarginLarge  MarginSize = "large"
)

const (
	pageWidth  = 210.0
	pageHeight = 297.0

	// safeTextFraction keeps a guaranteed blank margin even for worst-case
	// text measurement: wrapped text only uses this fraction of the content
	// width.
	safeTextFraction = 0.92

	// avgCharWidth is the conservative per-character width estimate used for
	// wrapping body text.
	avgCharWidth = 2.0
)

// Geometry is the derived page layout for one margin preset. Content width
// and safe text width are always re-derived from the active preset, never
// hard-coded.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
}

// GeometryFor maps a margin preset to its page geometry. Unknown values fall
// back to medium.
func GeometryFor(size MarginSize) Geometry {
	margin := 16.0
	switch size {
	case MarginSmall:
		margin = 12.0
	case MarginLarge:
		margin = 20.0
	}
	return Geometry{PageWidth: pageWidth, PageHeight: pageHeight, Margin: margin}
}

func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

func (g Geometry) SafeTextWidth() float64 {
	return g.ContentWidth() * safeTextFraction
}

// Bottom is the lowest y a block may end at.
func (g Geometry) Bottom() float64 {
	return g.PageHeight - g.Margin
}

// WrapText breaks s into lines that fit within width using the conservative
// character width estimate. Words longer than a full line are hard-split on
// rune boundaries.
func WrapText(s string, width float64) []string {
	maxChars := int(width / avgCharWidth)
	if maxChars < 1 {
		maxChars = 1
	}

	var lines []string
	line := ""
	lineLen := 0
	for _, word := range splitWords(s) {
		runes := []rune(word)
		for len(runes) > maxChars {
			if line != "" {
				lines = append(lines, line)
				line, lineLen = "", 0
			}
			lines = append(lines, string(runes[:maxChars]))
			runes = runes[maxChars:]
		}
		word = string(runes)
		switch {
		case line == "":
			line, lineLen = word, len(runes)
		case lineLen+1+len(runes) <= maxChars:
			line += " " + word
			lineLen += 1 + len(runes)
		default:
			lines = append(lines, line)
			line, lineLen = word, len(runes)
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}
