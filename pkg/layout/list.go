package layout

import "corehost/pkg/cssstyle"

// markerText generates the marker glyph/text for a list item at the given
// 1-based position. Roman numerals are only defined up to 3999 and
// alphabetic markers only up to 26; out of that range both produce the
// literal "invalid" marker per spec.md §4.6.5.
func markerText(style cssstyle.ListStyleType, index int) string {
	switch style {
	case cssstyle.ListStyleNone:
		return ""
	case cssstyle.ListStyleDisc:
		return "•"
	case cssstyle.ListStyleCircle:
		return "◦"
	case cssstyle.ListStyleSquare:
		return "▪"
	case cssstyle.ListStyleDecimal:
		return decimalMarker(index)
	case cssstyle.ListStyleLowerRoman:
		return romanMarker(index, false)
	case cssstyle.ListStyleUpperRoman:
		return romanMarker(index, true)
	case cssstyle.ListStyleLowerAlpha:
		return alphaMarker(index, false)
	case cssstyle.ListStyleUpperAlpha:
		return alphaMarker(index, true)
	default:
		return decimalMarker(index)
	}
}

func decimalMarker(index int) string {
	return itoa(index) + "."
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func romanMarker(index int, upper bool) string {
	if index < 1 || index > 3999 {
		return "invalid"
	}
	n := index
	var b []byte
	for _, r := range romanTable {
		for n >= r.value {
			b = append(b, r.symbol...)
			n -= r.value
		}
	}
	s := string(b)
	if !upper {
		s = toLowerASCII(s)
	}
	return s + "."
}

func toLowerASCII(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}

// alphaMarker generates a single letter a-z (A-Z upper), valid for indices
// 1 through 26 only, per spec.md §4.6.5.
func alphaMarker(index int, upper bool) string {
	if index < 1 || index > 26 {
		return "invalid"
	}
	letter := byte('a' + index - 1)
	if upper {
		letter = byte('A' + index - 1)
	}
	return string([]byte{letter}) + "."
}
