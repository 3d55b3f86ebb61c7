package htmltok

import "unicode/utf8"

// namedEntities is a representative subset of the WHATWG named character
// reference table (the full table has 2000+ rows; §4.2/§9 of the spec this
// implements explicitly allows a subset). Entries are matched with the
// trailing semicolon required — the semicolon-optional legacy forms are
// not implemented.
var namedEntities = map[string]string{
	"amp;":      "&",
	"lt;":       "<",
	"gt;":       ">",
	"quot;":     "\"",
	"apos;":     "'",
	"nbsp;":     " ",
	"copy;":     "©",
	"reg;":      "®",
	"trade;":    "™",
	"hellip;":   "…",
	"mdash;":    "—",
	"ndash;":    "–",
	"lsquo;":    "‘",
	"rsquo;":    "’",
	"ldquo;":    "“",
	"rdquo;":    "”",
	"deg;":      "°",
	"plusmn;":   "±",
	"times;":    "×",
	"divide;":   "÷",
	"frac12;":   "½",
	"frac14;":   "¼",
	"frac34;":   "¾",
	"sup2;":     "²",
	"sup3;":     "³",
	"micro;":    "µ",
	"para;":     "¶",
	"sect;":     "§",
	"middot;":   "·",
	"laquo;":    "«",
	"raquo;":    "»",
	"iexcl;":    "¡",
	"iquest;":   "¿",
	"euro;":     "€",
	"pound;":    "£",
	"cent;":     "¢",
	"yen;":      "¥",
	"curren;":   "¤",
	"alpha;":    "α",
	"beta;":     "β",
	"gamma;":    "γ",
	"delta;":    "δ",
	"epsilon;":  "ε",
	"pi;":       "π",
	"sigma;":    "σ",
	"omega;":    "ω",
	"infin;":    "∞",
	"ne;":       "≠",
	"le;":       "≤",
	"ge;":       "≥",
	"larr;":     "←",
	"rarr;":     "→",
	"uarr;":     "↑",
	"darr;":     "↓",
	"harr;":     "↔",
	"bull;":     "•",
	"dagger;":   "†",
	"Dagger;":   "‡",
	"permil;":   "‰",
	"prime;":    "′",
	"Prime;":    "″",
	"oline;":    "‾",
	"frasl;":    "⁄",
	"spades;":   "♠",
	"clubs;":    "♣",
	"hearts;":   "♥",
	"diams;":    "♦",
	"loz;":      "◊",
	"check;":    "✓",
	"cross;":    "✗",
	"star;":     "☆",
	"sdot;":     "⋅",
	"lowast;":   "∗",
	"sum;":      "∑",
	"prod;":     "∏",
	"int;":      "∫",
	"part;":     "∂",
	"nabla;":    "∇",
	"forall;":   "∀",
	"exist;":    "∃",
	"empty;":    "∅",
	"isin;":     "∈",
	"notin;":    "∉",
	"cap;":      "∩",
	"cup;":      "∪",
	"sub;":      "⊂",
	"sup;":      "⊃",
	"sube;":     "⊆",
	"supe;":     "⊇",
	"oplus;":    "⊕",
	"otimes;":   "⊗",
	"perp;":     "⊥",
	"AMP;":      "&",
	"LT;":       "<",
	"GT;":       ">",
	"QUOT;":     "\"",
	"COPY;":     "©",
	"REG;":      "®",
}

// maxNamedEntityLen bounds the longest-match scan.
const maxNamedEntityLen = 10

// lookupNamedEntity returns the decoded text and the number of bytes
// (including the trailing `;`) consumed from s, trying progressively
// shorter prefixes of s so the longest valid match wins.
func lookupNamedEntity(s string) (decoded string, consumed int, ok bool) {
	limit := len(s)
	if limit > maxNamedEntityLen {
		limit = maxNamedEntityLen
	}
	for end := limit; end > 0; end-- {
		candidate := s[:end]
		if candidate[end-1] != ';' {
			continue
		}
		if v, found := namedEntities[candidate]; found {
			return v, end, true
		}
	}
	return "", 0, false
}

// win1252Fixup implements the WHATWG numeric character reference fixup
// table for the C1 control range 0x80-0x9F, which Windows-1252 legacy
// content commonly misuses in place of the correct Unicode codepoints.
var win1252Fixup = map[rune]rune{
	0x80: 0x20AC,
	0x82: 0x201A,
	0x83: 0x0192,
	0x84: 0x201E,
	0x85: 0x2026,
	0x86: 0x2020,
	0x87: 0x2021,
	0x88: 0x02C6,
	0x89: 0x2030,
	0x8A: 0x0160,
	0x8B: 0x2039,
	0x8C: 0x0152,
	0x8E: 0x017D,
	0x91: 0x2018,
	0x92: 0x2019,
	0x93: 0x201C,
	0x94: 0x201D,
	0x95: 0x2022,
	0x96: 0x2013,
	0x97: 0x2014,
	0x98: 0x02DC,
	0x99: 0x2122,
	0x9A: 0x0161,
	0x9B: 0x203A,
	0x9C: 0x0153,
	0x9E: 0x017E,
	0x9F: 0x0178,
}

// decodeNumericCodepoint applies the Windows-1252 fixup, surrogate/overflow
// replacement, and null replacement rules of §4.2 to a raw numeric
// character reference value, then encodes the result as UTF-8.
func decodeNumericCodepoint(cp rune) string {
	if fixed, ok := win1252Fixup[cp]; ok {
		cp = fixed
	}
	if cp == 0 {
		cp = utf8.RuneError
	} else if cp >= 0xD800 && cp <= 0xDFFF {
		cp = utf8.RuneError
	} else if cp > 0x10FFFF {
		cp = utf8.RuneError
	}
	return string(cp)
}
