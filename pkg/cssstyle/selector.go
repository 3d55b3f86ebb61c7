package cssstyle

import (
	"strings"

	"corehost/pkg/dom"
)

// Combinator is the relationship between two adjacent compound selectors in
// a complex selector, e.g. the space in "div p" or the ">" in "div > p".
type Combinator int

const (
	CombinatorDescendant Combinator = iota
	CombinatorChild
	CombinatorAdjacentSibling
	CombinatorGeneralSibling
)

// compoundSelector is one space/combinator-delimited segment of a selector,
// e.g. "div.card#main" parses to Element="div", Classes=["card"], ID="main".
type compoundSelector struct {
	Element string // "" means no element constraint, "*" is explicit universal
	Classes []string
	ID      string
}

// Selector is a full (possibly compound) CSS selector plus its precomputed
// specificity, per the cascade rules CSS 2.1 §6.4.3 defines.
type Selector struct {
	Raw         string
	Parts       []compoundSelector
	Combinators []Combinator // len(Combinators) == len(Parts)-1
	Specificity int
}

// parseSelectorList splits a comma-separated selector group and parses each.
func parseSelectorList(raw string) []Selector {
	var out []Selector
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, parseSelector(s))
	}
	return out
}

func parseSelector(raw string) Selector {
	sel := Selector{Raw: raw}
	fields := tokenizeCombinators(raw)
	for i, f := range fields {
		if f.isCombinator {
			sel.Combinators = append(sel.Combinators, f.combinator)
			continue
		}
		part := parseCompound(f.text)
		sel.Parts = append(sel.Parts, part)
		_ = i
	}
	sel.Specificity = computeSpecificity(sel.Parts)
	return sel
}

type combinatorField struct {
	isCombinator bool
	combinator   Combinator
	text         string
}

// tokenizeCombinators splits a complex selector into alternating
// compound-selector / combinator fields on whitespace and the `>`/`+`/`~`
// combinator characters.
func tokenizeCombinators(raw string) []combinatorField {
	var out []combinatorField
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, combinatorField{text: strings.TrimSpace(buf.String())})
			buf.Reset()
		}
	}
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '>':
			flush()
			out = append(out, combinatorField{isCombinator: true, combinator: CombinatorChild})
		case '+':
			flush()
			out = append(out, combinatorField{isCombinator: true, combinator: CombinatorAdjacentSibling})
		case '~':
			flush()
			out = append(out, combinatorField{isCombinator: true, combinator: CombinatorGeneralSibling})
		case ' ', '\t', '\n':
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	// collapse accidental descendant placeholders: a bare space between two
	// text fields produced no combinator field above, so insert one now.
	var result []combinatorField
	for i, f := range out {
		if i > 0 && !f.isCombinator && !out[i-1].isCombinator {
			result = append(result, combinatorField{isCombinator: true, combinator: CombinatorDescendant})
		}
		result = append(result, f)
	}
	return result
}

func parseCompound(text string) compoundSelector {
	var cs compoundSelector
	i := 0
	n := len(text)
	readToken := func(stop func(byte) bool) string {
		start := i
		for i < n && !stop(text[i]) {
			i++
		}
		return text[start:i]
	}
	isDelim := func(c byte) bool { return c == '.' || c == '#' }
	if n > 0 && text[0] != '.' && text[0] != '#' {
		cs.Element = readToken(isDelim)
	}
	for i < n {
		switch text[i] {
		case '.':
			i++
			cs.Classes = append(cs.Classes, readToken(isDelim))
		case '#':
			i++
			cs.ID = readToken(isDelim)
		default:
			i++
		}
	}
	return cs
}

func computeSpecificity(parts []compoundSelector) int {
	var ids, classes, elements int
	for _, p := range parts {
		if p.ID != "" {
			ids++
		}
		classes += len(p.Classes)
		if p.Element != "" && p.Element != "*" {
			elements++
		}
	}
	return ids*100 + classes*10 + elements
}

// classList splits the `class` attribute on ASCII whitespace.
func classList(doc *dom.Document, el dom.Ref) map[string]bool {
	out := make(map[string]bool)
	if v, ok := doc.GetAttr(el, "class"); ok {
		for _, c := range strings.Fields(v) {
			out[c] = true
		}
	}
	return out
}

func matchesCompound(doc *dom.Document, el dom.Ref, cs compoundSelector) bool {
	if !doc.IsElement(el) {
		return false
	}
	if cs.Element != "" && cs.Element != "*" && doc.TagNameString(el) != cs.Element {
		return false
	}
	if cs.ID != "" {
		if v, ok := doc.GetAttr(el, "id"); !ok || v != cs.ID {
			return false
		}
	}
	if len(cs.Classes) > 0 {
		classes := classList(doc, el)
		for _, c := range cs.Classes {
			if !classes[c] {
				return false
			}
		}
	}
	return true
}

// matchesSelector walks a compound selector chain right-to-left against the
// ancestor/sibling axis the combinators specify.
func matchesSelector(doc *dom.Document, el dom.Ref, sel Selector) bool {
	if len(sel.Parts) == 0 {
		return false
	}
	last := len(sel.Parts) - 1
	if !matchesCompound(doc, el, sel.Parts[last]) {
		return false
	}
	cur := el
	for i := last - 1; i >= 0; i-- {
		comb := sel.Combinators[i]
		var found dom.Ref
		switch comb {
		case CombinatorChild:
			p := doc.Parent(cur)
			if !p.IsZero() && matchesCompound(doc, p, sel.Parts[i]) {
				found = p
			}
		case CombinatorDescendant:
			for p := doc.Parent(cur); !p.IsZero(); p = doc.Parent(p) {
				if matchesCompound(doc, p, sel.Parts[i]) {
					found = p
					break
				}
			}
		case CombinatorAdjacentSibling:
			s := doc.PrevSibling(cur)
			for !s.IsZero() && !doc.IsElement(s) {
				s = doc.PrevSibling(s)
			}
			if !s.IsZero() && matchesCompound(doc, s, sel.Parts[i]) {
				found = s
			}
		case CombinatorGeneralSibling:
			for s := doc.PrevSibling(cur); !s.IsZero(); s = doc.PrevSibling(s) {
				if doc.IsElement(s) && matchesCompound(doc, s, sel.Parts[i]) {
					found = s
					break
				}
			}
		}
		if found.IsZero() {
			return false
		}
		cur = found
	}
	return true
}
