package htmltree

import (
	"corehost/pkg/dom"
	"corehost/pkg/htmltok"
)

// afeEntry is one slot in the active formatting elements list: either a
// marker (Ref is zero, IsMarker true) or a live formatting element paired
// with the token that created it, so reconstruction can recreate an
// equivalent element later.
type afeEntry struct {
	Ref      dom.Ref
	Tok      htmltok.Token
	IsMarker bool
}

func (b *Builder) pushActiveFormattingElement(r dom.Ref, tok htmltok.Token) {
	// Noah's Ark clause: if there are already three elements with the same
	// tag name and attributes between the end of the list and the last
	// marker, remove the earliest of them.
	count := 0
	firstMatch := -1
	for i := len(b.afe) - 1; i >= 0; i-- {
		e := b.afe[i]
		if e.IsMarker {
			break
		}
		if e.Tok.TagName == tok.TagName && sameAttrs(e.Tok.Attrs, tok.Attrs) {
			count++
			firstMatch = i
		}
	}
	if count >= 3 && firstMatch >= 0 {
		b.afe = append(b.afe[:firstMatch], b.afe[firstMatch+1:]...)
	}
	b.afe = append(b.afe, afeEntry{Ref: r, Tok: tok})
}

func sameAttrs(a, b []htmltok.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x.Name == y.Name && x.Value == y.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (b *Builder) pushFormattingMarker() {
	b.afe = append(b.afe, afeEntry{IsMarker: true})
}

func (b *Builder) clearActiveFormattingToLastMarker() {
	for len(b.afe) > 0 {
		last := b.afe[len(b.afe)-1]
		b.afe = b.afe[:len(b.afe)-1]
		if last.IsMarker {
			return
		}
	}
}

func (b *Builder) findActiveFormattingElement(r dom.Ref) int {
	for i := len(b.afe) - 1; i >= 0; i-- {
		if !b.afe[i].IsMarker && b.afe[i].Ref == r {
			return i
		}
	}
	return -1
}

func (b *Builder) removeActiveFormattingElement(r dom.Ref) {
	idx := b.findActiveFormattingElement(r)
	if idx >= 0 {
		b.afe = append(b.afe[:idx], b.afe[idx+1:]...)
	}
}

// reconstructActiveFormattingElements implements §4.3's reconstruction
// procedure: if the list is empty, or the last entry is a marker, or the
// last entry is already open, nothing happens. Otherwise walk backward to
// the first entry that is either a marker or already open, then walk
// forward recreating each skipped entry as a fresh element inserted at the
// current insertion point.
func (b *Builder) reconstructActiveFormattingElements() {
	if len(b.afe) == 0 {
		return
	}
	last := b.afe[len(b.afe)-1]
	if last.IsMarker || b.isInOpenElements(last.Ref) {
		return
	}
	i := len(b.afe) - 1
	for i > 0 {
		i--
		e := b.afe[i]
		if e.IsMarker || b.isInOpenElements(e.Ref) {
			i++
			break
		}
	}
	for ; i < len(b.afe); i++ {
		e := b.afe[i]
		clone := b.insertHTMLElement(e.Tok)
		b.afe[i] = afeEntry{Ref: clone, Tok: e.Tok}
	}
}
