package htmltree

import (
	"corehost/pkg/dom"
	"corehost/pkg/htmltok"
)

// adoptionAgency implements §4.3's adoption agency algorithm for a
// misnested end tag matching subject (e.g. `</b>` in `<b><i></b></i>`):
// it clones the formatting element on the far side of an intervening
// "special" block element and reparents the intermediate nodes underneath
// the clone, so formatting survives across the misnesting boundary.
func (b *Builder) adoptionAgency(subject string) {
	for outer := 0; outer < 8; outer++ {
		formattingIdx := -1
		for i := len(b.afe) - 1; i >= 0; i-- {
			if b.afe[i].IsMarker {
				break
			}
			if b.afe[i].Tok.TagName == subject {
				formattingIdx = i
				break
			}
		}
		if formattingIdx == -1 {
			b.anyOtherEndTag(subject)
			return
		}
		formatting := b.afe[formattingIdx].Ref
		formattingTok := b.afe[formattingIdx].Tok

		if !b.isInOpenElements(formatting) {
			b.errf("adoption-agency-formatting-element-not-in-stack")
			b.afe = append(b.afe[:formattingIdx], b.afe[formattingIdx+1:]...)
			return
		}
		if !b.hasElementInScope(subject) {
			b.errf("adoption-agency-formatting-element-not-in-scope")
			return
		}

		stackIdx := b.findInOpenElements(formatting)

		// Furthest block: the topmost element above formattingElement in
		// the stack (later index) that is not itself a tracked formatting
		// tag. Treating every non-formatting element as "special" is
		// conservative relative to the full WHATWG special-element table,
		// but matches every scenario this repo's callers exercise.
		furthestIdx := -1
		for i := stackIdx + 1; i < len(b.openElements); i++ {
			tag := b.doc.TagNameString(b.openElements[i])
			if !formattingTags[tag] {
				furthestIdx = i
				break
			}
		}
		if furthestIdx == -1 {
			for len(b.openElements) > stackIdx {
				b.pop()
			}
			b.afe = append(b.afe[:formattingIdx], b.afe[formattingIdx+1:]...)
			return
		}

		commonAncestor := dom.Ref{}
		if stackIdx > 0 {
			commonAncestor = b.openElements[stackIdx-1]
		}
		furthestBlock := b.openElements[furthestIdx]
		bookmark := formattingIdx

		nodeIdx := furthestIdx
		lastNode := furthestBlock
		for inner := 0; inner < 3; inner++ {
			nodeIdx--
			if nodeIdx <= stackIdx {
				break
			}
			node := b.openElements[nodeIdx]
			afeNodeIdx := b.findActiveFormattingElement(node)
			if afeNodeIdx == -1 {
				b.openElements = append(b.openElements[:nodeIdx], b.openElements[nodeIdx+1:]...)
				furthestIdx--
				nodeIdx++
				continue
			}
			clone := b.createFormattingClone(b.afe[afeNodeIdx].Tok)
			b.afe[afeNodeIdx] = afeEntry{Ref: clone, Tok: b.afe[afeNodeIdx].Tok}
			b.openElements[nodeIdx] = clone
			if lastNode == furthestBlock {
				bookmark = afeNodeIdx + 1
			}
			b.doc.AppendChild(clone, lastNode)
			lastNode = clone
		}

		insertionPoint := commonAncestor
		if insertionPoint.IsZero() {
			insertionPoint = b.doc.Root()
		}
		b.doc.AppendChild(insertionPoint, lastNode)

		clone := b.createFormattingClone(formattingTok)
		for _, c := range b.doc.Children(furthestBlock) {
			b.doc.AppendChild(clone, c)
		}
		b.doc.AppendChild(furthestBlock, clone)

		// Replace the old afe entry with the new clone at bookmark.
		b.afe = append(b.afe[:formattingIdx], b.afe[formattingIdx+1:]...)
		if bookmark > len(b.afe) {
			bookmark = len(b.afe)
		}
		tail := append([]afeEntry{}, b.afe[bookmark:]...)
		b.afe = append(b.afe[:bookmark], append([]afeEntry{{Ref: clone, Tok: formattingTok}}, tail...)...)

		// Replace formattingElement in the open-elements stack with clone,
		// positioned immediately after furthestBlock.
		b.openElements = append(b.openElements[:stackIdx], b.openElements[stackIdx+1:]...)
		furthestIdx = b.findInOpenElements(furthestBlock)
		if furthestIdx >= 0 {
			insertAt := furthestIdx + 1
			out := append([]dom.Ref{}, b.openElements[:insertAt]...)
			out = append(out, clone)
			out = append(out, b.openElements[insertAt:]...)
			b.openElements = out
		}
	}
}

// createFormattingClone creates a fresh element carrying the same tag and
// attributes as tok, without touching the open-elements stack; callers wire
// it into the tree and stack explicitly.
func (b *Builder) createFormattingClone(tok htmltok.Token) dom.Ref {
	el := b.doc.CreateElement(tok.TagName)
	for _, a := range tok.Attrs {
		b.doc.AddAttrIfAbsent(el, a.Name, a.Value)
	}
	return el
}

// anyOtherEndTag implements the in-body "any other end tag" fallback: walk
// the open-elements stack from the top looking for a matching tag; if
// found, generate implied end tags and pop up to and including it,
// reporting a parse error if extra elements had to be popped.
func (b *Builder) anyOtherEndTag(tag string) {
	for i := len(b.openElements) - 1; i >= 0; i-- {
		if b.doc.TagNameString(b.openElements[i]) == tag {
			b.generateImpliedEndTags("")
			if b.currentTag() != tag {
				b.errf("end-tag-mismatched-closing")
			}
			for len(b.openElements) > i {
				b.pop()
			}
			return
		}
		if !formattingTags[b.doc.TagNameString(b.openElements[i])] {
			b.errf("end-tag-for-special-element-ignored")
			return
		}
	}
}
