package htmltree

import "corehost/pkg/dom"

var defaultScopeStop = map[string]bool{
	"applet": true, "caption": true, "html": true, "table": true, "td": true,
	"th": true, "marquee": true, "object": true, "template": true,
}

func (b *Builder) hasElementInScope(tag string) bool {
	return b.hasElementInScopeWith(tag, defaultScopeStop)
}

func (b *Builder) hasElementInButtonScope(tag string) bool {
	stop := map[string]bool{"button": true}
	for k := range defaultScopeStop {
		stop[k] = true
	}
	return b.hasElementInScopeWith(tag, stop)
}

func (b *Builder) hasElementInTableScope(tag string) bool {
	stop := map[string]bool{"html": true, "table": true, "template": true}
	return b.hasElementInScopeWith(tag, stop)
}

func (b *Builder) hasElementInListItemScope(tag string) bool {
	stop := map[string]bool{"ol": true, "ul": true}
	for k := range defaultScopeStop {
		stop[k] = true
	}
	return b.hasElementInScopeWith(tag, stop)
}

// hasElementInSelectScope inverts the predicate: every element is a scope
// boundary except optgroup/option, per §4.3.
func (b *Builder) hasElementInSelectScope(tag string) bool {
	for i := len(b.openElements) - 1; i >= 0; i-- {
		t := b.doc.TagNameString(b.openElements[i])
		if t == tag {
			return true
		}
		if t != "optgroup" && t != "option" {
			return false
		}
	}
	return false
}

func (b *Builder) hasElementInScopeWith(tag string, stop map[string]bool) bool {
	for i := len(b.openElements) - 1; i >= 0; i-- {
		t := b.doc.TagNameString(b.openElements[i])
		if t == tag {
			return true
		}
		if stop[t] {
			return false
		}
	}
	return false
}

var impliedEndTagSet = map[string]bool{
	"dd": true, "dt": true, "li": true, "optgroup": true, "option": true,
	"p": true, "rb": true, "rp": true, "rt": true, "rtc": true,
}

// generateImpliedEndTags pops elements from the open stack while the
// current node's tag is in the implied-end-tag set, skipping the tag named
// by except (used by callers that are themselves about to close that tag).
func (b *Builder) generateImpliedEndTags(except string) {
	for len(b.openElements) > 0 {
		cur := b.currentTag()
		if cur == except {
			return
		}
		if !impliedEndTagSet[cur] {
			return
		}
		b.pop()
	}
}

func (b *Builder) findInOpenElements(r dom.Ref) int {
	for i := len(b.openElements) - 1; i >= 0; i-- {
		if b.openElements[i] == r {
			return i
		}
	}
	return -1
}

func (b *Builder) isInOpenElements(r dom.Ref) bool { return b.findInOpenElements(r) >= 0 }
