package dom

import (
	"fmt"
	"strings"
)

// Dump renders a canonical pre-order text dump of the subtree rooted at r,
// one node per line, indented two spaces per depth. It is meant as a test
// oracle: two trees built by different paths (tokenizer+tree-builder vs.
// direct construction) that are structurally identical produce byte-
// identical dumps.
func (d *Document) Dump(r Ref) string {
	var b strings.Builder
	d.dumpNode(&b, r, 0)
	return b.String()
}

func (d *Document) dumpNode(b *strings.Builder, r Ref, depth int) {
	indent := strings.Repeat("  ", depth)
	switch r.Kind() {
	case KindElement:
		el := d.element(r)
		b.WriteString(indent)
		b.WriteByte('<')
		b.WriteString(d.Sym(el.Tag))
		for _, a := range el.Attrs {
			fmt.Fprintf(b, " %s=%q", d.Sym(a.Name), a.Value)
		}
		b.WriteString(">\n")
		for c := d.FirstChild(r); !c.IsZero(); c = d.NextSibling(c) {
			d.dumpNode(b, c, depth+1)
		}
	case KindText:
		b.WriteString(indent)
		b.WriteString("#text ")
		b.WriteString(fmt.Sprintf("%q", d.text(r).Data))
		b.WriteByte('\n')
	case KindComment:
		b.WriteString(indent)
		b.WriteString("<!-- ")
		b.WriteString(d.comment(r).Data)
		b.WriteString(" -->\n")
	case KindDoctype:
		dt := d.doctypeNode(r)
		b.WriteString(indent)
		fmt.Fprintf(b, "<!DOCTYPE %s %q %q>\n", dt.Name, dt.PublicID, dt.SystemID)
	}
}

// InnerText concatenates the Data of every Text descendant of r in
// document order, with no separators — the same traversal the layout
// engine's pending-text coalescing and the markdown emitter's plain-text
// extraction both need.
func (d *Document) InnerText(r Ref) string {
	var b strings.Builder
	d.innerText(&b, r)
	return b.String()
}

func (d *Document) innerText(b *strings.Builder, r Ref) {
	if r.Kind() == KindText {
		b.WriteString(d.text(r).Data)
		return
	}
	for c := d.FirstChild(r); !c.IsZero(); c = d.NextSibling(c) {
		d.innerText(b, c)
	}
}
