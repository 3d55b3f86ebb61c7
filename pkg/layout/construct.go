package layout

import (
	"strings"
	"unicode"

	"corehost/pkg/cssstyle"
	"corehost/pkg/dom"
)

// replacedElements lists the tag names construction resolves to ImageBox
// views rather than BlockBox/InlineBox, per spec.md §3.5's "replaced
// element" note. `iframe` has no intrinsic image data of its own but is
// sized and painted the same way a broken image is.
var replacedElements = map[string]bool{
	"img": true, "iframe": true,
}

// construct walks doc from its root, computing styles as it goes (so a
// child's inherited properties see its parent's resolved style) and
// allocates one View per non-`display:none` node, per spec.md §4.6's
// "View construction" pass. Text nodes are split into whitespace-collapsed
// TextRuns; replaced elements become ImageBox views sized from
// intrinsicSize.
func construct(doc *dom.Document, sheets []*cssstyle.Stylesheet, intrinsicSize func(url string) (w, h float64, ok bool)) *Tree {
	t := newTree(doc)
	root := doc.Root()
	if root.IsZero() {
		return t
	}
	if v := constructNode(t, doc, sheets, root, nil, intrinsicSize); !v.IsZero() {
		t.root = v
	}
	return t
}

func constructNode(t *Tree, doc *dom.Document, sheets []*cssstyle.Stylesheet, node dom.Ref, parentStyle *cssstyle.ComputedStyle, intrinsicSize func(string) (float64, float64, bool)) ViewRef {
	switch node.Kind() {
	case dom.KindElement:
		return constructElement(t, doc, sheets, node, parentStyle, intrinsicSize)
	case dom.KindText:
		return constructTextRuns(t, doc, node, parentStyle)
	default:
		return ViewRef{}
	}
}

func constructElement(t *Tree, doc *dom.Document, sheets []*cssstyle.Stylesheet, el dom.Ref, parentStyle *cssstyle.ComputedStyle, intrinsicSize func(string) (float64, float64, bool)) ViewRef {
	cs := cssstyle.ComputeStyle(doc, el, sheets, parentStyle)
	display := cssstyle.StyleOf(cs, "display").Display
	if display == cssstyle.DisplayNone {
		return ViewRef{}
	}

	tag := doc.TagNameString(el)
	if tag == "br" {
		r := t.alloc(KindInlineBox)
		v := t.View(r)
		v.Node = el
		v.Style = cs
		v.Display = display
		return r
	}

	if replacedElements[tag] {
		r := t.alloc(KindImageBox)
		v := t.View(r)
		v.Node = el
		v.Style = cs
		v.Display = display
		v.Position = cssstyle.StyleOf(cs, "position").Position
		if src, ok := doc.GetAttr(el, "src"); ok {
			v.ImageURL = src
			if w, h, ok := intrinsicSize(src); ok {
				v.IntrinsicWidth, v.IntrinsicHeight = w, h
			}
		}
		return r
	}

	kind := KindBlockBox
	switch {
	case display == cssstyle.DisplayListItem:
		kind = KindListItemBox
	case tag == "ul" || tag == "ol":
		kind = KindListBox
	case display == cssstyle.DisplayInline || display == cssstyle.DisplayInlineBlock:
		kind = KindInlineBox
	}

	r := t.alloc(kind)
	v := t.View(r)
	v.Node = el
	v.Style = cs
	v.Display = display
	v.Position = cssstyle.StyleOf(cs, "position").Position
	v.TextAlign = cssstyle.StyleOf(cs, "text-align").TextAlign
	v.WhiteSpace = cssstyle.StyleOf(cs, "white-space").WhiteSpace
	v.FlexDirection = cssstyle.StyleOf(cs, "flex-direction").FlexDirection
	v.FontSize = fontSizeOf(cs)
	v.LineHeight = lineHeightOf(cs, v.FontSize)

	if kind == KindListItemBox {
		v.MarkerText = "" // filled in by assignListMarkers once sibling index is known
	}

	for _, child := range doc.Children(el) {
		if cv := constructNode(t, doc, sheets, child, cs, intrinsicSize); !cv.IsZero() {
			t.appendChild(r, cv)
		}
	}

	if kind == KindListBox {
		assignListMarkers(t, r, cs)
	}

	return r
}

// collapseWhitespace implements the "normal" white-space model spec.md
// §4.6.2 requires: runs of ASCII space/tab/newline collapse to a single
// space, and leading/trailing space around block boundaries is trimmed by
// the inline line-builder, not here (collapsing here only flattens runs
// inside a single text node).
func collapseWhitespace(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}

func constructTextRuns(t *Tree, doc *dom.Document, node dom.Ref, parentStyle *cssstyle.ComputedStyle) ViewRef {
	data := doc.TextData(node)
	ws := cssstyle.WhiteSpaceNormal
	if parentStyle != nil {
		ws = cssstyle.StyleOf(parentStyle, "white-space").WhiteSpace
	}
	text := data
	if ws == cssstyle.WhiteSpaceNormal {
		text = collapseWhitespace(data)
	}
	if ws != cssstyle.WhiteSpacePre && strings.TrimSpace(text) == "" {
		return ViewRef{}
	}

	r := t.alloc(KindTextRun)
	v := t.View(r)
	v.Node = node
	v.Style = parentStyle
	v.Text = text
	v.Length = len(text)
	if parentStyle != nil {
		v.FontSize = fontSizeOf(parentStyle)
		v.LineHeight = lineHeightOf(parentStyle, v.FontSize)
	}
	return r
}

func fontSizeOf(cs *cssstyle.ComputedStyle) float64 {
	if raw, ok := cs.Get("font-size"); ok {
		if l := cssstyle.ParseLength(raw, 16, 16); !l.Auto {
			return l.Px
		}
	}
	return 16
}

func lineHeightOf(cs *cssstyle.ComputedStyle, fontSize float64) float64 {
	if raw, ok := cs.Get("line-height"); ok {
		if l := cssstyle.ParseLength(raw, fontSize, fontSize); !l.Auto {
			return l.Px
		}
	}
	return fontSize * 1.2
}

// assignListMarkers walks a just-constructed ListBox's list-item children
// in document order, numbering them for ordered lists (honoring a `start`
// attribute the same way pkg/markdown's list builder emits one) and
// generating marker text per spec.md §4.6.5.
func assignListMarkers(t *Tree, list ViewRef, listStyle *cssstyle.ComputedStyle) {
	doc := t.doc
	start := 1
	if listEl := t.View(list).Node; doc.IsElement(listEl) {
		if raw, ok := doc.GetAttr(listEl, "start"); ok {
			if n, err := parsePositiveInt(raw); err == nil {
				start = n
			}
		}
	}
	styleType := cssstyle.StyleOf(listStyle, "list-style-type").ListStyleType

	idx := start
	for c := t.FirstChild(list); !c.IsZero(); c = t.NextSibling(c) {
		cv := t.View(c)
		if cv.Kind != KindListItemBox {
			continue
		}
		cv.ItemIndex = idx
		cv.MarkerText = markerText(styleType, idx)
		idx++
	}
}

func parsePositiveInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	n := 0
	if s == "" {
		return 0, errNotInt
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, errNotInt
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

type constructError string

func (e constructError) Error() string { return string(e) }

const errNotInt = constructError("not an integer")
