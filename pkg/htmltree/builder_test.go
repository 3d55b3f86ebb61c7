package htmltree

import (
	"strings"
	"testing"

	"corehost/pkg/dom"
	"corehost/pkg/logsink"
)

func findDescendants(doc *dom.Document, root dom.Ref, tag string) []dom.Ref {
	var out []dom.Ref
	var walk func(dom.Ref)
	walk = func(r dom.Ref) {
		if doc.IsElement(r) && doc.TagNameString(r) == tag {
			out = append(out, r)
		}
		for c := doc.FirstChild(r); !c.IsZero(); c = doc.NextSibling(c) {
			walk(c)
		}
	}
	walk(root)
	return out
}

func findFirst(doc *dom.Document, root dom.Ref, tag string) (dom.Ref, bool) {
	ds := findDescendants(doc, root, tag)
	if len(ds) == 0 {
		return dom.Ref{}, false
	}
	return ds[0], true
}

func TestImplicitHTMLHeadBodyAndPendingTextFlush(t *testing.T) {
	doc := Run("Hello<br>world", logsink.Nop)
	root := doc.Root()
	if doc.TagNameString(root) != "html" {
		t.Fatalf("root tag = %q, want html", doc.TagNameString(root))
	}
	head, ok := findFirst(doc, root, "head")
	if !ok {
		t.Fatalf("no implicit <head> created")
	}
	if len(doc.Children(head)) != 0 {
		t.Fatalf("expected empty head, got %d children", len(doc.Children(head)))
	}
	body, ok := findFirst(doc, root, "body")
	if !ok {
		t.Fatalf("no implicit <body> created")
	}
	kids := doc.Children(body)
	if len(kids) != 3 {
		t.Fatalf("expected 3 children of body (text, br, text), got %d: dump=%s", len(kids), doc.Dump(root))
	}
	if !doc.IsText(kids[0]) || doc.TextData(kids[0]) != "Hello" {
		t.Fatalf("first child should be text 'Hello', got %+v", kids[0])
	}
	if doc.TagNameString(kids[1]) != "br" {
		t.Fatalf("second child should be <br>, got %q", doc.TagNameString(kids[1]))
	}
	if !doc.IsText(kids[2]) || doc.TextData(kids[2]) != "world" {
		t.Fatalf("third child should be text 'world', got %+v", kids[2])
	}
}

func TestMisnestedFormattingPreservesTextOrderAndElements(t *testing.T) {
	doc := Run("<p>1<b>2<i>3</b>4</i>5</p>", logsink.Nop)
	root := doc.Root()
	p, ok := findFirst(doc, root, "p")
	if !ok {
		t.Fatalf("no <p> found; dump=%s", doc.Dump(root))
	}
	if got := doc.InnerText(p); got != "12345" {
		t.Fatalf("InnerText(p) = %q, want %q; dump=%s", got, "12345", doc.Dump(root))
	}
	if bs := findDescendants(doc, p, "b"); len(bs) == 0 {
		t.Fatalf("adoption agency dropped the <b> element entirely; dump=%s", doc.Dump(root))
	}
	if is := findDescendants(doc, p, "i"); len(is) == 0 {
		t.Fatalf("adoption agency dropped all <i> elements; dump=%s", doc.Dump(root))
	}
}

func TestImplicitPClosedByBlockElement(t *testing.T) {
	doc := Run("<p>one<div>two</div>", logsink.Nop)
	root := doc.Root()
	body, _ := findFirst(doc, root, "body")
	kids := doc.Children(body)
	if len(kids) != 2 {
		t.Fatalf("expected <p> and <div> as siblings under body, got %d children: %s", len(kids), doc.Dump(root))
	}
	if doc.TagNameString(kids[0]) != "p" || doc.TagNameString(kids[1]) != "div" {
		t.Fatalf("expected p then div, got %q then %q", doc.TagNameString(kids[0]), doc.TagNameString(kids[1]))
	}
}

func TestVoidElementsHaveNoChildren(t *testing.T) {
	doc := Run("<img src=\"x.png\"><p>text</p>", logsink.Nop)
	root := doc.Root()
	img, ok := findFirst(doc, root, "img")
	if !ok {
		t.Fatalf("no <img> found")
	}
	if len(doc.Children(img)) != 0 {
		t.Fatalf("void element should have no children")
	}
	if !doc.SelfClosing(img) {
		t.Fatalf("void element should be marked self-closing")
	}
}

func TestCommentInsertedAsNode(t *testing.T) {
	doc := Run("<!-- a comment --><p>x</p>", logsink.Nop)
	root := doc.Root()
	dump := doc.Dump(root)
	if !strings.Contains(dump, "<!--") {
		t.Fatalf("comment missing from dump: %s", dump)
	}
}

func TestAttributesAppliedInTokenOrderFirstWins(t *testing.T) {
	doc := Run(`<div id="a" id="b">x</div>`, logsink.Nop)
	root := doc.Root()
	div, _ := findFirst(doc, root, "div")
	v, ok := doc.GetAttr(div, "id")
	if !ok || v != "a" {
		t.Fatalf("expected first id attribute to win, got %q", v)
	}
}

func TestDoctypeSetsNoQuirksMode(t *testing.T) {
	doc := Run("<!DOCTYPE html><p>x</p>", logsink.Nop)
	if doc.QuirksMode() != dom.NoQuirks {
		t.Fatalf("expected NoQuirks for plain doctype, got %v", doc.QuirksMode())
	}
}
