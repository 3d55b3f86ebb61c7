package dom

import "testing"

func TestAppendChildOrder(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("html")
	doc.SetRoot(root)

	body := doc.CreateElement("body")
	doc.AppendChild(root, body)

	p1 := doc.CreateElement("p")
	p2 := doc.CreateElement("p")
	doc.AppendChild(body, p1)
	doc.AppendChild(body, p2)

	kids := doc.Children(body)
	if len(kids) != 2 || kids[0] != p1 || kids[1] != p2 {
		t.Fatalf("children out of order: %v", kids)
	}
	if doc.Parent(p1) != body {
		t.Fatalf("p1 parent not body")
	}
	if doc.NextSibling(p1) != p2 {
		t.Fatalf("p1.next != p2")
	}
	if doc.PrevSibling(p2) != p1 {
		t.Fatalf("p2.prev != p1")
	}
}

func TestInsertBefore(t *testing.T) {
	doc := NewDocument()
	ul := doc.CreateElement("ul")
	li1 := doc.CreateElement("li")
	li3 := doc.CreateElement("li")
	doc.AppendChild(ul, li1)
	doc.AppendChild(ul, li3)

	li2 := doc.CreateElement("li")
	doc.InsertBefore(ul, li2, li3)

	kids := doc.Children(ul)
	if len(kids) != 3 || kids[0] != li1 || kids[1] != li2 || kids[2] != li3 {
		t.Fatalf("insert-before produced wrong order: %v", kids)
	}
}

func TestRemoveChildRelinksSiblings(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("div")
	a := doc.CreateElement("a")
	b := doc.CreateElement("b")
	c := doc.CreateElement("c")
	doc.AppendChild(parent, a)
	doc.AppendChild(parent, b)
	doc.AppendChild(parent, c)

	doc.RemoveChild(b)

	kids := doc.Children(parent)
	if len(kids) != 2 || kids[0] != a || kids[1] != c {
		t.Fatalf("remove did not relink siblings: %v", kids)
	}
	if !doc.Parent(b).IsZero() {
		t.Fatalf("removed node still has a parent")
	}
}

func TestAttrFirstOccurrenceAndLookup(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")
	doc.SetAttr(el, "class", "a")
	doc.SetAttr(el, "id", "x")

	v, ok := doc.GetAttr(el, "class")
	if !ok || v != "a" {
		t.Fatalf("GetAttr class = %q, %v", v, ok)
	}
	if _, ok := doc.GetAttr(el, "missing"); ok {
		t.Fatalf("GetAttr should report absent attribute as not-ok")
	}

	found, ok := doc.ElementByID("x")
	if !ok || found != el {
		t.Fatalf("ElementByID did not find element tagged via SetAttr")
	}
}

func TestAddAttrIfAbsentKeepsFirst(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("html")
	doc.SetAttr(el, "lang", "en")
	doc.AddAttrIfAbsent(el, "lang", "fr")

	v, _ := doc.GetAttr(el, "lang")
	if v != "en" {
		t.Fatalf("AddAttrIfAbsent overwrote existing attribute: got %q", v)
	}
}

func TestInternDeduplicates(t *testing.T) {
	doc := NewDocument()
	a := doc.Intern("div")
	b := doc.Intern("div")
	if a != b {
		t.Fatalf("same string interned to different symbols: %v != %v", a, b)
	}
	if doc.Sym(a) != "div" {
		t.Fatalf("Sym round-trip failed: %q", doc.Sym(a))
	}
}

func TestDumpIsStable(t *testing.T) {
	doc := NewDocument()
	root := doc.CreateElement("p")
	doc.SetAttr(root, "class", "greeting")
	txt := doc.CreateText("hello")
	doc.AppendChild(root, txt)

	want := "<p class=\"greeting\">\n  #text \"hello\"\n"
	if got := doc.Dump(root); got != want {
		t.Fatalf("Dump mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestInnerTextConcatenatesDescendants(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	span := doc.CreateElement("span")
	doc.AppendChild(div, doc.CreateText("a "))
	doc.AppendChild(div, span)
	doc.AppendChild(span, doc.CreateText("b"))
	doc.AppendChild(div, doc.CreateText(" c"))

	if got := doc.InnerText(div); got != "a b c" {
		t.Fatalf("InnerText = %q, want %q", got, "a b c")
	}
}

func TestDocumentHasUUID(t *testing.T) {
	d1 := NewDocument()
	d2 := NewDocument()
	if d1.ID == d2.ID {
		t.Fatalf("two documents got the same UUID")
	}
}
