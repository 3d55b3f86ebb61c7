package main

import (
	"testing"

	"corehost/pkg/dom"
	"corehost/pkg/htmltree"
	"corehost/pkg/layout"
	"corehost/pkg/logsink"
)

func findTag(doc *dom.Document, tag string) dom.Ref {
	var found dom.Ref
	var walk func(r dom.Ref)
	walk = func(r dom.Ref) {
		if !found.IsZero() {
			return
		}
		if doc.IsElement(r) && doc.TagNameString(r) == tag {
			found = r
			return
		}
		for c := doc.FirstChild(r); !c.IsZero(); c = doc.NextSibling(c) {
			walk(c)
		}
	}
	if root := doc.Root(); !root.IsZero() {
		walk(root)
	}
	return found
}

func TestParseDocumentDispatchesByExtension(t *testing.T) {
	doc := parseDocument("notes.md", "# hi\n\npara", logsink.Nop)
	if doc.Root().IsZero() {
		t.Fatal("expected a document root from markdown input")
	}
	if findTag(doc, "body").IsZero() {
		t.Fatal("expected markdown.Parse's synthetic <body> root")
	}

	htmlDoc := parseDocument("page.html", "<html><body><p>hi</p></body></html>", logsink.Nop)
	if findTag(htmlDoc, "body").IsZero() {
		t.Fatal("expected an HTML document's <body>")
	}
}

func TestParseDocumentDefaultsToHTMLForUnknownExtension(t *testing.T) {
	doc := parseDocument("https://example.com/page", "<p>hello</p>", logsink.Nop)
	if doc.Root().IsZero() {
		t.Fatal("expected a parsed document for a URL with no file extension")
	}
}

func TestCollectStylesheetsReadsInlineStyleElements(t *testing.T) {
	doc := htmltree.Run(`<html><head><style>p { color: red; }</style></head><body><p>hi</p></body></html>`, logsink.Nop)
	sheets := collectStylesheets(doc, nil, logsink.Nop)
	if len(sheets) != 1 {
		t.Fatalf("expected one stylesheet from the inline <style>, got %d", len(sheets))
	}
}

func TestCollectStylesheetsSkipsNonStylesheetLinks(t *testing.T) {
	doc := htmltree.Run(`<html><head><link rel="icon" href="favicon.ico"></head><body></body></html>`, logsink.Nop)
	sheets := collectStylesheets(doc, nil, logsink.Nop)
	if len(sheets) != 0 {
		t.Fatalf("expected no stylesheets from a non-stylesheet <link>, got %d", len(sheets))
	}
}

type fakeFonts struct{}

func (fakeFonts) Advance(text string, fontSize float64, family string, bold, italic bool) float64 {
	return float64(len([]rune(text))) * fontSize * 0.6
}

func (fakeFonts) Metrics(fontSize float64, family string) (ascender, descender float64) {
	return fontSize * 0.8, fontSize * 0.2
}

func TestCountViewsMatchesTreeSize(t *testing.T) {
	doc := htmltree.Run(`<div><p>a</p><p>b</p></div>`, logsink.Nop)
	eng := &layout.Engine{Fonts: fakeFonts{}}
	tree := eng.Build(doc, nil, layout.Viewport{Width: 400, Height: 400, PixelRatio: 1})
	if got := countViews(tree); got < 4 {
		t.Fatalf("countViews = %d, want at least 4 (html/body/div/2p/2text)", got)
	}
}
