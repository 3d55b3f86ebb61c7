package markdown

import (
	"strings"
	"testing"

	"corehost/pkg/dom"
	"corehost/pkg/logsink"
)

func findAll(doc *dom.Document, root dom.Ref, tag string) []dom.Ref {
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

func first(doc *dom.Document, root dom.Ref, tag string) (dom.Ref, bool) {
	all := findAll(doc, root, tag)
	if len(all) == 0 {
		return dom.Ref{}, false
	}
	return all[0], true
}

func TestATXHeadingAndParagraph(t *testing.T) {
	doc := Parse("# Title\n\nSome paragraph text.\n", logsink.Nop)
	root := doc.Root()
	h1, ok := first(doc, root, "h1")
	if !ok {
		t.Fatalf("no h1 found; dump=%s", doc.Dump(root))
	}
	if got := doc.InnerText(h1); got != "Title" {
		t.Fatalf("h1 text = %q, want %q", got, "Title")
	}
	p, ok := first(doc, root, "p")
	if !ok {
		t.Fatalf("no p found")
	}
	if got := doc.InnerText(p); got != "Some paragraph text." {
		t.Fatalf("p text = %q", got)
	}
}

func TestSetextHeadingPromotion(t *testing.T) {
	doc := Parse("Title Here\n==========\n", logsink.Nop)
	root := doc.Root()
	h1, ok := first(doc, root, "h1")
	if !ok {
		t.Fatalf("setext h1 not produced; dump=%s", doc.Dump(root))
	}
	if got := doc.InnerText(h1); got != "Title Here" {
		t.Fatalf("h1 text = %q", got)
	}
}

func TestFencedCodeBlockPreservesLiteralText(t *testing.T) {
	doc := Parse("```go\nfmt.Println(\"hi\")\n```\n", logsink.Nop)
	root := doc.Root()
	code, ok := first(doc, root, "code")
	if !ok {
		t.Fatalf("no code block found")
	}
	if !strings.Contains(doc.InnerText(code), `fmt.Println("hi")`) {
		t.Fatalf("code text = %q", doc.InnerText(code))
	}
	if lang, _ := doc.GetAttr(code, "data-language"); lang != "go" {
		t.Fatalf("data-language = %q, want go", lang)
	}
}

func TestBlockquoteNesting(t *testing.T) {
	doc := Parse("> quoted line one\n> quoted line two\n", logsink.Nop)
	root := doc.Root()
	bq, ok := first(doc, root, "blockquote")
	if !ok {
		t.Fatalf("no blockquote found; dump=%s", doc.Dump(root))
	}
	p, ok := first(doc, bq, "p")
	if !ok {
		t.Fatalf("blockquote has no paragraph child")
	}
	if got := doc.InnerText(p); got != "quoted line one\nquoted line two" {
		t.Fatalf("blockquote text = %q", got)
	}
}

func TestUnorderedListItems(t *testing.T) {
	doc := Parse("- one\n- two\n- three\n", logsink.Nop)
	root := doc.Root()
	ul, ok := first(doc, root, "ul")
	if !ok {
		t.Fatalf("no ul found")
	}
	items := findAll(doc, ul, "li")
	if len(items) != 3 {
		t.Fatalf("expected 3 list items, got %d", len(items))
	}
	if got := doc.InnerText(items[1]); got != "two" {
		t.Fatalf("second item text = %q", got)
	}
}

func TestOrderedListStartAttribute(t *testing.T) {
	doc := Parse("3. third\n4. fourth\n", logsink.Nop)
	root := doc.Root()
	ol, ok := first(doc, root, "ol")
	if !ok {
		t.Fatalf("no ol found")
	}
	if start, _ := doc.GetAttr(ol, "start"); start != "3" {
		t.Fatalf("start = %q, want 3", start)
	}
}

func TestTableWithAlignment(t *testing.T) {
	doc := Parse("a|b\n:--|--:\n1|2\n", logsink.Nop)
	root := doc.Root()
	table, ok := first(doc, root, "table")
	if !ok {
		t.Fatalf("no table found; dump=%s", doc.Dump(root))
	}
	ths := findAll(doc, table, "th")
	if len(ths) != 2 {
		t.Fatalf("expected 2 header cells, got %d", len(ths))
	}
	if align, _ := doc.GetAttr(ths[0], "align"); align != "left" {
		t.Fatalf("first column align = %q, want left", align)
	}
	if align, _ := doc.GetAttr(ths[1], "align"); align != "right" {
		t.Fatalf("second column align = %q, want right", align)
	}
}

func TestThematicBreakNotConfusedWithSetext(t *testing.T) {
	doc := Parse("para one\n\n---\n\npara two\n", logsink.Nop)
	root := doc.Root()
	hrs := findAll(doc, root, "hr")
	if len(hrs) != 1 {
		t.Fatalf("expected exactly 1 hr, got %d; dump=%s", len(hrs), doc.Dump(root))
	}
	ps := findAll(doc, root, "p")
	if len(ps) != 2 {
		t.Fatalf("expected 2 paragraphs around the break, got %d", len(ps))
	}
}

func TestInlineEmphasisFlankingScenario(t *testing.T) {
	doc := Parse("foo_bar_baz  *a*b*c*\n", logsink.Nop)
	root := doc.Root()
	p, ok := first(doc, root, "p")
	if !ok {
		t.Fatalf("no p found; dump=%s", doc.Dump(root))
	}
	if got := doc.InnerText(p); got != "foo_bar_baz  abc" {
		t.Fatalf("InnerText = %q, want %q; dump=%s", got, "foo_bar_baz  abc", doc.Dump(root))
	}
	ems := findAll(doc, p, "em")
	if len(ems) != 2 {
		t.Fatalf("expected 2 <em> (around 'a' and 'c'), got %d; dump=%s", len(ems), doc.Dump(root))
	}
	if got := doc.InnerText(ems[0]); got != "a" {
		t.Fatalf("first em text = %q, want %q", got, "a")
	}
	if got := doc.InnerText(ems[1]); got != "c" {
		t.Fatalf("second em text = %q, want %q", got, "c")
	}
}

func TestInlineTripleEmphasisNestsEmAndStrong(t *testing.T) {
	doc := Parse("***x***\n", logsink.Nop)
	root := doc.Root()
	p, ok := first(doc, root, "p")
	if !ok {
		t.Fatalf("no p found; dump=%s", doc.Dump(root))
	}
	em, ok := first(doc, p, "em")
	if !ok {
		t.Fatalf("expected an <em> wrapping a nested <strong>; dump=%s", doc.Dump(root))
	}
	strong, ok := first(doc, em, "strong")
	if !ok {
		t.Fatalf("expected <strong> nested inside <em>, got dump=%s", doc.Dump(root))
	}
	if got := doc.InnerText(strong); got != "x" {
		t.Fatalf("nested strong text = %q, want %q", got, "x")
	}
	if got := doc.InnerText(p); got != "x" {
		t.Fatalf("InnerText = %q, want %q; dump=%s", got, "x", doc.Dump(root))
	}
}

func TestInlineCodeSpan(t *testing.T) {
	doc := Parse("use `fmt.Println` to print\n", logsink.Nop)
	root := doc.Root()
	code, ok := first(doc, root, "code")
	if !ok {
		t.Fatalf("no code span found; dump=%s", doc.Dump(root))
	}
	if got := doc.InnerText(code); got != "fmt.Println" {
		t.Fatalf("code text = %q", got)
	}
}

func TestInlineLinkAndImage(t *testing.T) {
	doc := Parse("see [the site](https://example.com \"Title\") and ![alt text](pic.png)\n", logsink.Nop)
	root := doc.Root()
	a, ok := first(doc, root, "a")
	if !ok {
		t.Fatalf("no <a> found; dump=%s", doc.Dump(root))
	}
	if href, _ := doc.GetAttr(a, "href"); href != "https://example.com" {
		t.Fatalf("href = %q", href)
	}
	if title, _ := doc.GetAttr(a, "title"); title != "Title" {
		t.Fatalf("title = %q", title)
	}
	if got := doc.InnerText(a); got != "the site" {
		t.Fatalf("link text = %q", got)
	}
	img, ok := first(doc, root, "img")
	if !ok {
		t.Fatalf("no <img> found")
	}
	if src, _ := doc.GetAttr(img, "src"); src != "pic.png" {
		t.Fatalf("src = %q", src)
	}
	if alt, _ := doc.GetAttr(img, "alt"); alt != "alt text" {
		t.Fatalf("alt = %q", alt)
	}
}

func TestInlineAutolink(t *testing.T) {
	doc := Parse("contact <user@example.com> now\n", logsink.Nop)
	root := doc.Root()
	a, ok := first(doc, root, "a")
	if !ok {
		t.Fatalf("no autolink found; dump=%s", doc.Dump(root))
	}
	if href, _ := doc.GetAttr(a, "href"); href != "mailto:user@example.com" {
		t.Fatalf("href = %q", href)
	}
}

func TestHardLineBreak(t *testing.T) {
	doc := Parse("line one  \nline two\n", logsink.Nop)
	root := doc.Root()
	p, ok := first(doc, root, "p")
	if !ok {
		t.Fatalf("no p found")
	}
	if brs := findAll(doc, p, "br"); len(brs) != 1 {
		t.Fatalf("expected 1 <br> for hard line break, got %d; dump=%s", len(brs), doc.Dump(root))
	}
}

func TestBackslashEscape(t *testing.T) {
	doc := Parse("a \\* literal star\n", logsink.Nop)
	root := doc.Root()
	p, _ := first(doc, root, "p")
	if got := doc.InnerText(p); got != "a * literal star" {
		t.Fatalf("InnerText = %q, want %q", got, "a * literal star")
	}
	if ems := findAll(doc, p, "em"); len(ems) != 0 {
		t.Fatalf("escaped star should not open emphasis, got %d em", len(ems))
	}
}

func TestEmojiShortcode(t *testing.T) {
	doc := Parse("nice :rocket: launch\n", logsink.Nop)
	root := doc.Root()
	p, _ := first(doc, root, "p")
	if got := doc.InnerText(p); !strings.Contains(got, "🚀") {
		t.Fatalf("expected emoji substitution, got %q", got)
	}
}
