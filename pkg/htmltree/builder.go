package htmltree

import (
	"strings"

	"go.uber.org/zap"

	"corehost/pkg/dom"
	"corehost/pkg/htmltok"
	"corehost/pkg/logsink"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// closesP lists elements whose start tag implicitly closes an open <p> in
// button scope, per §4.3's "close previous p" rule.
var closesP = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"details": true, "div": true, "dl": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "main": true, "menu": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"ul": true, "center": true, "dd": true, "dt": true, "li": true,
	"listing": true, "search": true,
}

// formattingTags are the elements tracked in the active formatting list.
var formattingTags = map[string]bool{
	"a": true, "b": true, "big": true, "code": true, "em": true, "font": true,
	"i": true, "nobr": true, "s": true, "small": true, "strike": true,
	"strong": true, "tt": true, "u": true,
}

// Builder drives a dom.Document through tokens pulled from a
// *htmltok.Tokenizer.
type Builder struct {
	doc *dom.Document
	tok *htmltok.Tokenizer
	sink logsink.Sink

	m            mode
	originalMode mode

	openElements []dom.Ref
	afe          []afeEntry // active formatting elements, markers interleaved
	templateModes []mode

	headRef dom.Ref
	formRef dom.Ref

	framesetOK bool

	pendingParent dom.Ref
	pendingText   strings.Builder
}

// New constructs a Builder that will populate doc from the tokens tok
// yields. sink receives parse-error diagnostics.
func New(doc *dom.Document, tok *htmltok.Tokenizer, sink logsink.Sink) *Builder {
	if sink == nil {
		sink = logsink.Nop
	}
	return &Builder{doc: doc, tok: tok, sink: sink, m: modeInitial, framesetOK: true}
}

// Run drives the tokenizer to EOF, building the Document tree, and returns
// the finished Document.
func Run(src string, sink logsink.Sink) *dom.Document {
	doc := dom.NewDocument()
	tk := htmltok.New(src, sink)
	b := New(doc, tk, sink)
	b.run()
	return doc
}

func (b *Builder) errf(msg string) {
	b.sink.Log(logsink.LevelParseError, "tree-builder", msg, zap.String("mode", modeName(b.m)))
}

func (b *Builder) run() {
	for {
		tok := b.tok.NextToken()
		b.dispatch(tok)
		if tok.Kind == htmltok.TokenEOF {
			break
		}
	}
	b.flushPendingText()
}

func (b *Builder) dispatch(tok htmltok.Token) {
	m := b.m
	if !m.fullyImplemented() {
		b.errf("unsupported-insertion-mode-fallback")
		m = modeInBody
	}
	switch m {
	case modeInitial:
		b.inInitial(tok)
	case modeBeforeHTML:
		b.inBeforeHTML(tok)
	case modeBeforeHead:
		b.inBeforeHead(tok)
	case modeInHead:
		b.inHead(tok)
	case modeAfterHead:
		b.inAfterHead(tok)
	case modeInBody:
		b.inBody(tok)
	case modeText:
		b.inText(tok)
	case modeAfterBody:
		b.inAfterBody(tok)
	}
}

// --- open elements stack ---

func (b *Builder) currentNode() dom.Ref {
	if len(b.openElements) == 0 {
		return dom.Ref{}
	}
	return b.openElements[len(b.openElements)-1]
}

func (b *Builder) push(r dom.Ref) { b.openElements = append(b.openElements, r) }

func (b *Builder) pop() dom.Ref {
	if len(b.openElements) == 0 {
		return dom.Ref{}
	}
	top := b.openElements[len(b.openElements)-1]
	b.openElements = b.openElements[:len(b.openElements)-1]
	return top
}

func (b *Builder) currentTag() string {
	cur := b.currentNode()
	if cur.IsZero() {
		return ""
	}
	return b.doc.TagNameString(cur)
}

func (b *Builder) popUntilTag(tag string) {
	for len(b.openElements) > 0 {
		top := b.pop()
		if b.doc.TagNameString(top) == tag {
			return
		}
	}
}

// --- pending text buffer (§4.3) ---

func (b *Builder) flushPendingText() {
	if b.pendingText.Len() == 0 {
		return
	}
	txt := b.doc.CreateText(b.pendingText.String())
	b.doc.AppendChild(b.pendingParent, txt)
	b.pendingText.Reset()
	b.pendingParent = dom.Ref{}
}

func (b *Builder) insertCharacter(parent dom.Ref, s string) {
	if !b.pendingParent.IsZero() && b.pendingParent != parent {
		b.flushPendingText()
	}
	b.pendingParent = parent
	b.pendingText.WriteString(s)
}

// --- element/comment/text insertion ---

func (b *Builder) currentInsertionParent() dom.Ref {
	return b.currentNode()
}

func (b *Builder) insertHTMLElement(tok htmltok.Token) dom.Ref {
	b.flushPendingText()
	el := b.doc.CreateElement(tok.TagName)
	for _, a := range tok.Attrs {
		b.doc.AddAttrIfAbsent(el, a.Name, a.Value)
	}
	if tok.SelfClosing || voidElements[tok.TagName] {
		b.doc.SetSelfClosing(el, true)
	}
	parent := b.currentInsertionParent()
	if parent.IsZero() {
		b.doc.SetRoot(el)
	} else {
		b.doc.AppendChild(parent, el)
	}
	b.push(el)
	return el
}

func (b *Builder) insertComment(tok htmltok.Token) {
	b.flushPendingText()
	c := b.doc.CreateComment(tok.CommentData)
	parent := b.currentInsertionParent()
	if parent.IsZero() {
		parent = b.doc.Root()
	}
	b.doc.AppendChild(parent, c)
}

func modeName(m mode) string {
	names := [...]string{
		"initial", "before-html", "before-head", "in-head", "in-head-noscript",
		"after-head", "in-body", "text", "in-table", "in-table-text",
		"in-caption", "in-column-group", "in-table-body", "in-row", "in-cell",
		"in-select", "in-select-in-table", "in-template", "after-body",
		"in-frameset", "after-frameset", "after-after-body", "after-after-frameset",
	}
	if int(m) < len(names) {
		return names[m]
	}
	return "unknown"
}
