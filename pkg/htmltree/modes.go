package htmltree

import (
	"corehost/pkg/dom"
	"corehost/pkg/htmltok"
)

func isAllWhitespace(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
		default:
			return false
		}
	}
	return true
}

// --- initial ---

func (b *Builder) inInitial(tok htmltok.Token) {
	switch tok.Kind {
	case htmltok.TokenCharacter:
		if isAllWhitespace(tok.Chars) {
			return
		}
		b.switchToBeforeHTML(tok)
	case htmltok.TokenComment:
		b.insertComment(tok)
	case htmltok.TokenDoctype:
		b.doc.SetQuirksMode(quirksFromDoctype(tok))
		b.doc.CreateDoctype(tok.DoctypeName, tok.DoctypePublicID, tok.DoctypeSystemID)
		b.m = modeBeforeHTML
	default:
		b.switchToBeforeHTML(tok)
	}
}

// quirksFromDoctype decides the document's quirks mode from the doctype
// token per a conservative subset of the WHATWG "quirks mode" table:
// force-quirks or any non-"html" name triggers full quirks mode; a present
// but otherwise plain `<!DOCTYPE html>` is no-quirks.
func quirksFromDoctype(tok htmltok.Token) dom.QuirksMode {
	if tok.ForceQuirks {
		return dom.Quirks
	}
	if tok.DoctypeName != "html" {
		return dom.Quirks
	}
	if tok.HasPublicID || tok.HasSystemID {
		return dom.LimitedQuirks
	}
	return dom.NoQuirks
}

func (b *Builder) switchToBeforeHTML(tok htmltok.Token) {
	b.m = modeBeforeHTML
	b.inBeforeHTML(tok)
}

// --- before html ---

func (b *Builder) inBeforeHTML(tok htmltok.Token) {
	switch tok.Kind {
	case htmltok.TokenCharacter:
		if isAllWhitespace(tok.Chars) {
			return
		}
		b.createImplicitHTML()
		b.inBeforeHead(tok)
	case htmltok.TokenComment:
		b.insertComment(tok)
	case htmltok.TokenStartTag:
		if tok.TagName == "html" {
			el := b.insertHTMLElement(tok)
			b.doc.SetRoot(el)
			b.m = modeBeforeHead
			return
		}
		b.createImplicitHTML()
		b.inBeforeHead(tok)
	case htmltok.TokenEOF:
		b.createImplicitHTML()
		b.inBeforeHead(tok)
	default:
		b.createImplicitHTML()
		b.inBeforeHead(tok)
	}
}

func (b *Builder) createImplicitHTML() {
	el := b.doc.CreateElement("html")
	b.doc.SetRoot(el)
	b.push(el)
	b.m = modeBeforeHead
}

// --- before head ---

func (b *Builder) inBeforeHead(tok htmltok.Token) {
	switch tok.Kind {
	case htmltok.TokenCharacter:
		if isAllWhitespace(tok.Chars) {
			return
		}
		b.insertImplicitHead()
		b.inHead(tok)
	case htmltok.TokenComment:
		b.insertComment(tok)
	case htmltok.TokenDoctype:
		b.errf("unexpected-doctype")
	case htmltok.TokenStartTag:
		switch tok.TagName {
		case "html":
			b.inBody(tok)
		case "head":
			el := b.insertHTMLElement(tok)
			b.headRef = el
			b.m = modeInHead
		default:
			b.insertImplicitHead()
			b.inHead(tok)
		}
	case htmltok.TokenEndTag:
		switch tok.TagName {
		case "head", "body", "html", "br":
			b.insertImplicitHead()
			b.inHead(tok)
		default:
			b.errf("end-tag-before-head-ignored")
		}
	case htmltok.TokenEOF:
		b.insertImplicitHead()
		b.inHead(tok)
	}
}

func (b *Builder) insertImplicitHead() {
	el := b.doc.CreateElement("head")
	b.doc.AppendChild(b.currentNode(), el)
	b.push(el)
	b.headRef = el
	b.m = modeInHead
}

// --- in head ---

var headRawTextElements = map[string]bool{"title": true, "style": true, "script": true, "noscript": true}

func (b *Builder) inHead(tok htmltok.Token) {
	switch tok.Kind {
	case htmltok.TokenCharacter:
		trimmed := splitLeadingWhitespace(tok.Chars)
		if trimmed.ws != "" {
			b.insertCharacter(b.currentNode(), trimmed.ws)
		}
		if trimmed.rest == "" {
			return
		}
		b.popHeadAndContinue(htmltok.Token{Kind: htmltok.TokenCharacter, Chars: trimmed.rest})
	case htmltok.TokenComment:
		b.insertComment(tok)
	case htmltok.TokenDoctype:
		b.errf("unexpected-doctype")
	case htmltok.TokenStartTag:
		switch tok.TagName {
		case "html":
			b.inBody(tok)
		case "base", "basefont", "bgsound", "link", "meta":
			b.insertHTMLElement(tok)
			b.pop()
		case "title", "style", "script", "noscript":
			b.insertHTMLElement(tok)
			b.originalMode = b.m
			b.m = modeText
		case "head":
			b.errf("duplicate-head-ignored")
		default:
			b.popHeadAndContinue(tok)
		}
	case htmltok.TokenEndTag:
		switch tok.TagName {
		case "head":
			b.pop()
			b.m = modeAfterHead
		case "body", "html", "br":
			b.popHeadAndContinue(tok)
		default:
			b.errf("unexpected-end-tag-in-head")
		}
	case htmltok.TokenEOF:
		b.popHeadAndContinue(tok)
	}
}

type wsSplit struct{ ws, rest string }

func splitLeadingWhitespace(s string) wsSplit {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\f' || c == '\r' {
			i++
			continue
		}
		break
	}
	return wsSplit{ws: s[:i], rest: s[i:]}
}

func (b *Builder) popHeadAndContinue(tok htmltok.Token) {
	if b.currentTag() == "head" {
		b.pop()
	}
	b.m = modeAfterHead
	b.inAfterHead(tok)
}

// --- after head ---

func (b *Builder) inAfterHead(tok htmltok.Token) {
	switch tok.Kind {
	case htmltok.TokenCharacter:
		split := splitLeadingWhitespace(tok.Chars)
		if split.ws != "" {
			b.insertCharacter(b.currentNode(), split.ws)
		}
		if split.rest == "" {
			return
		}
		b.startBodyAndContinue(htmltok.Token{Kind: htmltok.TokenCharacter, Chars: split.rest})
	case htmltok.TokenComment:
		b.insertComment(tok)
	case htmltok.TokenDoctype:
		b.errf("unexpected-doctype")
	case htmltok.TokenStartTag:
		switch tok.TagName {
		case "html":
			b.inBody(tok)
		case "body":
			b.insertHTMLElement(tok)
			b.framesetOK = false
			b.m = modeInBody
		case "head":
			b.errf("unexpected-head-after-head")
		default:
			b.startBodyAndContinue(tok)
		}
	case htmltok.TokenEndTag:
		switch tok.TagName {
		case "body", "html", "br":
			b.startBodyAndContinue(tok)
		default:
			b.errf("unexpected-end-tag-after-head")
		}
	case htmltok.TokenEOF:
		b.startBodyAndContinue(tok)
	}
}

func (b *Builder) startBodyAndContinue(tok htmltok.Token) {
	el := b.doc.CreateElement("body")
	b.doc.AppendChild(b.currentNode(), el)
	b.push(el)
	b.m = modeInBody
	b.inBody(tok)
}

// --- in body ---

func (b *Builder) inBody(tok htmltok.Token) {
	switch tok.Kind {
	case htmltok.TokenCharacter:
		b.reconstructActiveFormattingElements()
		b.insertCharacter(b.currentNode(), tok.Chars)
		if !isAllWhitespace(tok.Chars) {
			b.framesetOK = false
		}
	case htmltok.TokenComment:
		b.insertComment(tok)
	case htmltok.TokenDoctype:
		b.errf("unexpected-doctype")
	case htmltok.TokenStartTag:
		b.inBodyStartTag(tok)
	case htmltok.TokenEndTag:
		b.inBodyEndTag(tok)
	case htmltok.TokenEOF:
		b.m = modeAfterBody // conceptually "stop parsing"; flush happens in run()
	}
}

func (b *Builder) inBodyStartTag(tok htmltok.Token) {
	switch tok.TagName {
	case "html":
		for _, a := range tok.Attrs {
			b.doc.AddAttrIfAbsent(b.doc.Root(), a.Name, a.Value)
		}
	case "br", "area", "embed", "img", "keygen", "wbr", "input", "hr":
		b.reconstructActiveFormattingElements()
		b.insertHTMLElement(tok)
		b.pop()
		b.framesetOK = false
	case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
		b.insertHTMLElement(tok)
		b.pop()
	default:
		if closesP[tok.TagName] && b.hasElementInButtonScope("p") {
			b.closeP()
		}
		if formattingTags[tok.TagName] {
			b.reconstructActiveFormattingElements()
			el := b.insertHTMLElement(tok)
			b.pushActiveFormattingElement(el, tok)
			return
		}
		if tok.TagName == "li" {
			b.closeLiIfOpen()
		}
		if tok.TagName == "a" {
			// an open <a> must be closed (adoption agency) before a new one starts.
			if b.hasActiveFormattingTag("a") {
				b.adoptionAgency("a")
			}
		}
		b.reconstructActiveFormattingElements()
		b.insertHTMLElement(tok)
		if voidElements[tok.TagName] {
			b.pop()
		}
	}
}

func (b *Builder) hasActiveFormattingTag(tag string) bool {
	for i := len(b.afe) - 1; i >= 0; i-- {
		if b.afe[i].IsMarker {
			return false
		}
		if b.afe[i].Tok.TagName == tag {
			return true
		}
	}
	return false
}

func (b *Builder) closeP() {
	b.generateImpliedEndTags("p")
	if b.currentTag() != "p" {
		b.errf("unclosed-p-element")
	}
	b.popUntilTag("p")
}

func (b *Builder) closeLiIfOpen() {
	if !b.hasElementInListItemScope("li") {
		return
	}
	b.generateImpliedEndTags("li")
	if b.currentTag() != "li" {
		b.errf("unclosed-li-element")
	}
	b.popUntilTag("li")
}

func (b *Builder) inBodyEndTag(tok htmltok.Token) {
	switch tok.TagName {
	case "body":
		if !b.hasElementInScope("body") {
			b.errf("end-body-without-open-body")
			return
		}
		b.m = modeAfterBody
	case "html":
		if !b.hasElementInScope("body") {
			b.errf("end-html-without-open-body")
			return
		}
		b.m = modeAfterBody
		b.inAfterBody(tok)
	case "p":
		if !b.hasElementInButtonScope("p") {
			b.errf("end-p-without-open-p")
			b.insertHTMLElement(htmltok.Token{Kind: htmltok.TokenStartTag, TagName: "p"})
		}
		b.closeP()
	case "li":
		if !b.hasElementInListItemScope("li") {
			b.errf("end-li-without-open-li")
			return
		}
		b.generateImpliedEndTags("li")
		b.popUntilTag("li")
	default:
		if formattingTags[tok.TagName] {
			b.adoptionAgency(tok.TagName)
			return
		}
		b.anyOtherEndTag(tok.TagName)
	}
}

// --- text ---

func (b *Builder) inText(tok htmltok.Token) {
	switch tok.Kind {
	case htmltok.TokenCharacter:
		b.insertCharacter(b.currentNode(), tok.Chars)
	case htmltok.TokenEndTag:
		b.pop()
		b.m = b.originalMode
	case htmltok.TokenEOF:
		b.errf("eof-in-text-mode")
		b.pop()
		b.m = b.originalMode
		b.dispatch(tok)
	}
}

// --- after body ---

func (b *Builder) inAfterBody(tok htmltok.Token) {
	switch tok.Kind {
	case htmltok.TokenCharacter:
		if isAllWhitespace(tok.Chars) {
			b.reconstructActiveFormattingElements()
			b.insertCharacter(b.currentNode(), tok.Chars)
			return
		}
		b.errf("unexpected-character-after-body")
		b.m = modeInBody
		b.inBody(tok)
	case htmltok.TokenComment:
		b.doc.AppendChild(b.doc.Root(), b.doc.CreateComment(tok.CommentData))
	case htmltok.TokenDoctype:
		b.errf("unexpected-doctype-after-body")
	case htmltok.TokenStartTag:
		if tok.TagName == "html" {
			b.inBody(tok)
			return
		}
		b.errf("unexpected-start-tag-after-body")
		b.m = modeInBody
		b.inBody(tok)
	case htmltok.TokenEndTag:
		if tok.TagName == "html" {
			b.m = modeAfterAfterBody
			return
		}
		b.errf("unexpected-end-tag-after-body")
		b.m = modeInBody
		b.inBody(tok)
	case htmltok.TokenEOF:
		// done
	}
}
