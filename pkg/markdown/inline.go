package markdown

import (
	"regexp"
	"strings"
	"unicode"

	"corehost/pkg/dom"
)

// inline node kinds produced while scanning, before being flushed into the
// DOM as Text/Element children of parent.
type inlineKind uint8

const (
	inlineText inlineKind = iota
	inlineDelim
)

type inlineItem struct {
	kind inlineKind
	text string
	ch   byte // '*' or '_'
	run  int  // length of the delimiter run this item starts
	canOpen, canClose bool
	used bool
}

// parseInlinesMultiline joins lines with CommonMark's soft/hard line-break
// rule (two trailing spaces, or a trailing backslash, forces `<br>`) and
// scans the result.
func (p *parser) parseInlinesMultiline(lines []string, parent dom.Ref) {
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(strings.TrimRight(l, " \t"))
		if i != len(lines)-1 {
			if strings.HasSuffix(l, "  ") || strings.HasSuffix(strings.TrimRight(l, " "), "\\") {
				b.WriteString("\x00BR\x00")
			} else {
				b.WriteString("\n")
			}
		}
	}
	p.parseInlines(b.String(), parent)
}

var (
	reLink      = regexp.MustCompile(`^!?\[`)
	reAutolink  = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9+.-]*:[^<>\s]+|[^<>\s@]+@[^<>\s@]+)>`)
	reRawHTML   = regexp.MustCompile(`^<(/?[a-zA-Z][a-zA-Z0-9-]*)((?:\s+[a-zA-Z_:][-a-zA-Z0-9_:.]*(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'=<>`+"`"+`]+))?)*)\s*(/?)>`)
	reEmoji     = regexp.MustCompile(`^:([a-zA-Z0-9_+-]+):`)
)

var emojiTable = map[string]string{
	"smile": "🙂", "grin": "😁", "heart": "❤️", "thumbsup": "👍",
	"rocket": "🚀", "tada": "🎉", "fire": "🔥", "wave": "👋",
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// parseInlines scans text for code spans, links/images, autolinks, raw
// HTML, emoji shortcodes, emphasis-flanking runs of `*`/`_`, hard/soft
// line breaks, and backslash escapes, appending the resulting Text and
// Element children to parent.
func (p *parser) parseInlines(text string, parent dom.Ref) {
	items := p.scanInline(text, parent)
	p.resolveEmphasis(items, parent)
}

// scanInline performs the first pass: everything except emphasis
// resolution is emitted directly into the DOM (non-ambiguous constructs),
// while `*`/`_` runs are recorded as inlineItem delimiters for the second
// pass to pair up.
func (p *parser) scanInline(text string, parent dom.Ref) []inlineItem {
	var items []inlineItem
	var plain strings.Builder
	flushPlain := func() {
		if plain.Len() > 0 {
			items = append(items, inlineItem{kind: inlineText, text: plain.String()})
			plain.Reset()
		}
	}

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		rest := string(runes[i:])

		switch {
		case r == '\x00' && strings.HasPrefix(rest, "\x00BR\x00"):
			flushPlain()
			items = append(items, inlineItem{kind: inlineText, text: "\x00<br>\x00"})
			i += 4
			continue
		case r == '\\' && i+1 < len(runes) && isPunct(runes[i+1]):
			plain.WriteRune(runes[i+1])
			i += 2
			continue
		case r == '\\' && i+1 >= len(runes):
			flushPlain()
			items = append(items, inlineItem{kind: inlineText, text: "\x00<br>\x00"})
			i++
			continue
		case r == '`':
			flushPlain()
			n, consumed := p.scanCodeSpan(runes[i:], parent)
			if consumed > 0 {
				i += consumed
				continue
			}
			_ = n
			plain.WriteRune(r)
			i++
			continue
		case r == ':':
			if m := reEmoji.FindStringSubmatch(rest); m != nil {
				if emoji, ok := emojiTable[m[1]]; ok {
					plain.WriteString(emoji)
					i += len([]rune(m[0]))
					continue
				}
			}
			plain.WriteRune(r)
			i++
			continue
		case r == '<':
			if m := reAutolink.FindStringSubmatch(rest); m != nil {
				flushPlain()
				p.appendAutolink(parent, m[1])
				i += len([]rune(m[0]))
				continue
			}
			if m := reRawHTML.FindStringSubmatch(rest); m != nil {
				flushPlain()
				raw := p.doc.CreateElement("raw-html")
				p.doc.AppendChild(raw, p.doc.CreateText(m[0]))
				p.doc.AppendChild(parent, raw)
				i += len([]rune(m[0]))
				continue
			}
			plain.WriteRune(r)
			i++
			continue
		case r == '[' || (r == '!' && i+1 < len(runes) && runes[i+1] == '['):
			if consumed := p.scanLinkOrImage(runes[i:], parent, &plain, flushPlain); consumed > 0 {
				i += consumed
				continue
			}
			plain.WriteRune(r)
			i++
			continue
		case r == '*' || r == '_':
			flushPlain()
			run := 1
			for i+run < len(runes) && runes[i+run] == r {
				run++
			}
			before := rune(' ')
			if i > 0 {
				before = runes[i-1]
			}
			after := rune(' ')
			if i+run < len(runes) {
				after = runes[i+run]
			}
			canOpen, canClose := flanking(before, after, byte(r), run)
			items = append(items, inlineItem{kind: inlineDelim, ch: byte(r), run: run, canOpen: canOpen, canClose: canClose})
			i += run
			continue
		default:
			plain.WriteRune(r)
			i++
		}
	}
	flushPlain()
	return items
}

// flanking implements a simplified version of CommonMark's left/right
// flanking delimiter run rules: a run is left-flanking if not followed by
// whitespace and (not followed by punctuation, or preceded by
// whitespace/punctuation); right-flanking is the mirror. `_` additionally
// requires the intraword restriction: a `_` run flanked by alphanumerics
// on both sides can neither open nor close.
func flanking(before, after rune, ch byte, run int) (canOpen, canClose bool) {
	leftFlank := !unicode.IsSpace(after) && (!isPunct(after) || unicode.IsSpace(before) || isPunct(before))
	rightFlank := !unicode.IsSpace(before) && (!isPunct(before) || unicode.IsSpace(after) || isPunct(after))
	canOpen = leftFlank
	canClose = rightFlank
	if ch == '_' {
		intraword := !unicode.IsSpace(before) && !isPunct(before) && !unicode.IsSpace(after) && !isPunct(after)
		if intraword {
			canOpen = false
			canClose = false
		}
	}
	return
}

// resolveEmphasis pairs delimiter runs left-to-right (a simplification of
// CommonMark's bracket-matching algorithm, sufficient for the flat,
// non-nested-bracket emphasis this parser's block scanner feeds it) and
// flushes the whole item list into parent as Text/<em>/<strong> children.
func (p *parser) resolveEmphasis(items []inlineItem, parent dom.Ref) {
	for oi := range items {
		if items[oi].kind != inlineDelim || items[oi].used || !items[oi].canOpen {
			continue
		}
		for ci := oi + 1; ci < len(items); ci++ {
			if items[ci].kind != inlineDelim || items[ci].used || items[ci].ch != items[oi].ch || !items[ci].canClose {
				continue
			}
			nested := items[oi].run >= 3 && items[ci].run >= 3
			strong := items[oi].run >= 2 && items[ci].run >= 2
			items[oi].used = true
			items[ci].used = true
			switch {
			case nested:
				// Three or more markers on both sides nest <em> and
				// <strong> rather than collapsing to a single <strong>.
				items[oi].text = emphasisTag(false, true) + emphasisTag(true, true)
				items[ci].text = emphasisTag(true, false) + emphasisTag(false, false)
			default:
				items[oi].text = emphasisTag(strong, true)
				items[ci].text = emphasisTag(strong, false)
			}
			break
		}
	}
	p.flushItems(items, parent)
}

func emphasisTag(strong, open bool) string {
	tag := "em"
	if strong {
		tag = "strong"
	}
	if open {
		return "\x00<" + tag + ">\x00"
	}
	return "\x00</" + tag + ">\x00"
}

// flushItems walks the resolved item list, materializing plain text runs
// and the \x00-wrapped pseudo-tags emphasis/line-break resolution left
// behind, as a simple stack of currently open elements.
func (p *parser) flushItems(items []inlineItem, parent dom.Ref) {
	stack := []dom.Ref{parent}
	top := func() dom.Ref { return stack[len(stack)-1] }
	for _, it := range items {
		switch it.kind {
		case inlineText:
			p.emitPseudoMarked(it.text, &stack)
		case inlineDelim:
			if it.used {
				p.emitPseudoMarked(it.text, &stack)
			} else {
				p.doc.AppendChild(top(), p.doc.CreateText(strings.Repeat(string(it.ch), it.run)))
			}
		}
	}
}

// emitPseudoMarked splits s on the \x00...\x00 pseudo-tag markers left by
// resolveEmphasis and the hard-line-break scan, applying each as a stack
// push/pop/leaf rather than a literal string.
func (p *parser) emitPseudoMarked(s string, stack *[]dom.Ref) {
	for len(s) > 0 {
		idx := strings.IndexByte(s, 0)
		if idx < 0 {
			p.doc.AppendChild((*stack)[len(*stack)-1], p.doc.CreateText(s))
			return
		}
		if idx > 0 {
			p.doc.AppendChild((*stack)[len(*stack)-1], p.doc.CreateText(s[:idx]))
		}
		end := strings.IndexByte(s[idx+1:], 0)
		if end < 0 {
			p.doc.AppendChild((*stack)[len(*stack)-1], p.doc.CreateText(s[idx:]))
			return
		}
		tag := s[idx+1 : idx+1+end]
		s = s[idx+1+end+1:]
		switch {
		case tag == "<br>":
			p.doc.AppendChild((*stack)[len(*stack)-1], p.doc.CreateElement("br"))
		case strings.HasPrefix(tag, "</"):
			if len(*stack) > 1 {
				*stack = (*stack)[:len(*stack)-1]
			}
		case strings.HasPrefix(tag, "<"):
			name := strings.TrimSuffix(strings.TrimPrefix(tag, "<"), ">")
			el := p.doc.CreateElement(name)
			p.doc.AppendChild((*stack)[len(*stack)-1], el)
			*stack = append(*stack, el)
		}
	}
}

// scanCodeSpan consumes a run of backticks and the matching closing run,
// appending a <code> element; returns (0, 0) if no closing run exists (the
// backtick is then treated as literal text by the caller).
func (p *parser) scanCodeSpan(runes []rune, parent dom.Ref) (int, int) {
	n := 0
	for n < len(runes) && runes[n] == '`' {
		n++
	}
	opener := string(runes[:n])
	rest := string(runes[n:])
	closeIdx := strings.Index(rest, opener)
	for closeIdx >= 0 {
		// make sure the closing run isn't longer (part of a longer run)
		after := closeIdx + len(opener)
		if after < len(rest) && rest[after] == '`' {
			next := strings.Index(rest[after:], opener)
			if next < 0 {
				return 0, 0
			}
			closeIdx = after + next
			continue
		}
		break
	}
	if closeIdx < 0 {
		return 0, 0
	}
	content := rest[:closeIdx]
	content = strings.ReplaceAll(content, "\n", " ")
	if strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.TrimSpace(content) != "" {
		content = content[1 : len(content)-1]
	}
	code := p.doc.CreateElement("code")
	p.doc.AppendChild(code, p.doc.CreateText(content))
	p.doc.AppendChild(parent, code)
	consumed := len([]rune(opener)) + len([]rune(rest[:closeIdx])) + len([]rune(opener))
	return 0, consumed
}

func (p *parser) appendAutolink(parent dom.Ref, target string) {
	a := p.doc.CreateElement("a")
	href := target
	if strings.Contains(target, "@") && !strings.Contains(target, ":") {
		href = "mailto:" + target
	}
	p.doc.SetAttr(a, "href", href)
	p.doc.AppendChild(a, p.doc.CreateText(target))
	p.doc.AppendChild(parent, a)
}

// scanLinkOrImage consumes `[text](dest "title")` or `![alt](src)`
// starting at runes[0], appending the resulting <a>/<img> to parent.
// Returns the number of runes consumed, or 0 if runes does not form a
// well-formed link/image (the caller then treats the leading bracket as
// literal text).
func (p *parser) scanLinkOrImage(runes []rune, parent dom.Ref, plain *strings.Builder, flushPlain func()) int {
	isImage := runes[0] == '!'
	start := 0
	if isImage {
		start = 1
	}
	if start >= len(runes) || runes[start] != '[' {
		return 0
	}
	depth := 1
	j := start + 1
	for j < len(runes) && depth > 0 {
		switch runes[j] {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 {
			break
		}
		j++
	}
	if depth != 0 {
		return 0
	}
	text := string(runes[start+1 : j])
	j++ // skip ']'
	if j >= len(runes) || runes[j] != '(' {
		return 0
	}
	j++
	parenDepth := 1
	destStart := j
	for j < len(runes) && parenDepth > 0 {
		switch runes[j] {
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		}
		if parenDepth == 0 {
			break
		}
		j++
	}
	if parenDepth != 0 {
		return 0
	}
	inner := strings.TrimSpace(string(runes[destStart:j]))
	dest, title := splitDestTitle(inner)
	j++ // skip ')'

	flushPlain()
	if isImage {
		img := p.doc.CreateElement("img")
		p.doc.SetAttr(img, "src", dest)
		p.doc.SetAttr(img, "alt", text)
		if title != "" {
			p.doc.SetAttr(img, "title", title)
		}
		p.doc.AppendChild(parent, img)
	} else {
		a := p.doc.CreateElement("a")
		p.doc.SetAttr(a, "href", dest)
		if title != "" {
			p.doc.SetAttr(a, "title", title)
		}
		p.parseInlines(text, a)
		p.doc.AppendChild(parent, a)
	}
	return j
}

func splitDestTitle(s string) (dest, title string) {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, " \t"); idx >= 0 {
		dest = s[:idx]
		rest := strings.TrimSpace(s[idx+1:])
		rest = strings.Trim(rest, `"'`)
		return dest, rest
	}
	return s, ""
}
