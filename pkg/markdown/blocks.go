// Package markdown converts a CommonMark subset directly into a dom.Document,
// sharing the same Element/Text/Comment shape the HTML tokenizer/tree
// builder produce (pkg/htmltree), so the layout engine can consume either
// origin uninterestingly.
package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"corehost/pkg/dom"
	"corehost/pkg/logsink"
)

// Parse converts src into a fresh dom.Document whose root element is a
// synthetic <body> (there is no head/metadata concept in Markdown input).
func Parse(src string, sink logsink.Sink) *dom.Document {
	if sink == nil {
		sink = logsink.Nop
	}
	doc := dom.NewDocument()
	body := doc.CreateElement("body")
	doc.SetRoot(body)
	p := &parser{doc: doc, sink: sink}
	lines := splitLines(src)
	p.parseBlocks(lines, body, 0)
	return doc
}

type parser struct {
	doc  *dom.Document
	sink logsink.Sink
}

func (p *parser) errf(msg string) {
	p.sink.Log(logsink.LevelParseError, "markdown", msg, zap.String("origin", "block-parser"))
}

func splitLines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return strings.Split(src, "\n")
}

var (
	reATXHeading    = regexp.MustCompile(`^(#{1,6})(?:\s+(.*?))?\s*#*\s*$`)
	reThematicBreak = regexp.MustCompile(`^ {0,3}((?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	reFenceBacktick = regexp.MustCompile("^ {0,3}(`{3,})[ \t]*([^`]*)$")
	reFenceTilde    = regexp.MustCompile(`^ {0,3}(~{3,})[ \t]*(.*)$`)
	reBlockquote    = regexp.MustCompile(`^ {0,3}> ?(.*)$`)
	reUnorderedItem = regexp.MustCompile(`^( {0,3})([-*+])(?:[ \t]+(.*))?$`)
	reOrderedItem   = regexp.MustCompile(`^( {0,3})(\d{1,9})([.)])(?:[ \t]+(.*))?$`)
	reSetextH1      = regexp.MustCompile(`^ {0,3}=+\s*$`)
	reSetextH2      = regexp.MustCompile(`^ {0,3}-+\s*$`)
	reTableSep      = regexp.MustCompile(`^\s*:?-+:?\s*$`)
	reIndentedCode  = regexp.MustCompile(`^(?: {4}|\t)(.*)$`)
)

// parseBlocks consumes lines[start:] appending block-level children to
// parent, applying block-detection precedence per the spec's numbered
// list (fenced code, indented code, ATX heading, setext heading,
// blockquote, list item, table, thematic break, HTML block, paragraph).
func (p *parser) parseBlocks(lines []string, parent dom.Ref, start int) {
	i := start
	n := len(lines)
	for i < n {
		line := lines[i]
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			i++
			continue
		}

		if m := reFenceBacktick.FindStringSubmatch(trimmed); m != nil {
			i = p.consumeFencedCode(lines, i, parent, m[1], m[2], '`')
			continue
		}
		if m := reFenceTilde.FindStringSubmatch(trimmed); m != nil {
			i = p.consumeFencedCode(lines, i, parent, m[1], m[2], '~')
			continue
		}
		if reIndentedCode.MatchString(line) {
			i = p.consumeIndentedCode(lines, i, parent)
			continue
		}
		if m := reATXHeading.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			h := p.doc.CreateElement("h" + strconv.Itoa(level))
			p.doc.AppendChild(parent, h)
			p.parseInlines(strings.TrimSpace(m[2]), h)
			i++
			continue
		}
		if m := reBlockquote.FindStringSubmatch(trimmed); m != nil {
			i = p.consumeBlockquote(lines, i, parent)
			_ = m
			continue
		}
		if m := reUnorderedItem.FindStringSubmatch(trimmed); m != nil {
			i = p.consumeList(lines, i, parent, false)
			_ = m
			continue
		}
		if m := reOrderedItem.FindStringSubmatch(trimmed); m != nil {
			i = p.consumeList(lines, i, parent, true)
			_ = m
			continue
		}
		if i+1 < n && strings.Contains(line, "|") && isTableSeparatorRow(lines[i+1]) {
			i = p.consumeTable(lines, i, parent)
			continue
		}
		if reThematicBreak.MatchString(trimmed) && !looksLikeSetextUnderline(lines, i) {
			p.doc.AppendChild(parent, p.doc.CreateElement("hr"))
			i++
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "<") {
			i = p.consumeHTMLBlock(lines, i, parent)
			continue
		}

		i = p.consumeParagraph(lines, i, parent)
	}
}

// looksLikeSetextUnderline disambiguates a `---` line that is actually the
// underline of a setext H2 from a standalone thematic break: it's a setext
// underline only if the line is a run of `-` and the immediately preceding
// line is non-blank and does not itself open a heading, thematic break,
// fence or list item.
func looksLikeSetextUnderline(lines []string, i int) bool {
	if i == 0 || !reSetextH2.MatchString(lines[i]) {
		return false
	}
	prev := strings.TrimRight(lines[i-1], " \t")
	if strings.TrimSpace(prev) == "" {
		return false
	}
	return !reATXHeading.MatchString(prev) && !reThematicBreak.MatchString(prev) &&
		!reFenceBacktick.MatchString(prev) && !reFenceTilde.MatchString(prev) &&
		!reUnorderedItem.MatchString(prev) && !reOrderedItem.MatchString(prev)
}

// isTableSeparatorRow reports whether line is a GFM table's alignment-
// separator row (e.g. `:--|--:`), checking each pipe-delimited cell
// individually against reTableSep rather than the whole line at once.
func isTableSeparatorRow(line string) bool {
	if !strings.Contains(line, "|") && !strings.Contains(line, "-") {
		return false
	}
	cells := splitTableRow(line)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !reTableSep.MatchString(c) {
			return false
		}
	}
	return true
}

func stripOuterPipes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	return s
}

func (p *parser) consumeFencedCode(lines []string, i int, parent dom.Ref, fence, info string, ch byte) int {
	n := len(lines)
	var body strings.Builder
	j := i + 1
	closeRe := regexp.MustCompile(`^ {0,3}` + regexp.QuoteMeta(string(ch)) + `{` + strconv.Itoa(len(fence)) + `,}\s*$`)
	for j < n && !closeRe.MatchString(lines[j]) {
		body.WriteString(lines[j])
		body.WriteByte('\n')
		j++
	}
	pre := p.doc.CreateElement("pre")
	code := p.doc.CreateElement("code")
	if lang := strings.TrimSpace(info); lang != "" {
		p.doc.SetAttr(code, "data-language", strings.Fields(lang)[0])
	}
	p.doc.AppendChild(code, p.doc.CreateText(body.String()))
	p.doc.AppendChild(pre, code)
	p.doc.AppendChild(parent, pre)
	if j < n {
		j++ // consume closing fence
	}
	return j
}

func (p *parser) consumeIndentedCode(lines []string, i int, parent dom.Ref) int {
	n := len(lines)
	var body strings.Builder
	j := i
	for j < n {
		m := reIndentedCode.FindStringSubmatch(lines[j])
		if m == nil {
			if strings.TrimSpace(lines[j]) == "" {
				body.WriteByte('\n')
				j++
				continue
			}
			break
		}
		body.WriteString(m[1])
		body.WriteByte('\n')
		j++
	}
	pre := p.doc.CreateElement("pre")
	code := p.doc.CreateElement("code")
	p.doc.AppendChild(code, p.doc.CreateText(strings.TrimRight(body.String(), "\n")+"\n"))
	p.doc.AppendChild(pre, code)
	p.doc.AppendChild(parent, pre)
	return j
}

func (p *parser) consumeBlockquote(lines []string, i int, parent dom.Ref) int {
	n := len(lines)
	var inner []string
	j := i
	for j < n {
		m := reBlockquote.FindStringSubmatch(strings.TrimRight(lines[j], " \t"))
		if m == nil {
			if strings.TrimSpace(lines[j]) == "" {
				break
			}
			// lazy continuation: a non-blank, non-marked line extends the
			// blockquote's last paragraph.
			inner = append(inner, lines[j])
			j++
			continue
		}
		inner = append(inner, m[1])
		j++
	}
	bq := p.doc.CreateElement("blockquote")
	p.doc.AppendChild(parent, bq)
	p.parseBlocks(inner, bq, 0)
	return j
}

func (p *parser) consumeList(lines []string, i int, parent dom.Ref, ordered bool) int {
	n := len(lines)
	tag := "ul"
	if ordered {
		tag = "ol"
	}
	list := p.doc.CreateElement(tag)
	p.doc.AppendChild(parent, list)

	j := i
	for j < n {
		line := strings.TrimRight(lines[j], " \t")
		var marker, rest string
		var indent int
		if ordered {
			m := reOrderedItem.FindStringSubmatch(line)
			if m == nil {
				break
			}
			if start, err := strconv.Atoi(m[2]); err == nil && j == i {
				p.doc.SetAttr(list, "start", strconv.Itoa(start))
			}
			indent = len(m[1]) + len(m[2]) + 2
			marker = m[3]
			rest = m[4]
		} else {
			m := reUnorderedItem.FindStringSubmatch(line)
			if m == nil {
				break
			}
			indent = len(m[1]) + 2
			marker = m[2]
			rest = m[3]
		}
		_ = marker

		itemLines := []string{rest}
		j++
		for j < n {
			l := lines[j]
			if strings.TrimSpace(l) == "" {
				itemLines = append(itemLines, "")
				j++
				continue
			}
			if countLeadingSpaces(l) >= indent {
				itemLines = append(itemLines, l[min(indent, len(l)):])
				j++
				continue
			}
			break
		}
		li := p.doc.CreateElement("li")
		p.doc.AppendChild(list, li)
		p.parseBlocks(itemLines, li, 0)
	}
	return j
}

func countLeadingSpaces(s string) int {
	n := 0
	for _, c := range s {
		if c == ' ' {
			n++
		} else if c == '\t' {
			n += 4
		} else {
			break
		}
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (p *parser) consumeTable(lines []string, i int, parent dom.Ref) int {
	n := len(lines)
	header := splitTableRow(lines[i])
	aligns := parseAlignments(splitTableRow(lines[i+1]))
	table := p.doc.CreateElement("table")
	p.doc.AppendChild(parent, table)
	thead := p.doc.CreateElement("thead")
	p.doc.AppendChild(table, thead)
	headRow := p.doc.CreateElement("tr")
	p.doc.AppendChild(thead, headRow)
	for ci, cell := range header {
		th := p.doc.CreateElement("th")
		if ci < len(aligns) && aligns[ci] != "" {
			p.doc.SetAttr(th, "align", aligns[ci])
		}
		p.parseInlines(strings.TrimSpace(cell), th)
		p.doc.AppendChild(headRow, th)
	}
	j := i + 2
	tbody := p.doc.CreateElement("tbody")
	p.doc.AppendChild(table, tbody)
	for j < n && strings.Contains(lines[j], "|") && strings.TrimSpace(lines[j]) != "" {
		row := p.doc.CreateElement("tr")
		p.doc.AppendChild(tbody, row)
		for ci, cell := range splitTableRow(lines[j]) {
			td := p.doc.CreateElement("td")
			if ci < len(aligns) && aligns[ci] != "" {
				p.doc.SetAttr(td, "align", aligns[ci])
			}
			p.parseInlines(strings.TrimSpace(cell), td)
			p.doc.AppendChild(row, td)
		}
		j++
	}
	return j
}

func splitTableRow(line string) []string {
	line = stripOuterPipes(line)
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseAlignments(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			out[i] = "center"
		case right:
			out[i] = "right"
		case left:
			out[i] = "left"
		}
	}
	return out
}

func (p *parser) consumeHTMLBlock(lines []string, i int, parent dom.Ref) int {
	n := len(lines)
	j := i
	var buf strings.Builder
	for j < n && strings.TrimSpace(lines[j]) != "" {
		buf.WriteString(lines[j])
		buf.WriteByte('\n')
		j++
	}
	raw := p.doc.CreateElement("raw-html")
	p.doc.AppendChild(raw, p.doc.CreateText(buf.String()))
	p.doc.AppendChild(parent, raw)
	return j
}

func (p *parser) consumeParagraph(lines []string, i int, parent dom.Ref) int {
	n := len(lines)
	j := i
	var collected []string
	for j < n {
		line := lines[j]
		if strings.TrimSpace(line) == "" {
			break
		}
		if j > i {
			if reSetextH1.MatchString(line) {
				h := p.doc.CreateElement("h1")
				p.doc.AppendChild(parent, h)
				p.parseInlines(strings.Join(collected, " "), h)
				return j + 1
			}
			if reSetextH2.MatchString(line) {
				h := p.doc.CreateElement("h2")
				p.doc.AppendChild(parent, h)
				p.parseInlines(strings.Join(collected, " "), h)
				return j + 1
			}
			if reATXHeading.MatchString(line) || reThematicBreak.MatchString(line) ||
				reBlockquote.MatchString(line) || reFenceBacktick.MatchString(line) ||
				reFenceTilde.MatchString(line) {
				break
			}
		}
		collected = append(collected, strings.TrimLeft(line, " \t"))
		j++
	}
	para := p.doc.CreateElement("p")
	p.doc.AppendChild(parent, para)
	p.parseInlinesMultiline(collected, para)
	return j
}
