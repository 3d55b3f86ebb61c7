package cssstyle

import (
	"sort"

	"corehost/pkg/dom"
)

// ComputedStyle is the resolved raw-string property bag for one element,
// after user-agent defaults, matching stylesheet rules (sorted by
// specificity then source order), `!important`, inline style, and
// inheritance from the parent have all been applied. StyleOf normalizes
// individual properties out of it on demand.
type ComputedStyle struct {
	props map[string]string
}

// Get returns a raw (un-normalized) property value.
func (cs *ComputedStyle) Get(property string) (string, bool) {
	v, ok := cs.props[property]
	return v, ok
}

// ComputeStyle resolves el's cascade against sheets (in the order they
// should be applied, later sheets win ties) and parent (the already
// computed style of el's parent element, or nil at the document root),
// matching the teacher's applyUserAgentStyles + specificity-sorted rule
// application, generalized to operate on dom.Document instead of a single
// parsed html.Node tree.
func ComputeStyle(doc *dom.Document, el dom.Ref, sheets []*Stylesheet, parent *ComputedStyle) *ComputedStyle {
	cs := &ComputedStyle{props: make(map[string]string)}

	if parent != nil {
		for prop := range inheritedProperties {
			if v, ok := parent.Get(prop); ok {
				cs.props[prop] = v
			}
		}
	}

	applyUserAgentStyles(doc, el, cs)

	type matched struct {
		rule        Rule
		specificity int
		order       int
	}
	var matches []matched
	order := 0
	for _, sheet := range sheets {
		for _, rule := range sheet.Rules {
			best := -1
			for _, sel := range rule.Selectors {
				if matchesSelector(doc, el, sel) && sel.Specificity > best {
					best = sel.Specificity
				}
			}
			if best >= 0 {
				matches = append(matches, matched{rule: rule, specificity: best, order: order})
				order++
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].specificity < matches[j].specificity
	})

	important := make(map[string]bool)
	for _, m := range matches {
		for prop, val := range m.rule.Declarations {
			if important[prop] {
				continue
			}
			cs.props[prop] = val
		}
	}
	for _, m := range matches {
		for prop, val := range m.rule.Declarations {
			if m.rule.Important[prop] {
				cs.props[prop] = val
				important[prop] = true
			}
		}
	}

	if style := elementStyleAttr(doc, el); style != "" {
		for prop, val := range ParseInlineStyle(style) {
			if !important[prop] {
				cs.props[prop] = val
			}
		}
	}

	return cs
}

// applyUserAgentStyles seeds cs with this repo's minimal default
// stylesheet, adapted from the teacher's per-tag-name defaults (link
// color, paragraph margins, hidden metadata elements, inline-vs-block
// defaults, list and table display types).
func applyUserAgentStyles(doc *dom.Document, el dom.Ref, cs *ComputedStyle) {
	if !doc.IsElement(el) {
		return
	}
	tag := doc.TagNameString(el)

	switch tag {
	case "a":
		cs.props["color"] = "#0645ad"
		cs.props["text-decoration"] = "underline"
	case "body":
		cs.props["margin-top"] = "0"
		cs.props["margin-right"] = "0"
		cs.props["margin-bottom"] = "0"
		cs.props["margin-left"] = "0"
	case "p":
		cs.props["margin-top"] = "1em"
		cs.props["margin-bottom"] = "1em"
	case "head", "style", "script", "meta", "title", "link", "base":
		cs.props["display"] = "none"
	}

	switch tag {
	case "em", "i", "cite", "dfn", "var":
		cs.props["font-style"] = "italic"
	}
	switch tag {
	case "strong", "b":
		cs.props["font-weight"] = "bold"
	}
	switch tag {
	case "code", "pre", "kbd", "samp", "tt":
		cs.props["font-family"] = "monospace"
	}

	switch tag {
	case "span", "em", "strong", "b", "i", "u", "s", "a", "abbr", "cite",
		"code", "dfn", "kbd", "mark", "q", "samp", "small", "sub", "sup",
		"var", "time", "label", "br", "wbr", "img", "input", "select",
		"textarea", "button", "object":
		if _, ok := cs.props["display"]; !ok {
			cs.props["display"] = "inline"
		}
	}

	switch tag {
	case "table":
		cs.props["display"] = "table"
	case "tr":
		cs.props["display"] = "table-row"
	case "td", "th":
		cs.props["display"] = "table-cell"
	case "ul":
		cs.props["display"] = "block"
		cs.props["margin-top"] = "16px"
		cs.props["margin-bottom"] = "16px"
		cs.props["padding-left"] = "40px"
		cs.props["list-style-type"] = "disc"
	case "ol":
		cs.props["display"] = "block"
		cs.props["margin-top"] = "16px"
		cs.props["margin-bottom"] = "16px"
		cs.props["padding-left"] = "40px"
		cs.props["list-style-type"] = "decimal"
	case "li":
		cs.props["display"] = "list-item"
	}

	if _, ok := cs.props["font-size"]; !ok {
		switch tag {
		case "h1":
			cs.props["font-size"] = "32px"
		case "h2":
			cs.props["font-size"] = "24px"
		case "h3":
			cs.props["font-size"] = "19px"
		default:
			cs.props["font-size"] = "16px"
		}
	}
}
