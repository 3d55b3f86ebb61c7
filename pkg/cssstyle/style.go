// Package cssstyle normalizes external CSS values into the fixed set of
// used-value enumerations the layout engine consumes, and — since this
// standalone repo has no host application to act as the "external CSS
// engine" spec.md's facade assumes — also ships a minimal cascade
// (stylesheet parsing, selector matching/specificity, inheritance,
// `!important`, inline `style=""`) to produce something real for the
// facade to normalize.
package cssstyle

import (
	"strconv"
	"strings"

	"corehost/pkg/dom"
)

// Display is the normalized `display` used value.
type Display string

const (
	DisplayNone        Display = "none"
	DisplayInline      Display = "inline"
	DisplayBlock       Display = "block"
	DisplayInlineBlock Display = "inline-block"
	DisplayListItem    Display = "list-item"
	DisplayFlex        Display = "flex"
	DisplayTable       Display = "table"
	DisplayTableRow    Display = "table-row"
	DisplayTableCell   Display = "table-cell"
)

// Position is the normalized `position` used value. Per this repo's scope
// decision (SPEC_FULL.md Component F), `relative`/`fixed`/`sticky` collapse
// to static — only `static` and `absolute` affect layout here.
type Position string

const (
	PositionStatic   Position = "static"
	PositionAbsolute Position = "absolute"
)

// Overflow is the normalized `overflow-x`/`overflow-y` used value.
type Overflow string

const (
	OverflowVisible Overflow = "visible"
	OverflowHidden  Overflow = "hidden"
	OverflowScroll  Overflow = "scroll"
	OverflowAuto    Overflow = "auto"
)

// TextAlign is the normalized `text-align` used value.
type TextAlign string

const (
	TextAlignLeft    TextAlign = "left"
	TextAlignRight   TextAlign = "right"
	TextAlignCenter  TextAlign = "center"
	TextAlignJustify TextAlign = "justify"
)

// WhiteSpace is the normalized `white-space` used value.
type WhiteSpace string

const (
	WhiteSpaceNormal WhiteSpace = "normal"
	WhiteSpacePre    WhiteSpace = "pre"
	WhiteSpaceNowrap WhiteSpace = "nowrap"
)

// ListStyleType is the normalized `list-style-type` used value.
type ListStyleType string

const (
	ListStyleDisc       ListStyleType = "disc"
	ListStyleCircle     ListStyleType = "circle"
	ListStyleSquare     ListStyleType = "square"
	ListStyleDecimal    ListStyleType = "decimal"
	ListStyleLowerRoman ListStyleType = "lower-roman"
	ListStyleUpperRoman ListStyleType = "upper-roman"
	ListStyleLowerAlpha ListStyleType = "lower-alpha"
	ListStyleUpperAlpha ListStyleType = "upper-alpha"
	ListStyleNone       ListStyleType = "none"
)

// FlexDirection is the normalized `flex-direction` used value. Per the Open
// Question decision in DESIGN.md, the vertical-writing-mode variants keep
// their CSS names but behave identically to `row`/`column` since this repo
// only lays out horizontal-tb text.
type FlexDirection string

const (
	FlexDirectionRow           FlexDirection = "row"
	FlexDirectionRowReverse    FlexDirection = "row-reverse"
	FlexDirectionColumn        FlexDirection = "column"
	FlexDirectionColumnReverse FlexDirection = "column-reverse"
)

// Length is a used-value length in device pixels, or the AUTO sentinel.
type Length struct {
	Px   float64
	Auto bool
}

// AutoLength is the AUTO sentinel spec.md §4.5 names.
var AutoLength = Length{Auto: true}

// RGBA is a 32-bit used-value color.
type RGBA struct {
	R, G, B, A uint8
}

var namedColors = map[string]RGBA{
	"transparent": {0, 0, 0, 0},
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"pink":        {255, 192, 203, 255},
	"brown":       {165, 42, 42, 255},
	"lime":        {0, 255, 0, 255},
	"navy":        {0, 0, 128, 255},
	"teal":        {0, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
}

// ParseColor resolves a named color or `#rgb`/`#rrggbb`/`#rrggbbaa` hex
// literal to an RGBA used value.
func ParseColor(s string) (RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		expand := func(c byte) (byte, byte) { return c, c }
		switch len(hex) {
		case 3, 4:
			r1, r2 := expand(hex[0])
			g1, g2 := expand(hex[1])
			b1, b2 := expand(hex[2])
			a := byte('f')
			a2 := a
			if len(hex) == 4 {
				a, a2 = expand(hex[3])
			}
			return hexRGBA(string([]byte{r1, r2}), string([]byte{g1, g2}), string([]byte{b1, b2}), string([]byte{a, a2}))
		case 6, 8:
			a := "ff"
			if len(hex) == 8 {
				a = hex[6:8]
			}
			return hexRGBA(hex[0:2], hex[2:4], hex[4:6], a)
		}
	}
	return RGBA{}, false
}

func hexRGBA(rs, gs, bs, as string) (RGBA, bool) {
	r, err1 := strconv.ParseUint(rs, 16, 8)
	g, err2 := strconv.ParseUint(gs, 16, 8)
	b, err3 := strconv.ParseUint(bs, 16, 8)
	a, err4 := strconv.ParseUint(as, 16, 8)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return RGBA{}, false
	}
	return RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}, true
}

// ParseLength parses a used-value length: bare numbers and "px" are device
// pixels; "em" multiplies by the given font size; "%" resolves against
// containingSize; "auto" (or an empty value) is the AUTO sentinel.
func ParseLength(val string, fontSize, containingSize float64) Length {
	val = strings.TrimSpace(val)
	if val == "" || val == "auto" {
		return AutoLength
	}
	switch {
	case strings.HasSuffix(val, "px"):
		if n, err := strconv.ParseFloat(strings.TrimSuffix(val, "px"), 64); err == nil {
			return Length{Px: n}
		}
	case strings.HasSuffix(val, "em"):
		if n, err := strconv.ParseFloat(strings.TrimSuffix(val, "em"), 64); err == nil {
			return Length{Px: n * fontSize}
		}
	case strings.HasSuffix(val, "%"):
		if n, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64); err == nil {
			return Length{Px: n / 100 * containingSize}
		}
	default:
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			return Length{Px: n}
		}
	}
	return AutoLength
}

// ParseInlineStyle parses a `style="..."` attribute value into a
// property-name -> raw-value map, expanding shorthands the same way
// stylesheet declarations are.
func ParseInlineStyle(styleAttr string) map[string]string {
	decls := make(map[string]string)
	for _, decl := range strings.Split(styleAttr, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.TrimSpace(parts[1])
		expandShorthand(decls, prop, val)
	}
	return decls
}

// expandShorthand expands `margin`/`padding`/`border` shorthand
// declarations into their longhand properties, matching CSS 2.1's box-edge
// shorthand expansion rules (1/2/3/4-value forms).
func expandShorthand(decls map[string]string, property, value string) {
	switch property {
	case "margin":
		expandBoxEdges(decls, "margin", value)
	case "padding":
		expandBoxEdges(decls, "padding", value)
	case "border":
		expandBorder(decls, value)
	default:
		decls[property] = value
	}
}

func expandBoxEdges(decls map[string]string, prefix, value string) {
	parts := strings.Fields(value)
	switch len(parts) {
	case 1:
		decls[prefix+"-top"] = parts[0]
		decls[prefix+"-right"] = parts[0]
		decls[prefix+"-bottom"] = parts[0]
		decls[prefix+"-left"] = parts[0]
	case 2:
		decls[prefix+"-top"] = parts[0]
		decls[prefix+"-bottom"] = parts[0]
		decls[prefix+"-right"] = parts[1]
		decls[prefix+"-left"] = parts[1]
	case 3:
		decls[prefix+"-top"] = parts[0]
		decls[prefix+"-right"] = parts[1]
		decls[prefix+"-left"] = parts[1]
		decls[prefix+"-bottom"] = parts[2]
	case 4:
		decls[prefix+"-top"] = parts[0]
		decls[prefix+"-right"] = parts[1]
		decls[prefix+"-bottom"] = parts[2]
		decls[prefix+"-left"] = parts[3]
	}
}

func expandBorder(decls map[string]string, value string) {
	for _, part := range strings.Fields(value) {
		switch {
		case strings.HasSuffix(part, "px") || strings.HasSuffix(part, "em"):
			decls["border-width"] = part
			decls["border-top-width"] = part
			decls["border-right-width"] = part
			decls["border-bottom-width"] = part
			decls["border-left-width"] = part
		case part == "solid" || part == "dotted" || part == "dashed" || part == "double" || part == "none":
			decls["border-style"] = part
		default:
			decls["border-color"] = part
		}
	}
}

// inheritedProperties lists the CSS properties this repo treats as
// inherited from the parent's computed style, per CSS 2.1's per-property
// inheritance table restricted to the properties this layout engine uses.
var inheritedProperties = map[string]bool{
	"color": true, "font-size": true, "font-family": true,
	"font-weight": true, "font-style": true, "line-height": true,
	"text-align": true, "white-space": true, "list-style-type": true,
	"visibility": true,
}

// StyleOf is the core's used-value facade (`style_of` in spec.md §4.5):
// given a computed style, normalize one raw property into a typed Value.
// An unset property normalizes to that property's default: block display,
// static position, visible overflow, left alignment, normal white-space,
// disc list style, row direction, opaque black for colors, and AUTO for
// lengths.
func StyleOf(cs *ComputedStyle, property string) Value {
	raw, _ := cs.Get(property)
	switch property {
	case "display":
		return Value{Display: normalizeDisplay(raw)}
	case "position":
		if raw == "absolute" {
			return Value{Position: PositionAbsolute}
		}
		return Value{Position: PositionStatic}
	case "overflow-x", "overflow-y":
		return Value{Overflow: normalizeOverflow(raw)}
	case "text-align":
		return Value{TextAlign: normalizeTextAlign(raw)}
	case "white-space":
		return Value{WhiteSpace: normalizeWhiteSpace(raw)}
	case "list-style-type":
		return Value{ListStyleType: normalizeListStyleType(raw)}
	case "flex-direction":
		return Value{FlexDirection: normalizeFlexDirection(raw)}
	case "color", "background-color", "border-color":
		if c, ok := ParseColor(raw); ok {
			return Value{Color: c, HasColor: true}
		}
		return Value{Color: RGBA{A: 255}, HasColor: true}
	default:
		fontSize := 16.0
		if fsRaw, ok := cs.Get("font-size"); ok {
			if l := ParseLength(fsRaw, 16.0, 16.0); !l.Auto {
				fontSize = l.Px
			}
		}
		return Value{Length: ParseLength(raw, fontSize, 0), HasLength: true}
	}
}

func normalizeDisplay(raw string) Display {
	switch raw {
	case "inline":
		return DisplayInline
	case "inline-block":
		return DisplayInlineBlock
	case "none":
		return DisplayNone
	case "list-item":
		return DisplayListItem
	case "flex":
		return DisplayFlex
	case "table":
		return DisplayTable
	case "table-row":
		return DisplayTableRow
	case "table-cell":
		return DisplayTableCell
	}
	return DisplayBlock
}

func normalizeOverflow(raw string) Overflow {
	switch raw {
	case "hidden":
		return OverflowHidden
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	}
	return OverflowVisible
}

func normalizeTextAlign(raw string) TextAlign {
	switch raw {
	case "right":
		return TextAlignRight
	case "center":
		return TextAlignCenter
	case "justify":
		return TextAlignJustify
	}
	return TextAlignLeft
}

func normalizeWhiteSpace(raw string) WhiteSpace {
	switch raw {
	case "pre":
		return WhiteSpacePre
	case "nowrap":
		return WhiteSpaceNowrap
	}
	return WhiteSpaceNormal
}

func normalizeListStyleType(raw string) ListStyleType {
	switch ListStyleType(raw) {
	case ListStyleCircle, ListStyleSquare, ListStyleDecimal, ListStyleLowerRoman,
		ListStyleUpperRoman, ListStyleLowerAlpha, ListStyleUpperAlpha, ListStyleNone:
		return ListStyleType(raw)
	}
	return ListStyleDisc
}

func normalizeFlexDirection(raw string) FlexDirection {
	switch raw {
	case "row-reverse":
		return FlexDirectionRowReverse
	case "column", "vertical-tb", "tb":
		return FlexDirectionColumn
	case "column-reverse":
		return FlexDirectionColumnReverse
	}
	return FlexDirectionRow
}

// Value is the tagged used-value StyleOf returns, following this repo's
// tagged-item convention (see dom.Ref/dom.Kind) rather than an interface{}
// grab-bag: callers read the field matching the property they asked for.
type Value struct {
	Display       Display
	Position      Position
	Overflow      Overflow
	TextAlign     TextAlign
	WhiteSpace    WhiteSpace
	ListStyleType ListStyleType
	FlexDirection FlexDirection
	Color         RGBA
	HasColor      bool
	Length        Length
	HasLength     bool
}

// elementStyleAttr reads an element's `style=""` attribute, or "" if absent.
func elementStyleAttr(doc *dom.Document, el dom.Ref) string {
	v, _ := doc.GetAttr(el, "style")
	return v
}
