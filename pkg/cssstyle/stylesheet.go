package cssstyle

import "strings"

// Rule is one parsed `selector { declarations }` block. Declarations are
// stored post-expansion: parseDeclarationBlock expands shorthands as it
// reads them, the same way ParseInlineStyle does for `style=""`.
type Rule struct {
	Selectors    []Selector
	Declarations map[string]string
	Important    map[string]bool
}

// Stylesheet is an ordered list of rules as they appeared in the source,
// since the cascade needs source order as the final tiebreaker after
// specificity.
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses a `<style>` block or external CSS text into a
// Stylesheet. Malformed rules are skipped rather than aborting the whole
// sheet, matching this repo's "never panic on input" error policy.
func ParseStylesheet(css string) *Stylesheet {
	sheet := &Stylesheet{}
	tk := newCSSTokenizer(css)
	for {
		selTok := tk.next()
		if selTok.kind == cssTokenEOF {
			break
		}
		if selTok.kind != cssTokenIdent {
			continue
		}
		brace := tk.next()
		if brace.kind != cssTokenLBrace {
			continue
		}
		decls, important := parseDeclarationBlock(tk)
		sheet.Rules = append(sheet.Rules, Rule{
			Selectors:    parseSelectorList(selTok.value),
			Declarations: decls,
			Important:    important,
		})
	}
	return sheet
}

func parseDeclarationBlock(tk *cssTokenizer) (map[string]string, map[string]bool) {
	decls := make(map[string]string)
	important := make(map[string]bool)
	for {
		propTok := tk.next()
		if propTok.kind == cssTokenRBrace || propTok.kind == cssTokenEOF {
			return decls, important
		}
		if propTok.kind != cssTokenIdent {
			continue
		}
		colon := tk.next()
		if colon.kind != cssTokenColon {
			continue
		}
		valTok := tk.next()
		if valTok.kind != cssTokenIdent {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(propTok.value))
		val := strings.TrimSpace(valTok.value)
		isImportant := false
		if strings.HasSuffix(strings.ToLower(val), "!important") {
			isImportant = true
			val = strings.TrimSpace(val[:len(val)-len("!important")])
		}
		expandShorthand(decls, prop, val)
		if isImportant {
			for k := range decls {
				important[k] = true
			}
		}
		switch next := tk.next(); next.kind {
		case cssTokenSemicolon:
			// declaration terminator; continue to the next one.
		case cssTokenRBrace, cssTokenEOF:
			return decls, important
		}
	}
}
