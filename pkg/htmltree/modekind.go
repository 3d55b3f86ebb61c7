// Package htmltree drives a dom.Document through the WHATWG insertion-mode
// state machine described by §4.3: a stack of open elements, a list of
// active formatting elements, and one function per insertion mode.
package htmltree

// mode is one of the 23 WHATWG insertion modes. Each fully implemented mode
// (see fullyImplemented) is its own dispatch function in modes.go rather than
// a branch in one large switch; the remaining modes have no function of their
// own and are handled by inBody.
type mode uint8

const (
	modeInitial mode = iota
	modeBeforeHTML
	modeBeforeHead
	modeInHead
	modeInHeadNoscript
	modeAfterHead
	modeInBody
	modeText
	modeInTable
	modeInTableText
	modeInCaption
	modeInColumnGroup
	modeInTableBody
	modeInRow
	modeInCell
	modeInSelect
	modeInSelectInTable
	modeInTemplate
	modeAfterBody
	modeInFrameset
	modeAfterFrameset
	modeAfterAfterBody
	modeAfterAfterFrameset
)

// fullyImplemented reports whether m has a dedicated handler in modes.go.
// The rest route through inBody as a permissive fallback, per §4.3's
// "other modes may route to in-body... reporting parse errors" allowance
// and the Open Question decision in DESIGN.md.
func (m mode) fullyImplemented() bool {
	switch m {
	case modeInitial, modeBeforeHTML, modeBeforeHead, modeInHead, modeAfterHead,
		modeInBody, modeText, modeAfterBody:
		return true
	default:
		return false
	}
}
