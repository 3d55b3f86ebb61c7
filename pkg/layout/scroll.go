package layout

import (
	"math"

	"corehost/pkg/cssstyle"
)

// Scrollbar constants, in device pixels. The fixed 24px thickness and the
// 4px end-inset (the gap the track leaves at the top/bottom of its
// cross-axis run before the bar itself starts) come from spec.md's worked
// scrollbar-drag scenario: a 200px-tall pane, 24px thick bar, produces a
// 172px bar length (200 - 24 - 4), not the naively-expected 176.
const (
	scrollbarThickness = 24.0
	scrollbarEndInset  = 4.0
	minHandleLength    = 32.0
)

// ScrollPane records a BlockBox's scroll state, attached when its computed
// `overflow-x`/`overflow-y` is `scroll` or `auto` and its content exceeds
// the content box, per spec.md §4.6.4.
type ScrollPane struct {
	ContentWidth, ContentHeight   float64 // full scrollable content size
	ViewportWidth, ViewportHeight float64 // the content box's own size
	ScrollX, ScrollY               float64

	HasHorizontal, HasVertical bool
}

// attachScrollPane computes whether v needs a ScrollPane given its content
// size (as measured by the prior layout pass) versus its own content-box
// size, and allocates one if so.
func attachScrollPane(v *View, contentWidth, contentHeight float64) {
	if v.Style == nil {
		return
	}
	overflowX := cssstyle.StyleOf(v.Style, "overflow-x").Overflow
	overflowY := cssstyle.StyleOf(v.Style, "overflow-y").Overflow

	needsX := (overflowX == cssstyle.OverflowScroll || overflowX == cssstyle.OverflowAuto) && contentWidth > v.Width
	needsY := (overflowY == cssstyle.OverflowScroll || overflowY == cssstyle.OverflowAuto) && contentHeight > v.Height
	forceX := overflowX == cssstyle.OverflowScroll
	forceY := overflowY == cssstyle.OverflowScroll

	if !needsX && !needsY && !forceX && !forceY {
		return
	}

	v.Scroll = &ScrollPane{
		ContentWidth: contentWidth, ContentHeight: contentHeight,
		ViewportWidth: v.Width, ViewportHeight: v.Height,
		HasHorizontal: needsX || forceX,
		HasVertical:   needsY || forceY,
	}
}

// MaxScrollY returns the largest valid ScrollY value (content height minus
// viewport height, floored at zero).
func (s *ScrollPane) MaxScrollY() float64 {
	m := s.ContentHeight - s.ViewportHeight
	if m < 0 {
		return 0
	}
	return m
}

// MaxScrollX is MaxScrollY's horizontal counterpart.
func (s *ScrollPane) MaxScrollX() float64 {
	m := s.ContentWidth - s.ViewportWidth
	if m < 0 {
		return 0
	}
	return m
}

// VerticalBarLength is the pixel length of the vertical scrollbar's track,
// after the fixed thickness and end-inset are subtracted from the
// viewport's height.
func (s *ScrollPane) VerticalBarLength() float64 {
	l := s.ViewportHeight - scrollbarThickness - scrollbarEndInset
	if l < minHandleLength {
		return minHandleLength
	}
	return l
}

// VerticalHandleLength is the scrollbar handle/thumb's pixel length:
// max(minHandleLength, viewportHeight * visible/content), per spec.md
// §4.6.4. Note this is computed against the raw viewport height, not the
// already-inset VerticalBarLength — matching the worked scenario's numbers
// (200 * 200/600 = 66, not 172 * 200/600).
func (s *ScrollPane) VerticalHandleLength() float64 {
	if s.ContentHeight <= 0 {
		return s.VerticalBarLength()
	}
	h := math.Floor(s.ViewportHeight * (s.ViewportHeight / s.ContentHeight))
	if h < minHandleLength {
		return minHandleLength
	}
	if h > s.VerticalBarLength() {
		return s.VerticalBarLength()
	}
	return h
}

// VerticalHandlePosition returns the handle's offset from the top of its
// track for the pane's current ScrollY.
func (s *ScrollPane) VerticalHandlePosition() float64 {
	maxScroll := s.MaxScrollY()
	if maxScroll <= 0 {
		return 0
	}
	track := s.VerticalBarLength() - s.VerticalHandleLength()
	return (s.ScrollY / maxScroll) * track
}

// SetScrollYFromHandlePosition is the inverse of VerticalHandlePosition:
// given a handle position (device pixels from the track's top, as produced
// by dragging), resolve and clamp the resulting ScrollY. This is the
// computation pkg/interaction's drag state machine calls on every pointer-
// move event while a vertical handle drag is active.
func (s *ScrollPane) SetScrollYFromHandlePosition(handlePos float64) {
	track := s.VerticalBarLength() - s.VerticalHandleLength()
	if track <= 0 {
		s.ScrollY = 0
		return
	}
	frac := handlePos / track
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	s.ScrollY = frac * s.MaxScrollY()
}

// HorizontalBarLength, HorizontalHandleLength, HorizontalHandlePosition and
// SetScrollXFromHandlePosition are the horizontal-axis counterparts of the
// four Vertical* members above, for panes with a horizontal scrollbar
// (ScrollPane.HasHorizontal).
func (s *ScrollPane) HorizontalBarLength() float64 {
	l := s.ViewportWidth - scrollbarThickness - scrollbarEndInset
	if l < minHandleLength {
		return minHandleLength
	}
	return l
}

func (s *ScrollPane) HorizontalHandleLength() float64 {
	if s.ContentWidth <= 0 {
		return s.HorizontalBarLength()
	}
	h := math.Floor(s.ViewportWidth * (s.ViewportWidth / s.ContentWidth))
	if h < minHandleLength {
		return minHandleLength
	}
	if h > s.HorizontalBarLength() {
		return s.HorizontalBarLength()
	}
	return h
}

func (s *ScrollPane) HorizontalHandlePosition() float64 {
	maxScroll := s.MaxScrollX()
	if maxScroll <= 0 {
		return 0
	}
	track := s.HorizontalBarLength() - s.HorizontalHandleLength()
	return (s.ScrollX / maxScroll) * track
}

func (s *ScrollPane) SetScrollXFromHandlePosition(handlePos float64) {
	track := s.HorizontalBarLength() - s.HorizontalHandleLength()
	if track <= 0 {
		s.ScrollX = 0
		return
	}
	frac := handlePos / track
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	s.ScrollX = frac * s.MaxScrollX()
}
