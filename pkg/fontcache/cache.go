// Package fontcache loads font files, caches parsed faces, and answers the
// glyph-metrics questions pkg/layout's inline formatting context needs
// (advance widths, ascender/descender), implementing layout.FontMetrics.
//
// It follows original_source/radiant/font.c's load_font_face/
// load_styled_font/load_glyph shape: a name+size cache key (that C keyed a
// hashmap on "name:size"; here the key is a faceKey struct), and a
// fallback-font list walked in order when the primary face lacks a glyph.
// Parsing uses github.com/golang/freetype/truetype against
// golang.org/x/image/font, the same stack font.c's FreeType calls map onto
// in Go.
package fontcache

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"corehost/pkg/logsink"
)

// Source resolves a font family (plus weight/style) to raw font-file bytes.
// Implementations might read from an embedded asset set, the filesystem, or
// (via pkg/resource) the network; fontcache only needs bytes, mirroring
// load_font_path's indirection through fontconfig without depending on a
// concrete transport.
type Source interface {
	Load(family string, bold, italic bool) ([]byte, error)
}

type faceKey struct {
	family       string
	bold, italic bool
}

type sizedFaceKey struct {
	faceKey
	size int // rounded font size in device pixels; faces are cached per integer size like FT_Set_Pixel_Sizes
}

// Cache loads and caches parsed font faces and rasterized per-size faces.
// One Cache is safe for concurrent use across a layout pass, same as
// font.c's UiContext.fontface_map.
type Cache struct {
	mu        sync.Mutex
	source    Source
	fallbacks []string // tried in order, mirroring font.c's uicon->fallback_fonts
	sink      logsink.Sink

	fonts map[faceKey]*truetype.Font
	faces map[sizedFaceKey]font.Face
}

// NewCache builds a Cache backed by source, trying fallbacks in order when a
// glyph is missing from the requested family (font.c's load_glyph fallback
// loop). sink receives a LevelWarn diagnostic whenever a family fails to
// load and a fallback or the sentinel "missing glyph" box is used instead.
func NewCache(source Source, fallbacks []string, sink logsink.Sink) *Cache {
	if sink == nil {
		sink = logsink.Nop
	}
	return &Cache{
		source:    source,
		fallbacks: fallbacks,
		sink:      sink,
		fonts:     make(map[faceKey]*truetype.Font),
		faces:     make(map[sizedFaceKey]font.Face),
	}
}

func (c *Cache) loadFont(family string, bold, italic bool) (*truetype.Font, error) {
	key := faceKey{family: family, bold: bold, italic: italic}
	if f, ok := c.fonts[key]; ok {
		return f, nil
	}
	data, err := c.source.Load(family, bold, italic)
	if err != nil {
		return nil, err
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %q: %w", family, err)
	}
	c.fonts[key] = parsed
	return parsed, nil
}

func roundSize(fontSize float64) int {
	return int(fontSize + 0.5)
}

func (c *Cache) faceFor(family string, bold, italic bool, fontSize float64) (font.Face, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sk := sizedFaceKey{faceKey{family, bold, italic}, roundSize(fontSize)}
	if f, ok := c.faces[sk]; ok {
		return f, true
	}
	parsed, err := c.loadFont(family, bold, italic)
	if err != nil {
		c.sink.Log(logsink.LevelWarn, "fontcache", "family unavailable, trying fallbacks: "+family)
		return c.fallbackFace(family, bold, italic, fontSize)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: fontSize})
	c.faces[sk] = face
	return face, true
}

// fallbackFace walks c.fallbacks in order, same as load_glyph's `while
// (*font_ptr)` loop, returning the first family that loads successfully.
func (c *Cache) fallbackFace(failedFamily string, bold, italic bool, fontSize float64) (font.Face, bool) {
	for _, fb := range c.fallbacks {
		if fb == failedFamily {
			continue
		}
		sk := sizedFaceKey{faceKey{fb, bold, italic}, roundSize(fontSize)}
		if f, ok := c.faces[sk]; ok {
			return f, true
		}
		parsed, err := c.loadFont(fb, bold, italic)
		if err != nil {
			continue
		}
		face := truetype.NewFace(parsed, &truetype.Options{Size: fontSize})
		c.faces[sk] = face
		return face, true
	}
	c.sink.Log(logsink.LevelWarn, "fontcache", "no fallback produced a usable face for: "+failedFamily)
	return nil, false
}

// Advance returns the total horizontal advance, in device pixels, of text
// rendered at fontSize in family (falling back through c.fallbacks per-rune
// exactly as font.c's load_glyph does when a codepoint is missing from the
// primary face). Satisfies layout.FontMetrics.
func (c *Cache) Advance(text string, fontSize float64, family string, bold, italic bool) float64 {
	face, ok := c.faceFor(family, bold, italic, fontSize)
	if !ok {
		return fallbackAdvance(text, fontSize)
	}
	total := 0.0
	for _, r := range text {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			// glyph missing from primary face; try the fallback list per-rune
			adv, ok = c.fallbackGlyphAdvance(r, bold, italic, fontSize)
			if !ok {
				total += fontSize * 0.6 // sentinel "missing glyph box" width
				continue
			}
		}
		total += float64(adv) / 64
	}
	return total
}

func (c *Cache) fallbackGlyphAdvance(r rune, bold, italic bool, fontSize float64) (float64, bool) {
	c.mu.Lock()
	fallbacks := c.fallbacks
	c.mu.Unlock()
	for _, fb := range fallbacks {
		face, ok := c.faceFor(fb, bold, italic, fontSize)
		if !ok {
			continue
		}
		if adv, ok := face.GlyphAdvance(r); ok {
			return float64(adv) / 64, true
		}
	}
	return 0, false
}

func fallbackAdvance(text string, fontSize float64) float64 {
	n := 0
	for range text {
		n++
	}
	return float64(n) * fontSize * 0.6
}

// Face exposes the rasterized font.Face backing Advance/Metrics for family
// at fontSize, for a Painter that needs to draw actual glyph outlines (see
// pkg/render's bitmap Painter) rather than just measure them. Reports
// ok=false under the same fallback exhaustion that makes Advance/Metrics
// fall back to sentinel values.
func (c *Cache) Face(family string, bold, italic bool, fontSize float64) (font.Face, bool) {
	return c.faceFor(family, bold, italic, fontSize)
}

// Metrics returns family's ascender/descender at fontSize, in device pixels,
// falling back through c.fallbacks if family itself fails to load.
// Satisfies layout.FontMetrics.
func (c *Cache) Metrics(fontSize float64, family string) (ascender, descender float64) {
	face, ok := c.faceFor(family, false, false, fontSize)
	if !ok {
		return fontSize * 0.8, fontSize * 0.2
	}
	m := face.Metrics()
	return float64(m.Ascent) / 64, float64(m.Descent) / 64
}
