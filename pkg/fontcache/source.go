package fontcache

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemSource resolves a family name to a TTF file under Dir, trying
// the one styled file matching the request ("<family>-Bold.ttf",
// "<family>-Italic.ttf" or "<family>-BoldItalic.ttf") and then
// "<family>.ttf", mirroring font.c's
// load_styled_font building a ":bold"/":italic"/":bolditalic" suffix onto
// the lookup key before handing it to fontconfig.
type FilesystemSource struct {
	Dir string
}

func (s FilesystemSource) Load(family string, bold, italic bool) ([]byte, error) {
	suffix := ""
	switch {
	case bold && italic:
		suffix = "-BoldItalic"
	case bold:
		suffix = "-Bold"
	case italic:
		suffix = "-Italic"
	}
	path := filepath.Join(s.Dir, family+suffix+".ttf")
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if suffix == "" {
		return nil, fmt.Errorf("loading font %q: %w", family, err)
	}
	// styled variant missing; fall back to the family's regular weight,
	// same as font.c proceeding with whatever load_font_path found.
	data, err2 := os.ReadFile(filepath.Join(s.Dir, family+".ttf"))
	if err2 != nil {
		return nil, fmt.Errorf("loading font %q: %w", family, err)
	}
	return data, nil
}
