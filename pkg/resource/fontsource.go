package resource

import "fmt"

// FontSource adapts a Provider to pkg/fontcache.Source, resolving a family
// name to "<family>[-Bold][-Italic][-BoldItalic].ttf" under Dir and
// fetching it through the same Provider used for stylesheets and images,
// so a font referenced by a remote document can be fetched the same way
// its CSS and images are.
type FontSource struct {
	Provider *Provider
	Dir      string // directory (local or URL prefix) holding font files
}

func (s FontSource) Load(family string, bold, italic bool) ([]byte, error) {
	suffix := ""
	switch {
	case bold && italic:
		suffix = "-BoldItalic"
	case bold:
		suffix = "-Bold"
	case italic:
		suffix = "-Italic"
	}
	path := joinPath(s.Dir, family+suffix+".ttf")
	data, err := s.Provider.Fetch(path)
	if err == nil {
		return data, nil
	}
	if suffix == "" {
		return nil, fmt.Errorf("loading font %q: %w", family, err)
	}
	return s.Provider.Fetch(joinPath(s.Dir, family+".ttf"))
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if dir[len(dir)-1] == '/' {
		return dir + name
	}
	return dir + "/" + name
}
