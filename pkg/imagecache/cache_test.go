package imagecache

import (
	"errors"
	"testing"
)

// a 1x1 transparent PNG, the smallest valid raster fixture available without
// reading a file from disk.
const onePixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII="

func TestIntrinsicSizeFromDataURIPNG(t *testing.T) {
	c := NewCache(nil, nil)
	w, h, ok := c.IntrinsicSize(onePixelPNG)
	if !ok {
		t.Fatal("expected a decoded 1x1 PNG")
	}
	if w != 1 || h != 1 {
		t.Fatalf("got %vx%v, want 1x1", w, h)
	}
}

func TestLoadCachesDecodedImage(t *testing.T) {
	c := NewCache(nil, nil)
	img1, err := c.Load(onePixelPNG)
	if err != nil {
		t.Fatal(err)
	}
	img2, err := c.Load(onePixelPNG)
	if err != nil {
		t.Fatal(err)
	}
	if img1 != img2 {
		t.Fatal("expected the second Load to return the cached image")
	}
}

func TestIntrinsicSizeFromSVGDataURI(t *testing.T) {
	const svg = `data:image/svg+xml,` +
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 20"></svg>`
	c := NewCache(nil, nil)
	w, h, ok := c.IntrinsicSize(svg)
	if !ok {
		t.Fatal("expected a decoded SVG")
	}
	if w != 10 || h != 20 {
		t.Fatalf("got %vx%v, want 10x20", w, h)
	}
}

type fakeFetcher struct {
	data map[string][]byte
}

func (f fakeFetcher) Fetch(url string) ([]byte, error) {
	data, ok := f.data[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func TestIntrinsicSizeWithoutFetcherFails(t *testing.T) {
	c := NewCache(nil, nil)
	if _, _, ok := c.IntrinsicSize("https://example.com/a.png"); ok {
		t.Fatal("expected failure with no fetcher configured")
	}
}

func TestIntrinsicSizeFailsWhenFetcherLacksURL(t *testing.T) {
	fetcher := fakeFetcher{data: map[string][]byte{}}
	c := NewCache(fetcher, nil)
	if _, _, ok := c.IntrinsicSize("https://example.com/missing.png"); ok {
		t.Fatal("expected failure for a URL the fetcher doesn't have")
	}
}
