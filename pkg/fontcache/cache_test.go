package fontcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemSourcePrefersStyledVariant(t *testing.T) {
	dir := t.TempDir()
	must(t, os.WriteFile(filepath.Join(dir, "Serif.ttf"), []byte("regular"), 0o644))
	must(t, os.WriteFile(filepath.Join(dir, "Serif-Bold.ttf"), []byte("bold"), 0o644))

	src := FilesystemSource{Dir: dir}

	data, err := src.Load("Serif", true, false)
	if err != nil {
		t.Fatalf("Load bold: %v", err)
	}
	if string(data) != "bold" {
		t.Fatalf("expected bold variant, got %q", data)
	}
}

func TestFilesystemSourceFallsBackToRegularWhenStyledMissing(t *testing.T) {
	dir := t.TempDir()
	must(t, os.WriteFile(filepath.Join(dir, "Serif.ttf"), []byte("regular"), 0o644))

	src := FilesystemSource{Dir: dir}
	data, err := src.Load("Serif", true, true)
	if err != nil {
		t.Fatalf("Load bolditalic fallback: %v", err)
	}
	if string(data) != "regular" {
		t.Fatalf("expected regular fallback, got %q", data)
	}
}

func TestFilesystemSourceErrorsWhenNothingMatches(t *testing.T) {
	src := FilesystemSource{Dir: t.TempDir()}
	if _, err := src.Load("Missing", false, false); err == nil {
		t.Fatal("expected an error for a family with no files on disk")
	}
}

type failingSource struct{}

func (failingSource) Load(family string, bold, italic bool) ([]byte, error) {
	return nil, os.ErrNotExist
}

func TestAdvanceFallsBackToSentinelWhenNoFaceLoads(t *testing.T) {
	c := NewCache(failingSource{}, nil, nil)
	got := c.Advance("hi", 16, "Serif", false, false)
	want := fallbackAdvance("hi", 16)
	if got != want {
		t.Fatalf("Advance = %v, want sentinel %v", got, want)
	}
}

func TestMetricsFallsBackToSentinelWhenNoFaceLoads(t *testing.T) {
	c := NewCache(failingSource{}, nil, nil)
	asc, desc := c.Metrics(20, "Serif")
	if asc != 16 || desc != 4 {
		t.Fatalf("Metrics = (%v, %v), want sentinel (16, 4)", asc, desc)
	}
}

func TestRoundSize(t *testing.T) {
	cases := map[float64]int{15.4: 15, 15.5: 16, 16.0: 16}
	for in, want := range cases {
		if got := roundSize(in); got != want {
			t.Errorf("roundSize(%v) = %d, want %d", in, got, want)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
