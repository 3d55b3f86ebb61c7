// Package resource fetches the external resources a document references —
// stylesheets, images, fonts — resolving relative URIs against the
// document's own location, grounded on
// iansmith-louis14/pkg/resource/fetcher.go's Fetcher interface and its
// std/net helper (folded into this file rather than kept as a separate
// internal package, since this module has no other std/* wrapper layer to
// share it with).
package resource

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const userAgent = "corehost/1.0 (compatible; Go)"

// Provider retrieves a resource by URL, resolving it relative to the
// Provider's own base location first. It implements pkg/imagecache.Fetcher
// directly and pkg/fontcache.Source through a family-name-aware wrapper
// (see FontSource).
type Provider struct {
	base   string
	client *http.Client
}

// NewProvider builds a Provider that resolves relative URIs against base
// (a filesystem path or an http(s) URL — mirroring the document's own
// location, per spec.md §6.2's single positional path argument).
func NewProvider(base string) *Provider {
	return &Provider{base: base, client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch retrieves the resource at url, which may be absolute (http/https)
// or relative to the Provider's base; anything that is not an http(s) URL,
// a data URI included, is read as a filesystem path.
func (p *Provider) Fetch(rawURL string) ([]byte, error) {
	resolved := p.resolve(rawURL)
	if isNetworkURL(resolved) {
		return p.fetchHTTP(resolved)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resolved, err)
	}
	return data, nil
}

func (p *Provider) fetchHTTP(rawURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// resolve resolves ref against p.base, using url.URL.ResolveReference for
// network bases and filepath.Join against the base's directory for
// filesystem ones.
func (p *Provider) resolve(ref string) string {
	if isNetworkURL(ref) || p.base == "" {
		return ref
	}
	if isNetworkURL(p.base) {
		baseURL, err := url.Parse(p.base)
		if err != nil {
			return ref
		}
		refURL, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return baseURL.ResolveReference(refURL).String()
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(p.base), ref)
}

func isNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// FetchText fetches url and returns its body decoded as UTF-8 text, for
// stylesheet loading.
func (p *Provider) FetchText(url string) (string, error) {
	data, err := p.Fetch(url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
