package vcmp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"
)

// maxTemplateSize caps the bytes read for one template resource.
const maxTemplateSize = 4 << 20

// FSFetcher reads templates from a file system as <name><ext>.
//
//	f := vcmp.NewFSFetcher(os.DirFS("vc_components"), ".html")
type FSFetcher struct {
	fsys fs.FS
	ext  string
}

// NewFSFetcher creates a fetcher over fsys. An empty ext means ".html".
func NewFSFetcher(fsys fs.FS, ext string) *FSFetcher {
	if ext == "" {
		ext = DefaultExtension
	}
	return &FSFetcher{fsys: fsys, ext: ext}
}

// Fetch reads name+ext from the file system.
func (f *FSFetcher) Fetch(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := name + f.ext
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("%w: invalid component path %q", ErrNotFound, p)
	}
	b, err := fs.ReadFile(f.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return "", err
	}
	return string(b), nil
}

// HTTPFetcher requests templates from base + name + ext.
type HTTPFetcher struct {
	client *http.Client
	base   string
	ext    string
}

// NewHTTPFetcher creates a fetcher rooted at base, which should end in "/".
// A nil client means http.DefaultClient.
func NewHTTPFetcher(client *http.Client, base, ext string) (*HTTPFetcher, error) {
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("vcmp: invalid base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &HTTPFetcher{client: client, base: base, ext: ext}, nil
}

// Fetch issues a GET for the template. 404 maps to ErrNotFound; any other
// non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) (string, error) {
	segs := strings.Split(name, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	u := f.base + strings.Join(segs, "/") + f.ext

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("vcmp: GET %s: unexpected status %d", u, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxTemplateSize {
		return "", fmt.Errorf("vcmp: GET %s: template exceeds %d bytes", u, maxTemplateSize)
	}
	return string(b), nil
}

// Dedup wraps f so concurrent fetches of the same name share one call. A
// single pass never repeats a name; Dedup is for servers where many passes
// run at once against one fetcher.
//
// The shared call runs with the context of whichever caller arrived first.
func Dedup(f Fetcher) Fetcher {
	var g singleflight.Group
	return FetcherFunc(func(ctx context.Context, name string) (string, error) {
		v, err, _ := g.Do(name, func() (any, error) {
			return f.Fetch(ctx, name)
		})
		if err != nil {
			return "", err
		}
		return v.(string), nil
	})
}
