package vcmp

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/pthm/vcmp/lib/encoding"
)

// Bundle is an alias for encoding.Bundle for convenience.
type Bundle = encoding.Bundle

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// NewEncoder creates a bundle encoder with the given key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}

// BuildBundle collects every file ending in ext under fsys. Template names
// are slash-separated paths relative to the root, without ext.
func BuildBundle(fsys fs.FS, ext string) (*Bundle, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	b := encoding.NewBundle()
	b.Extension = ext

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(path.Base(p), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(p, ext) {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		b.Templates[strings.TrimSuffix(p, ext)] = string(raw)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vcmp: build bundle: %w", err)
	}
	return b, nil
}

// WriteBundle encodes b with key and writes it to w.
func WriteBundle(w io.Writer, b *Bundle, key []byte, sealed bool) error {
	enc, err := NewEncoder(key)
	if err != nil {
		return err
	}
	s, err := enc.Encode(b, sealed)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// ReadBundle reads and verifies a bundle written by WriteBundle.
func ReadBundle(r io.Reader, key []byte) (*Bundle, error) {
	enc, err := NewEncoder(key)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b, err := enc.Decode(string(raw))
	if err != nil {
		return nil, wrapEncodingError(err)
	}
	return b, nil
}

// BundleFetcher serves templates from a decoded bundle.
type BundleFetcher struct {
	bundle *Bundle
}

// NewBundleFetcher creates a fetcher over b.
func NewBundleFetcher(b *Bundle) *BundleFetcher {
	return &BundleFetcher{bundle: b}
}

// Fetch returns the bundled template for name.
func (f *BundleFetcher) Fetch(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, ok := f.bundle.Templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q not in bundle", ErrNotFound, name)
	}
	return raw, nil
}
