package vcmp

import (
	"context"
	"io"
	"strings"

	"github.com/pthm/vcmp/lib/dom"
	"github.com/pthm/vcmp/lib/merge"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Defaults used by New.
const (
	DefaultTag          = "vc"
	DefaultExtension    = ".html"
	DefaultMaxFetches   = 8
	DefaultLoaderScript = "vanilla_components.js"
)

// Expander expands component placeholders in HTML documents.
//
// An Expander is immutable after New and safe for concurrent use; every call
// to Expand runs an independent pass with its own template cache.
type Expander struct {
	fetcher      Fetcher
	hooks        *Registry
	log          *zap.Logger
	tag          string
	sigil        string
	loaderScript string
	maxFetches   int64
}

// Option configures an Expander.
type Option func(*Expander)

// WithHooks sets the registry consulted for constructor hooks.
func WithHooks(reg *Registry) Option {
	return func(e *Expander) { e.hooks = reg }
}

// WithLogger sets the logger. Passes log at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(e *Expander) {
		if log != nil {
			e.log = log
		}
	}
}

// WithTag sets the placeholder tag name. Defaults to "vc".
func WithTag(tag string) Option {
	return func(e *Expander) {
		if tag != "" {
			e.tag = strings.ToLower(tag)
		}
	}
}

// WithSigil sets the prefix marking token attributes. Defaults to "$".
func WithSigil(sigil string) Option {
	return func(e *Expander) {
		if sigil != "" {
			e.sigil = sigil
		}
	}
}

// WithLoaderScript sets the src of the page script that must not be
// re-created after the aggregated script is injected. Empty disables the
// exemption.
func WithLoaderScript(src string) Option {
	return func(e *Expander) { e.loaderScript = src }
}

// WithMaxFetches bounds the number of fetches running at once in one pass.
func WithMaxFetches(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxFetches = int64(n)
		}
	}
}

// New creates an Expander that loads templates through f.
func New(f Fetcher, opts ...Option) *Expander {
	e := &Expander{
		fetcher:      f,
		hooks:        NewRegistry(),
		log:          zap.NewNop(),
		tag:          DefaultTag,
		sigil:        merge.DefaultSigil,
		loaderScript: DefaultLoaderScript,
		maxFetches:   DefaultMaxFetches,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report describes a completed pass.
type Report struct {
	// Session identifies the pass in logs.
	Session string
	// Instances are the expanded components in dispatch (document) order.
	Instances []*Instance
	// Templates are the fetched component names in resolution order.
	Templates []string
	// Style and Script are the injected aggregate buffers.
	Style  string
	Script string
}

// Expand expands every placeholder in doc, injects the aggregated style and
// script, and runs constructor hooks. It returns once the document is final.
//
// Any error aborts the pass: nothing is injected when expansion fails, and a
// failing hook stops the remaining dispatch.
func (e *Expander) Expand(ctx context.Context, doc *html.Node) (*Report, error) {
	return e.ExpandNode(ctx, doc)
}

// ExpandNode expands the placeholders at or below root. Aggregates are
// injected into the head and body of the document owning root, falling back
// to root itself when the tree has no head or body.
func (e *Expander) ExpandNode(ctx context.Context, root *html.Node) (*Report, error) {
	s := e.newSession(root)
	s.log.Debug("expand")

	if err := s.drain(ctx); err != nil {
		s.log.Debug("expand failed", zap.Error(err))
		return nil, err
	}

	inject(dom.Document(root), root, s.cache.Style(), s.cache.Script(), e.loaderScript)
	s.log.Debug("injected",
		zap.Int("templates", s.cache.Len()),
		zap.Int("style_bytes", len(s.cache.Style())),
		zap.Int("script_bytes", len(s.cache.Script())),
	)

	instances, err := s.dispatch(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		Session:   s.id,
		Instances: instances,
		Templates: s.cache.Names(),
		Style:     s.cache.Style(),
		Script:    s.cache.Script(),
	}, nil
}

// ExpandReader parses a document from r, expands it and renders the result
// to w.
func (e *Expander) ExpandReader(ctx context.Context, r io.Reader, w io.Writer) (*Report, error) {
	doc, err := dom.Parse(r)
	if err != nil {
		return nil, err
	}
	rep, err := e.Expand(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := html.Render(w, doc); err != nil {
		return nil, err
	}
	return rep, nil
}

// ExpandString is ExpandReader for strings.
func (e *Expander) ExpandString(ctx context.Context, page string) (string, *Report, error) {
	var sb strings.Builder
	rep, err := e.ExpandReader(ctx, strings.NewReader(page), &sb)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), rep, nil
}
