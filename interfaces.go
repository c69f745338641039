package vcmp

import (
	"context"

	"golang.org/x/net/html"
)

// Fetcher returns the raw resource text of a component template.
//
// Implementations locate the resource from the component name, typically a
// base path plus the name plus an extension. A missing resource should be
// reported as an error matching ErrNotFound; any error fails the expansion
// pass that asked for it.
//
// Fetch may be called from several goroutines at once, one per distinct
// name in flight. Within a single pass a name is fetched at most once.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, name string) (string, error)

// Fetch calls f(ctx, name).
func (f FetcherFunc) Fetch(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// Hook initializes one expanded component instance. Hooks run after every
// placeholder in the pass is expanded and the aggregated style and script
// blocks are in the document, so a hook sees the final markup around it.
//
// Returning an error stops dispatch: no later hook in the pass runs.
//
//	reg.Hook("card", func(ctx context.Context, c *vcmp.Instance) error {
//	    c.SetAttr("data-ready", "true")
//	    return nil
//	})
type Hook func(ctx context.Context, inst *Instance) error

// Instance is the root element materialized for one placeholder.
type Instance struct {
	// Name is the component the instance was expanded from.
	Name string
	// Node is the live root element in the document.
	Node *html.Node
}
