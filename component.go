package vcmp

import (
	"strings"

	"github.com/pthm/vcmp/lib/dom"
	"golang.org/x/net/html"
)

// Markers written onto every instance root.
const (
	// OriginAttr names the component an element was expanded from. It stays
	// in the final document.
	OriginAttr = "data-vc"
	// PendingAttr marks an instance whose constructor has not run yet. It is
	// removed during dispatch.
	PendingAttr = "data-vc-pending"
)

// Attr returns the value of an attribute on the instance root.
func (i *Instance) Attr(key string) string {
	v, _ := dom.Attr(i.Node, key)
	return v
}

// SetAttr sets an attribute on the instance root.
func (i *Instance) SetAttr(key, val string) {
	dom.SetAttr(i.Node, key, val)
}

// Find returns the first element with the given tag inside the instance.
func (i *Instance) Find(tag string) *html.Node {
	return dom.First(i.Node, tag)
}

// Text returns the instance's text content.
func (i *Instance) Text() string {
	return dom.Text(i.Node)
}

// HTML renders the instance root and its subtree.
func (i *Instance) HTML() (string, error) {
	return dom.Render(i.Node)
}

// Pending reports whether the instance still awaits its constructor.
func (i *Instance) Pending() bool {
	return dom.HasAttr(i.Node, PendingAttr)
}

// placeholder is a not-yet-expanded reference found in the document.
type placeholder struct {
	node  *html.Node
	name  string
	attrs []html.Attribute
}

func newPlaceholder(n *html.Node) *placeholder {
	attrs := make([]html.Attribute, len(n.Attr))
	copy(attrs, n.Attr)
	return &placeholder{
		node:  n,
		name:  strings.TrimSpace(dom.Text(n)),
		attrs: attrs,
	}
}

// queue holds placeholders awaiting resolution. The most recently discovered
// placeholder is resolved first, so nested components finish before siblings
// found earlier.
type queue struct {
	items []*placeholder
}

func (q *queue) push(ps ...*placeholder) {
	q.items = append(q.items, ps...)
}

func (q *queue) pop() (*placeholder, bool) {
	n := len(q.items)
	if n == 0 {
		return nil, false
	}
	p := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return p, true
}

func (q *queue) len() int {
	return len(q.items)
}

// scan collects the placeholders at or below root in document order. The
// content of a placeholder is its name, so scan does not descend into one.
func scan(root *html.Node, tag string) []*placeholder {
	var out []*placeholder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if dom.IsElement(n, tag) {
			out = append(out, newPlaceholder(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}
