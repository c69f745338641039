package dom

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind classifies template markup by the context it can be parsed in.
type Kind int

const (
	// KindElement is ordinary flow content.
	KindElement Kind = iota
	// KindRow is a bare <tr> fragment. It materializes inside a <table>.
	KindRow
	// KindCell is a bare <td> or <th> fragment. It materializes inside a <tr>.
	KindCell
)

func (k Kind) String() string {
	switch k {
	case KindRow:
		return "row"
	case KindCell:
		return "cell"
	default:
		return "element"
	}
}

// Errors returned by the splice primitives.
var (
	ErrNoRoot        = errors.New("dom: markup produced no element")
	ErrMultipleRoots = errors.New("dom: markup has more than one root element")
	ErrDetached      = errors.New("dom: node has no parent")
)

// KindOf inspects the first tag in markup, skipping <style> and <script>.
func KindOf(markup string) Kind {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return KindElement
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Tr:
				return KindRow
			case atom.Td, atom.Th:
				return KindCell
			case atom.Style, atom.Script:
				continue
			}
			return KindElement
		}
	}
}

// context returns the element markup of kind k must be parsed inside.
func (k Kind) context() *html.Node {
	switch k {
	case KindRow:
		return NewElement("tbody")
	case KindCell:
		return NewElement("tr")
	default:
		return NewElement("body")
	}
}

// wrapper returns the element that stands in for a table fragment, or nil.
func (k Kind) wrapper() *html.Node {
	switch k {
	case KindRow:
		return NewElement("table")
	case KindCell:
		return NewElement("tr")
	default:
		return nil
	}
}

// Materialize parses markup into a single detached root element. Table
// fragments come back as a wrapper element (a <table> holding the rows, or a
// <tr> holding the cells) since they cannot stand alone outside a table.
//
// Top-level <style> and <script> elements, text and comments around the root
// are dropped. A second root element is an error.
func Materialize(markup string, kind Kind) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), kind.context())
	if err != nil {
		return nil, err
	}
	if w := kind.wrapper(); w != nil {
		for _, n := range nodes {
			if !isSidecar(n) {
				w.AppendChild(n)
			}
		}
		if len(Children(w)) == 0 {
			return nil, ErrNoRoot
		}
		return w, nil
	}

	var root *html.Node
	for _, n := range nodes {
		if n.Type != html.ElementNode || isSidecar(n) {
			continue
		}
		if root != nil {
			return nil, fmt.Errorf("%w: <%s> after <%s>", ErrMultipleRoots, n.Data, root.Data)
		}
		root = n
	}
	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}

// Splice replaces placeholder with the materialized markup and returns the
// inserted root. The placeholder's siblings keep their order. When markup does
// not yield exactly one root, the tree is left untouched.
func Splice(placeholder *html.Node, markup string, kind Kind) (*html.Node, error) {
	if placeholder.Parent == nil {
		return nil, ErrDetached
	}
	root, err := Materialize(markup, kind)
	if err != nil {
		return nil, err
	}
	parent := placeholder.Parent
	parent.InsertBefore(root, placeholder)
	parent.RemoveChild(placeholder)
	return root, nil
}

// Rewrite serializes the subtree at root, passes it through edit, and splices
// the result back in place of root. For table wrappers only the wrapped
// fragment is serialized so it re-parses in the right context.
func Rewrite(root *html.Node, kind Kind, edit func(string) string) (*html.Node, error) {
	var sb strings.Builder
	if kind == KindElement {
		if err := html.Render(&sb, root); err != nil {
			return nil, err
		}
	} else {
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&sb, c); err != nil {
				return nil, err
			}
		}
	}
	return Splice(root, edit(sb.String()), kind)
}

// isSidecar reports a <style> or <script> element.
func isSidecar(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Style || n.DataAtom == atom.Script)
}
