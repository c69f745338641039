// Package merge applies a placeholder's attributes to the element tree that
// replaced it.
//
// Attributes come in two kinds. Token attributes (name starts with the sigil,
// "$" by default) are substituted as literal text wherever the token appears
// in the inserted subtree. Plain attributes are assigned to whichever of the
// root and its direct children already declare the same attribute, or to the
// root when none does.
package merge

import (
	"sort"
	"strings"

	"github.com/pthm/vcmp/lib/dom"
	"golang.org/x/net/html"
)

// DefaultSigil marks token attributes.
const DefaultSigil = "$"

// Options configures a merge.
type Options struct {
	// Sigil prefixes token attribute names. Empty means DefaultSigil.
	Sigil string
	// Kind is how root was materialized, needed to re-parse after token
	// substitution.
	Kind dom.Kind
}

func (o Options) sigil() string {
	if o.Sigil == "" {
		return DefaultSigil
	}
	return o.Sigil
}

// Split partitions attrs into token and plain directives, keeping the
// authored order within each group.
func Split(attrs []html.Attribute, sigil string) (tokens, plain []html.Attribute) {
	if sigil == "" {
		sigil = DefaultSigil
	}
	for _, a := range attrs {
		if strings.HasPrefix(a.Key, sigil) && len(a.Key) > len(sigil) {
			tokens = append(tokens, a)
		} else {
			plain = append(plain, a)
		}
	}
	return tokens, plain
}

// Merge applies attrs onto root and returns the (possibly re-materialized)
// root. Token substitution runs first, then plain assignment.
func Merge(root *html.Node, attrs []html.Attribute, opts Options) (*html.Node, error) {
	tokens, plain := Split(attrs, opts.sigil())

	if len(tokens) > 0 {
		var err error
		root, err = Substitute(root, tokens, opts.Kind)
		if err != nil {
			return nil, err
		}
	}

	for _, a := range plain {
		Assign(root, a)
	}
	return root, nil
}

// Substitute replaces every occurrence of each token name in the serialized
// subtree with its escaped value and re-materializes the subtree. Longer
// tokens go first so "$title" cannot eat the front of "$titlebar". Tokens
// that occur nowhere leave no trace.
func Substitute(root *html.Node, tokens []html.Attribute, kind dom.Kind) (*html.Node, error) {
	ordered := make([]html.Attribute, len(tokens))
	copy(ordered, tokens)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Key) > len(ordered[j].Key)
	})

	return dom.Rewrite(root, kind, func(s string) string {
		for _, tok := range ordered {
			s = strings.ReplaceAll(s, tok.Key, html.EscapeString(tok.Val))
		}
		return s
	})
}

// Assign merges one plain attribute. Every element among root and its direct
// children that declares the attribute receives it; class values are
// appended, anything else is replaced. Without such an element the attribute
// lands on root.
func Assign(root *html.Node, a html.Attribute) {
	candidates := append([]*html.Node{root}, dom.Children(root)...)

	hit := false
	for _, el := range candidates {
		cur, ok := dom.Attr(el, a.Key)
		if !ok {
			continue
		}
		hit = true
		if a.Key == "class" {
			dom.SetAttr(el, a.Key, joinClass(cur, a.Val))
			continue
		}
		dom.RemoveAttr(el, a.Key)
		dom.SetAttr(el, a.Key, a.Val)
	}

	if !hit {
		dom.SetAttr(root, a.Key, a.Val)
	}
}

func joinClass(cur, add string) string {
	if strings.TrimSpace(cur) == "" {
		return add
	}
	if strings.TrimSpace(add) == "" {
		return cur
	}
	return cur + " " + add
}
