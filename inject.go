package vcmp

import (
	"strings"

	"github.com/pthm/vcmp/lib/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inject places the aggregated buffers into doc. The style block becomes the
// first child of <head>. The script block goes before the first top-level
// <script> of <body>, and every other top-level script except the loader is
// replaced by a fresh copy of itself.
//
// Empty buffers inject nothing. fallback receives the blocks when the
// document has no head or body.
func inject(doc, fallback *html.Node, style, script, loaderScript string) {
	if strings.TrimSpace(style) != "" {
		head := dom.First(doc, "head")
		if head == nil {
			head = fallback
		}
		dom.Prepend(head, block(atom.Style, style))
	}

	if strings.TrimSpace(script) == "" {
		return
	}

	body := dom.First(doc, "body")
	if body == nil {
		body = fallback
	}

	aggregate := block(atom.Script, script)
	dom.InsertBefore(body, aggregate, firstScript(body))

	for _, s := range topLevelScripts(body) {
		if s == aggregate {
			continue
		}
		if src, _ := dom.Attr(s, "src"); loaderScript != "" && src == loaderScript {
			continue
		}
		fresh := cloneScript(s)
		body.InsertBefore(fresh, s)
		body.RemoveChild(s)
	}
}

func block(a atom.Atom, content string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	n.AppendChild(dom.NewText(content))
	return n
}

func firstScript(body *html.Node) *html.Node {
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, "script") {
			return c
		}
	}
	return nil
}

func topLevelScripts(body *html.Node) []*html.Node {
	var out []*html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, "script") {
			out = append(out, c)
		}
	}
	return out
}

// cloneScript builds a new script element with the same attributes and text.
func cloneScript(s *html.Node) *html.Node {
	fresh := &html.Node{Type: html.ElementNode, Data: s.Data, DataAtom: s.DataAtom, Namespace: s.Namespace}
	fresh.Attr = make([]html.Attribute, len(s.Attr))
	copy(fresh.Attr, s.Attr)
	if text := dom.Text(s); text != "" {
		fresh.AppendChild(dom.NewText(text))
	}
	return fresh
}
