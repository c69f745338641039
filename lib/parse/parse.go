// Package parse splits a raw component resource into its markup, style and
// script parts.
//
// A resource holds one markup root plus at most one <style> and one <script>
// block, in any order:
//
//	<style>.card { padding: 1em }</style>
//	<div class><h2>$title</h2></div>
//	<script>function vc_card(c) {}</script>
//
// Only the first style and first script block are extracted. Any further
// blocks stay in the markup untouched.
package parse

import (
	"io"
	"sort"
	"strings"

	"github.com/pthm/vcmp/lib/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Template is a parsed component resource.
type Template struct {
	Markup string
	Style  string
	Script string
	Kind   dom.Kind
}

// block is a byte range of raw covering a whole <style> or <script> element.
type block struct {
	start, end int
	inner      string
}

// Parse splits raw into a Template. Markup is the resource with the first
// style and script blocks cut out, trimmed.
func Parse(raw string) (*Template, error) {
	blocks, err := scan(raw)
	if err != nil {
		return nil, err
	}

	t := &Template{}
	var cuts []block
	if b, ok := blocks[atom.Style]; ok {
		t.Style = b.inner
		cuts = append(cuts, b)
	}
	if b, ok := blocks[atom.Script]; ok {
		t.Script = b.inner
		cuts = append(cuts, b)
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].start < cuts[j].start })

	var sb strings.Builder
	pos := 0
	for _, c := range cuts {
		sb.WriteString(raw[pos:c.start])
		pos = c.end
	}
	sb.WriteString(raw[pos:])

	t.Markup = strings.TrimSpace(sb.String())
	t.Kind = dom.KindOf(t.Markup)
	return t, nil
}

// scan finds the first <style> and <script> blocks and their byte
// ranges. The tokenizer switches to raw text inside both, so their bodies
// arrive as a single text token.
func scan(raw string) (map[atom.Atom]block, error) {
	z := html.NewTokenizer(strings.NewReader(raw))
	found := make(map[atom.Atom]block, 2)

	var (
		offset  int
		open    atom.Atom
		current block
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			break
		}
		n := len(z.Raw())
		start := offset
		offset += n

		switch tt {
		case html.StartTagToken:
			if open != 0 {
				continue
			}
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a != atom.Style && a != atom.Script {
				continue
			}
			if _, seen := found[a]; seen {
				continue
			}
			open = a
			current = block{start: start}
		case html.TextToken:
			if open != 0 {
				current.inner += string(z.Raw())
			}
		case html.EndTagToken:
			if open == 0 {
				continue
			}
			name, _ := z.TagName()
			if atom.Lookup(name) != open {
				continue
			}
			current.end = offset
			found[open] = current
			open = 0
		}
	}
	return found, nil
}
