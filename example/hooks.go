package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pthm/vcmp"
	"github.com/pthm/vcmp/lib/dom"
	"golang.org/x/net/html"
)

// Hooks wires the page components to the store. Each hook fills the
// instance it is given; the markup itself comes from site/vc_components.
func Hooks(store *Store) *vcmp.Registry {
	return vcmp.NewRegistry().
		Hook("todo-list", func(ctx context.Context, c *vcmp.Instance) error {
			list := c.Find("ul")
			if list == nil {
				return fmt.Errorf("todo-list template has no <ul>")
			}
			for _, todo := range store.List(Status(c.Attr("data-status"))) {
				list.AppendChild(todoItem(todo))
			}
			return nil
		}).
		Hook("todo-stats", func(ctx context.Context, c *vcmp.Instance) error {
			stats := store.Stats()
			for _, n := range dom.ByAttr(c.Node, "data-stat") {
				v, _ := dom.Attr(n, "data-stat")
				switch v {
				case "total":
					n.AppendChild(dom.NewText(fmt.Sprint(stats.Total)))
				case "pending":
					n.AppendChild(dom.NewText(fmt.Sprint(stats.Pending)))
				case "completed":
					n.AppendChild(dom.NewText(fmt.Sprint(stats.Completed)))
				}
			}
			return nil
		})
}

func todoItem(todo *Todo) *html.Node {
	li := dom.NewElement("li")
	dom.SetAttr(li, "id", todo.ID)
	dom.SetAttr(li, "class", "todo "+string(todo.Status))
	li.AppendChild(dom.NewText(todo.Title))
	if len(todo.Tags) > 0 {
		tags := dom.NewElement("small")
		tags.AppendChild(dom.NewText(" " + strings.Join(todo.Tags, ", ")))
		li.AppendChild(tags)
	}
	return li
}
