package vcmp

import (
	"strings"

	"github.com/pthm/vcmp/lib/dom"
	"github.com/pthm/vcmp/lib/parse"
)

// Record is the cached template of one component.
type Record struct {
	Name   string
	Markup string
	Style  string
	Script string
	Kind   dom.Kind
}

// Cache maps component names to their templates for one expansion pass and
// aggregates every template's style and script, in first-resolution order.
//
// A Cache is owned by a single pass and is not safe for concurrent use.
type Cache struct {
	records map[string]*Record
	order   []string
	style   strings.Builder
	script  strings.Builder
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{records: make(map[string]*Record)}
}

// Get returns the cached record for name.
func (c *Cache) Get(name string) (*Record, bool) {
	r, ok := c.records[name]
	return r, ok
}

// Put stores the parsed template for name. Style and script are appended to
// the aggregate buffers only the first time a name is stored; later calls
// return the existing record unchanged.
func (c *Cache) Put(name string, t *parse.Template) *Record {
	if r, ok := c.records[name]; ok {
		return r
	}
	r := &Record{
		Name:   name,
		Markup: t.Markup,
		Style:  t.Style,
		Script: t.Script,
		Kind:   t.Kind,
	}
	c.records[name] = r
	c.order = append(c.order, name)
	appendFragment(&c.style, t.Style)
	appendFragment(&c.script, t.Script)
	return r
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	return len(c.records)
}

// Names returns the cached names in the order they were first stored.
func (c *Cache) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Style returns the aggregated style buffer.
func (c *Cache) Style() string {
	return c.style.String()
}

// Script returns the aggregated script buffer.
func (c *Cache) Script() string {
	return c.script.String()
}

func appendFragment(sb *strings.Builder, frag string) {
	if strings.TrimSpace(frag) == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(frag)
}
