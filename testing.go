package vcmp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing/fstest"
)

// TestResult holds the result of expanding a page for testing.
//
// Provides convenience methods for asserting on the expanded HTML and on the
// pass report.
type TestResult struct {
	HTML   string
	Report *Report
	// Fetches counts fetcher calls per component name.
	Fetches map[string]int
}

// TestFetcher serves templates from memory and counts fetches per name.
// It is safe for concurrent use.
type TestFetcher struct {
	fetcher *FSFetcher

	mu     sync.Mutex
	counts map[string]int
}

// NewTestFetcher creates a fetcher over templates keyed by component name.
func NewTestFetcher(templates map[string]string) *TestFetcher {
	fsys := fstest.MapFS{}
	for name, raw := range templates {
		fsys[name+DefaultExtension] = &fstest.MapFile{Data: []byte(raw)}
	}
	return &TestFetcher{
		fetcher: NewFSFetcher(fsys, DefaultExtension),
		counts:  make(map[string]int),
	}
}

// Fetch implements Fetcher.
func (f *TestFetcher) Fetch(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	f.counts[name]++
	f.mu.Unlock()
	return f.fetcher.Fetch(ctx, name)
}

// Counts returns a copy of the per-name fetch counts.
func (f *TestFetcher) Counts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.counts))
	for k, v := range f.counts {
		out[k] = v
	}
	return out
}

// TestExpand expands page against in-memory templates and returns testable
// output.
//
//	result, err := vcmp.TestExpand(`<vc class="featured">card</vc>`, map[string]string{
//	    "card": `<div class><h2>$title</h2></div>`,
//	})
//	if !result.HTMLContains(`<div class="featured"`) {
//	    t.Fatal("missing merged class")
//	}
func TestExpand(page string, templates map[string]string, opts ...Option) (*TestResult, error) {
	return TestExpandWithContext(context.Background(), page, templates, opts...)
}

// TestExpandWithContext is TestExpand with a caller-supplied context.
func TestExpandWithContext(ctx context.Context, page string, templates map[string]string, opts ...Option) (*TestResult, error) {
	f := NewTestFetcher(templates)
	out, rep, err := New(f, opts...).ExpandString(ctx, page)
	if err != nil {
		return nil, err
	}
	return &TestResult{HTML: out, Report: rep, Fetches: f.Counts()}, nil
}

// HTMLContains checks if the HTML contains the given substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// Count returns the number of occurrences of substr in the HTML.
func (r *TestResult) Count(substr string) int {
	return strings.Count(r.HTML, substr)
}

// Before reports whether a occurs in the HTML and its first occurrence comes
// before the first occurrence of b.
func (r *TestResult) Before(a, b string) bool {
	i, j := strings.Index(r.HTML, a), strings.Index(r.HTML, b)
	return i >= 0 && j >= 0 && i < j
}

// InstanceNames returns the component names of the expanded instances in
// dispatch order.
func (r *TestResult) InstanceNames() []string {
	names := make([]string, len(r.Report.Instances))
	for i, inst := range r.Report.Instances {
		names[i] = inst.Name
	}
	return names
}

// String summarizes the result for test failure messages.
func (r *TestResult) String() string {
	return fmt.Sprintf("instances=%v fetches=%v\n%s", r.InstanceNames(), r.Fetches, r.HTML)
}
