package vcmp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pthm/vcmp/lib/dom"
	"golang.org/x/net/html"
)

func scriptLabels(body *html.Node) []string {
	var out []string
	for _, s := range topLevelScripts(body) {
		if src, ok := dom.Attr(s, "src"); ok {
			out = append(out, "src:"+src)
			continue
		}
		out = append(out, dom.Text(s))
	}
	return out
}

func TestInjectOrdering(t *testing.T) {
	doc, err := dom.ParseString(`<html><head><style>.author{}</style></head><body>` +
		`<div>content</div>` +
		`<script>author1()</script>` +
		`<p><script>nested()</script></p>` +
		`<script src="vanilla_components.js"></script>` +
		`<script src="app.js" defer></script>` +
		`</body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	head, body := dom.First(doc, "head"), dom.First(doc, "body")

	before := topLevelScripts(body)
	nested := dom.First(dom.First(body, "p"), "script")

	inject(doc, doc, ".comp{}", "comp()", DefaultLoaderScript)

	if first := dom.Children(head)[0]; first.Data != "style" || dom.Text(first) != ".comp{}" {
		t.Errorf("aggregate style is not the first head child: %q", dom.Text(first))
	}
	if got := len(dom.ByTag(head, "style")); got != 2 {
		t.Errorf("got %d head styles, want 2", got)
	}

	want := []string{"comp()", "author1()", "src:vanilla_components.js", "src:app.js"}
	if diff := cmp.Diff(want, scriptLabels(body)); diff != "" {
		t.Errorf("top-level script order mismatch (-want +got):\n%s", diff)
	}

	after := topLevelScripts(body)
	if after[1] == before[0] {
		t.Error("author script was not re-created")
	}
	if after[2] != before[1] {
		t.Error("loader script should keep its node")
	}
	if after[3] == before[2] {
		t.Error("external author script was not re-created")
	}
	if _, ok := dom.Attr(after[3], "defer"); !ok {
		t.Error("re-created script lost its attributes")
	}
	if dom.First(dom.First(body, "p"), "script") != nested {
		t.Error("nested script must not be touched")
	}
	if dom.Children(body)[0].Data != "div" {
		t.Error("content before the first script moved")
	}
}

func TestInjectWithoutAuthorScripts(t *testing.T) {
	doc, err := dom.ParseString(`<html><head></head><body><main></main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	inject(doc, doc, "", "comp()", "")

	body := dom.First(doc, "body")
	kids := dom.Children(body)
	if len(kids) != 2 || kids[1].Data != "script" {
		t.Fatalf("aggregate script should be appended to body, got %d children", len(kids))
	}
	if dom.First(doc, "style") != nil {
		t.Error("empty style buffer must not inject a block")
	}
}

func TestInjectNothingForEmptyBuffers(t *testing.T) {
	doc, err := dom.ParseString(`<html><head></head><body><script>a()</script></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	before := topLevelScripts(dom.First(doc, "body"))[0]

	inject(doc, doc, " ", "\n", DefaultLoaderScript)

	after := topLevelScripts(dom.First(doc, "body"))
	if len(after) != 1 || after[0] != before {
		t.Error("author scripts must be left alone when no script is injected")
	}
}
