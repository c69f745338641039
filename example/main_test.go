package main

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pthm/vcmp"
)

func TestIndexPage(t *testing.T) {
	site, err := fs.Sub(siteFiles, "site")
	if err != nil {
		t.Fatal(err)
	}
	templates, err := fs.Sub(site, "vc_components")
	if err != nil {
		t.Fatal(err)
	}
	exp := vcmp.New(vcmp.NewFSFetcher(templates, ".html"), vcmp.WithHooks(Hooks(NewStore())))

	rec := httptest.NewRecorder()
	vcmp.NewServer(site, exp).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	for _, want := range []string{
		`<h1>Todos</h1>`,
		`<strong data-stat="total">5</strong>`,
		`<strong data-stat="pending">4</strong>`,
		`<strong data-stat="completed">1</strong>`,
		`class="todo completed">Fix login bug`,
		`<section class="todo-list open" data-status="pending" data-vc="todo-list">`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in\n%s", want, body)
		}
	}
	if strings.Count(body, ".todo-list ul") != 1 {
		t.Error("todo-list style should be injected once")
	}
	if strings.Contains(body, "<vc") {
		t.Error("placeholder left in page")
	}
}
