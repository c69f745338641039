package vcmpecho

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/pthm/vcmp"
	"github.com/pthm/vcmp/lib/dom"
)

const page = `<html><head></head><body><vc $label="%s">badge</vc></body></html>`

func newExpander() *vcmp.Expander {
	return vcmp.New(vcmp.NewTestFetcher(map[string]string{
		"badge": `<style>.badge{}</style><span class="badge">$label</span>`,
	}))
}

func pages() fstest.MapFS {
	return fstest.MapFS{
		"index.html":  &fstest.MapFile{Data: []byte(strings.Replace(page, "%s", "home", 1))},
		"broken.html": &fstest.MapFile{Data: []byte(`<vc>ghost</vc>`)},
	}
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMount(t *testing.T) {
	e := echo.New()
	srv := Mount(e, newExpander(), pages())
	if srv == nil {
		t.Fatal("Mount returned nil server")
	}

	rec := get(e, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<span class="badge" data-vc="badge">home</span>`) {
		t.Errorf("page not expanded:\n%s", rec.Body.String())
	}
}

func TestMountWithPath(t *testing.T) {
	e := echo.New()
	Mount(e, newExpander(), pages(), WithPath("/docs/"))

	if rec := get(e, "/docs/index.html"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 under /docs/, got %d", rec.Code)
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	var hit bool
	g := e.Group("/app", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			hit = true
			return next(c)
		}
	})
	MountGroup(g, "/app", newExpander(), pages())

	rec := get(e, "/app/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !hit {
		t.Error("group middleware did not run")
	}
}

func TestMountErrorHandler(t *testing.T) {
	e := echo.New()
	var got error
	Mount(e, newExpander(), pages(), WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	rec := get(e, "/broken.html")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if _, ok := vcmp.IsFetchError(got); !ok {
		t.Errorf("error handler got %v, want fetch error", got)
	}
}

func TestMiddlewareExpandsHTML(t *testing.T) {
	e := echo.New()
	e.Use(Middleware(newExpander()))
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusCreated, strings.Replace(page, "%s", "mw", 1))
	})
	e.GET("/json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"vc": "badge"})
	})
	e.GET("/broken", func(c echo.Context) error {
		return c.HTML(http.StatusOK, `<vc>ghost</vc>`)
	})

	rec := get(e, "/")
	if rec.Code != http.StatusCreated {
		t.Errorf("expected handler status 201, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-vc="badge">mw</span>`) || !strings.Contains(body, "<style>.badge{}</style>") {
		t.Errorf("response not expanded:\n%s", body)
	}

	rec = get(e, "/json")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"vc":"badge"`) {
		t.Errorf("json response altered: %d %s", rec.Code, rec.Body.String())
	}

	rec = get(e, "/broken")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for unknown component, got %d", rec.Code)
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		doc, err := dom.ParseString(strings.Replace(page, "%s", "rendered", 1))
		if err != nil {
			return err
		}
		if _, err := newExpander().Expand(c.Request().Context(), doc); err != nil {
			return err
		}
		return Render(c, vcmp.Document(doc))
	})

	rec := get(e, "/")
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `data-vc="badge">rendered</span>`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
