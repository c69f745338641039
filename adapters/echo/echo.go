// Package vcmpecho provides Echo framework integration for vcmp.
//
// Serve a directory of pages with every page expanded on request:
//
//	e := echo.New()
//	exp := vcmp.New(vcmp.Dedup(fetcher))
//	vcmpecho.Mount(e, exp, os.DirFS("site"))
//
// Or expand the HTML that ordinary Echo handlers render:
//
//	g := e.Group("/app", vcmpecho.Middleware(exp))
//	g.GET("/", func(c echo.Context) error {
//	    return c.HTML(http.StatusOK, `<html><body><vc>card</vc></body></html>`)
//	})
package vcmpecho

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/vcmp"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	path    string
	onError func(http.ResponseWriter, *http.Request, error)
}

// WithPath sets the URL path prefix the pages are served under.
// Defaults to "/".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithErrorHandler replaces the server's default error page.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// Mount creates a page server and mounts it on an Echo instance.
//
//	e := echo.New()
//	srv := vcmpecho.Mount(e, exp, os.DirFS("site"))
//
//	// With options:
//	srv := vcmpecho.Mount(e, exp, os.DirFS("site"), vcmpecho.WithPath("/docs/"))
func Mount(e *echo.Echo, exp *vcmp.Expander, pages fs.FS, opts ...Option) *vcmp.Server {
	srv, path, h := newServer(exp, pages, "", opts)
	e.Any(path+"*", h)
	return srv
}

// MountGroup creates a page server and mounts it on an Echo group.
// This allows pages to share middleware with the group (auth, logging, etc.).
// prefix must match the group's prefix; it is stripped before the page is
// looked up.
//
//	g := e.Group("/app", authMiddleware)
//	vcmpecho.MountGroup(g, "/app", exp, os.DirFS("site"))
func MountGroup(g *echo.Group, prefix string, exp *vcmp.Expander, pages fs.FS, opts ...Option) *vcmp.Server {
	srv, path, h := newServer(exp, pages, prefix, opts)
	g.Any(path+"*", h)
	return srv
}

func newServer(exp *vcmp.Expander, pages fs.FS, prefix string, opts []Option) (*vcmp.Server, string, echo.HandlerFunc) {
	o := &options{path: "/"}
	for _, opt := range opts {
		opt(o)
	}
	path := "/" + strings.Trim(o.path, "/")
	if path != "/" {
		path += "/"
	}

	srv := vcmp.NewServer(pages, exp)
	if o.onError != nil {
		srv.OnError = o.onError
	}

	var h http.Handler = srv
	if strip := strings.TrimSuffix(prefix, "/") + strings.TrimSuffix(path, "/"); strip != "" {
		h = http.StripPrefix(strip, srv)
	}
	return srv, path, echo.WrapHandler(h)
}

// Middleware expands the HTML responses of the handlers it wraps. Responses
// with another content type pass through unchanged.
//
// An expansion failure is returned as an *echo.HTTPError: 502 when a template
// could not be fetched, 500 otherwise.
func Middleware(exp *vcmp.Expander) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			orig := res.Writer
			buf := &bufferWriter{ResponseWriter: orig, status: http.StatusOK}
			res.Writer = buf
			err := next(c)
			res.Writer = orig
			if err != nil {
				return err
			}

			if !strings.HasPrefix(orig.Header().Get(echo.HeaderContentType), "text/html") {
				orig.WriteHeader(buf.status)
				_, err := orig.Write(buf.body.Bytes())
				return err
			}

			var out bytes.Buffer
			if _, err := exp.ExpandReader(c.Request().Context(), &buf.body, &out); err != nil {
				// Nothing reached the client yet; let the error handler respond.
				res.Committed = false
				res.Size = 0
				status := http.StatusInternalServerError
				if errors.Is(err, vcmp.ErrTemplateFetch) {
					status = http.StatusBadGateway
				}
				return echo.NewHTTPError(status, err.Error()).SetInternal(err)
			}

			orig.Header().Set(echo.HeaderContentLength, strconv.Itoa(out.Len()))
			orig.WriteHeader(buf.status)
			n, err := orig.Write(out.Bytes())
			res.Size = int64(n)
			return err
		}
	}
}

// bufferWriter holds a handler's response until it has been expanded.
type bufferWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *bufferWriter) WriteHeader(code int) {
	w.status = code
}

func (w *bufferWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return vcmpecho.Render(c, vcmp.Document(doc))
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
