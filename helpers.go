package vcmp

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component using the
// request's context.
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    vcmp.Render(w, r, vcmp.Document(doc))
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// Document adapts a parsed (and usually expanded) document to a templ
// component, so it can be rendered inside templ layouts or through Render.
func Document(doc *html.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return html.Render(w, doc)
	})
}

// ErrorPage renders a minimal HTML page describing an expansion failure.
// The message is escaped.
func ErrorPage(status int, err error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := templ.EscapeString(fmt.Sprintf("%d %s", status, http.StatusText(status)))
		_, werr := io.WriteString(w, "<!DOCTYPE html><html><head><title>"+title+
			"</title></head><body><h1>"+title+"</h1><pre>"+
			templ.EscapeString(err.Error())+"</pre></body></html>")
		return werr
	})
}
