package vcmp

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/pthm/vcmp/lib/dom"
	"go.uber.org/zap"
)

// Server serves HTML pages from a file system with every page expanded on
// request. Non-HTML files are served as-is.
//
//	exp := vcmp.New(vcmp.Dedup(fetcher), vcmp.WithHooks(reg))
//	http.Handle("/", vcmp.NewServer(os.DirFS("site"), exp))
//
// Each request runs its own pass, so pages never share template caches.
type Server struct {
	pages  fs.FS
	exp    *Expander
	static http.Handler
	log    *zap.Logger

	// OnError is called when a page fails to expand.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewServer creates a Server for the pages in fsys.
func NewServer(fsys fs.FS, exp *Expander) *Server {
	srv := &Server{
		pages:  fsys,
		exp:    exp,
		static: http.FileServer(http.FS(fsys)),
		log:    exp.log,
	}

	// Default error handler
	srv.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			status = http.StatusNotFound
		case errors.Is(err, ErrTemplateFetch):
			status = http.StatusBadGateway
		}
		w.WriteHeader(status)
		_ = ErrorPage(status, err).Render(r.Context(), w)
	}

	return srv
}

// ServeHTTP implements http.Handler.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || strings.HasSuffix(r.URL.Path, "/") {
		name = path.Join(name, "index.html")
	}
	if !strings.HasSuffix(name, ".html") {
		srv.static.ServeHTTP(w, r)
		return
	}

	f, err := srv.pages.Open(name)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	rep, err := srv.exp.Expand(r.Context(), doc)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.log.Debug("served",
		zap.String("page", name),
		zap.String("session", rep.Session),
		zap.Int("instances", len(rep.Instances)),
	)

	if err := Render(w, r, Document(doc)); err != nil {
		srv.log.Warn("render page", zap.String("page", name), zap.Error(err))
	}
}

func (srv *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	srv.log.Warn("expand page", zap.String("path", r.URL.Path), zap.Error(err))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	srv.OnError(w, r, err)
}
