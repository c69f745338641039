package main

import (
	"embed"
	"io/fs"
	"log"
	"net/http"

	"github.com/pthm/vcmp"
	"go.uber.org/zap"
)

//go:embed site
var siteFiles embed.FS

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// Create store
	store := NewStore()

	site, err := fs.Sub(siteFiles, "site")
	if err != nil {
		log.Fatal(err)
	}
	templates, err := fs.Sub(site, "vc_components")
	if err != nil {
		log.Fatal(err)
	}

	// Templates come from the embedded site; hooks fill instances from the store
	exp := vcmp.New(
		vcmp.Dedup(vcmp.NewFSFetcher(templates, ".html")),
		vcmp.WithHooks(Hooks(store)),
		vcmp.WithLogger(logger),
	)

	mux := http.NewServeMux()
	mux.Handle("/", vcmp.NewServer(site, exp))
	mux.HandleFunc("POST /toggle/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !store.Toggle(r.PathValue("id")) {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	// Start server
	addr := ":8080"
	logger.Info("starting server", zap.String("url", "http://localhost"+addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
