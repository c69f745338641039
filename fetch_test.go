package vcmp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"
)

func TestFSFetcher(t *testing.T) {
	fsys := fstest.MapFS{
		"card.html":       &fstest.MapFile{Data: []byte(`<div></div>`)},
		"widgets/dial.vc": &fstest.MapFile{Data: []byte(`<svg></svg>`)},
	}
	ctx := context.Background()

	got, err := NewFSFetcher(fsys, "").Fetch(ctx, "card")
	if err != nil || got != `<div></div>` {
		t.Errorf("Fetch(card) = %q, %v", got, err)
	}

	got, err = NewFSFetcher(fsys, ".vc").Fetch(ctx, "widgets/dial")
	if err != nil || got != `<svg></svg>` {
		t.Errorf("Fetch(widgets/dial) = %q, %v", got, err)
	}

	for _, name := range []string{"missing", "../card", "/card"} {
		if _, err := NewFSFetcher(fsys, "").Fetch(ctx, name); !IsNotFound(err) {
			t.Errorf("Fetch(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestHTTPFetcher(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		switch r.URL.Path {
		case "/vc/card.html", "/vc/forms/date picker.html":
			_, _ = w.Write([]byte(`<div></div>`))
		case "/vc/broken.html":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.Client(), srv.URL+"/vc", "")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if got, err := f.Fetch(ctx, "card"); err != nil || got != `<div></div>` {
		t.Errorf("Fetch(card) = %q, %v", got, err)
	}
	if _, err := f.Fetch(ctx, "forms/date picker"); err != nil {
		t.Errorf("Fetch(forms/date picker) error = %v", err)
	}
	if _, err := f.Fetch(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}
	_, err = f.Fetch(ctx, "broken")
	if err == nil || IsNotFound(err) {
		t.Errorf("Fetch(broken) error = %v, want status error", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if paths[1] != "/vc/forms/date%20picker.html" {
		t.Errorf("nested name escaped as %q", paths[1])
	}
}

func TestHTTPFetcherThroughExpander(t *testing.T) {
	srv := httptest.NewServer(http.FileServer(http.FS(fstest.MapFS{
		"card.html": &fstest.MapFile{Data: []byte(`<style>.c{}</style><div class="c">$label</div>`)},
	})))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.Client(), srv.URL+"/", "")
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := New(f).ExpandString(context.Background(), wrap(`<vc $label="hi">card</vc>`))
	if err != nil {
		t.Fatalf("ExpandString failed: %v", err)
	}
	if !strings.Contains(out, `<div class="c" data-vc="card">hi</div>`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHTTPFetcherSizeLimit(t *testing.T) {
	body := `<div>` + strings.Repeat("x", maxTemplateSize-len(`<div></div>`)) + `</div>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exact.html":
			io.WriteString(w, body)
		case "/over.html":
			io.WriteString(w, body+" ")
		}
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.Client(), srv.URL+"/", "")
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.Fetch(context.Background(), "exact")
	if err != nil {
		t.Fatalf("template at the limit: %v", err)
	}
	if len(got) != maxTemplateSize {
		t.Errorf("read %d bytes, want %d", len(got), maxTemplateSize)
	}

	if got, err := f.Fetch(context.Background(), "over"); err == nil {
		t.Errorf("expected error for oversized template, got %d bytes", len(got))
	} else if IsNotFound(err) {
		t.Errorf("oversized template reported as not found: %v", err)
	}
}

func TestDedupSharesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	slow := FetcherFunc(func(ctx context.Context, name string) (string, error) {
		calls.Add(1)
		<-release
		return "<b>" + name + "</b>", nil
	})
	f := Dedup(slow)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = f.Fetch(context.Background(), "card")
		}(i)
	}

	// Give every caller time to join the shared call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("underlying fetcher called %d times, want 1", got)
	}
	for i, r := range results {
		if r != "<b>card</b>" {
			t.Errorf("result %d = %q", i, r)
		}
	}
}

func TestDedupPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	f := Dedup(FetcherFunc(func(context.Context, string) (string, error) {
		return "", boom
	}))
	if _, err := f.Fetch(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}

func TestBundleRoundTrip(t *testing.T) {
	fsys := fstest.MapFS{
		"card.html":         &fstest.MapFile{Data: []byte(`<div class>$title</div>`)},
		"forms/input.html":  &fstest.MapFile{Data: []byte(`<input>`)},
		"notes.txt":         &fstest.MapFile{Data: []byte(`ignored`)},
		".git/config.html":  &fstest.MapFile{Data: []byte(`ignored`)},
		"forms/.hidden.htm": &fstest.MapFile{Data: []byte(`ignored`)},
	}
	b, err := BuildBundle(fsys, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Templates) != 2 {
		t.Fatalf("bundle has %d templates, want 2: %v", len(b.Templates), b.Templates)
	}

	key := []byte("test-secret-key")
	for _, sealed := range []bool{false, true} {
		var buf bytes.Buffer
		if err := WriteBundle(&buf, b, key, sealed); err != nil {
			t.Fatalf("WriteBundle(sealed=%v) failed: %v", sealed, err)
		}
		encoded := buf.String()

		got, err := ReadBundle(strings.NewReader(encoded), key)
		if err != nil {
			t.Fatalf("ReadBundle(sealed=%v) failed: %v", sealed, err)
		}
		if got.Templates["forms/input"] != `<input>` {
			t.Errorf("sealed=%v: forms/input = %q", sealed, got.Templates["forms/input"])
		}

		if _, err := ReadBundle(strings.NewReader(encoded), []byte("other-key")); !IsDecryptionError(err) {
			t.Errorf("sealed=%v: wrong key error = %v, want decryption error", sealed, err)
		}
	}

	if _, err := ReadBundle(strings.NewReader("garbage"), key); err == nil {
		t.Error("garbage bundle should not decode")
	}

	f := NewBundleFetcher(b)
	if got, err := f.Fetch(context.Background(), "card"); err != nil || got != `<div class>$title</div>` {
		t.Errorf("Fetch(card) = %q, %v", got, err)
	}
	if _, err := f.Fetch(context.Background(), "notes"); !IsNotFound(err) {
		t.Errorf("Fetch(notes) error = %v, want ErrNotFound", err)
	}
}
