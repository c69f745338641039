package vcmp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pthm/vcmp/lib/dom"
	"github.com/pthm/vcmp/lib/merge"
	"github.com/pthm/vcmp/lib/parse"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/semaphore"
)

// fetchResult carries a completed fetch back to the drain loop.
type fetchResult struct {
	name string
	raw  string
	err  error
}

// session is the state of one expansion pass. Everything except the fetch
// goroutines runs on the goroutine that called drain; fetch results come back
// over results, so the cache, queue and counters need no locking.
type session struct {
	id   string
	exp  *Expander
	root *html.Node
	log  *zap.Logger

	cache       *Cache
	queue       queue
	inflight    map[string][]*placeholder
	outstanding int

	sem     *semaphore.Weighted
	results chan fetchResult
}

func (e *Expander) newSession(root *html.Node) *session {
	id := uuid.NewString()
	return &session{
		id:       id,
		exp:      e,
		root:     root,
		log:      e.log.With(zap.String("session", id)),
		cache:    NewCache(),
		inflight: make(map[string][]*placeholder),
		sem:      semaphore.NewWeighted(e.maxFetches),
		results:  make(chan fetchResult),
	}
}

// drain resolves placeholders until the queue is empty and no fetch is
// outstanding. The counter matters: the queue can be empty while a fetch is
// still on its way to discovering nested placeholders.
func (s *session) drain(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.queue.push(scan(s.root, s.exp.tag)...)

	for {
		for {
			// Cache hits never block; a self-including template only
			// stops here.
			if err := ctx.Err(); err != nil {
				return err
			}
			p, ok := s.queue.pop()
			if !ok {
				break
			}
			if err := s.resolve(ctx, p); err != nil {
				return err
			}
		}

		if s.outstanding == 0 {
			return nil
		}

		select {
		case r := <-s.results:
			s.outstanding--
			if err := s.complete(r); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// resolve expands p from the cache, or parks it behind a fetch for its name.
func (s *session) resolve(ctx context.Context, p *placeholder) error {
	if p.name == "" {
		return fmt.Errorf("%w: <%s> with %d attributes", ErrEmptyReference, s.exp.tag, len(p.attrs))
	}

	if rec, ok := s.cache.Get(p.name); ok {
		s.log.Debug("cache hit", zap.String("component", p.name))
		return s.instantiate(p, rec)
	}

	if waiting, ok := s.inflight[p.name]; ok {
		s.inflight[p.name] = append(waiting, p)
		return nil
	}

	s.inflight[p.name] = []*placeholder{p}
	s.outstanding++
	s.log.Debug("fetch", zap.String("component", p.name))
	go s.fetch(ctx, p.name)
	return nil
}

// fetch runs on its own goroutine and must only touch the fetcher and the
// results channel.
func (s *session) fetch(ctx context.Context, name string) {
	res := fetchResult{name: name}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		res.err = err
	} else {
		res.raw, res.err = s.exp.fetcher.Fetch(ctx, name)
		s.sem.Release(1)
	}

	select {
	case s.results <- res:
	case <-ctx.Done():
	}
}

// complete parses a fetched template, caches it and expands every
// placeholder that was waiting on it.
func (s *session) complete(r fetchResult) error {
	waiting := s.inflight[r.name]
	delete(s.inflight, r.name)

	if r.err != nil {
		return &TemplateFetchError{Name: r.name, Err: r.err}
	}

	t, err := parse.Parse(r.raw)
	if err != nil {
		return &TemplateFetchError{Name: r.name, Err: err}
	}
	rec := s.cache.Put(r.name, t)
	s.log.Debug("fetched",
		zap.String("component", r.name),
		zap.Stringer("kind", rec.Kind),
		zap.Int("waiting", len(waiting)),
	)

	for _, p := range waiting {
		if err := s.instantiate(p, rec); err != nil {
			return err
		}
	}
	return nil
}

// instantiate splices a fresh copy of rec's markup over p, merges p's
// attributes, marks the result and queues any placeholders inside it.
func (s *session) instantiate(p *placeholder, rec *Record) error {
	root, err := dom.Splice(p.node, rec.Markup, rec.Kind)
	if err != nil {
		return &SpliceIntegrityError{Name: p.name, Err: err}
	}

	root, err = merge.Merge(root, p.attrs, merge.Options{Sigil: s.exp.sigil, Kind: rec.Kind})
	if err != nil {
		return &SpliceIntegrityError{Name: p.name, Err: err}
	}

	dom.SetAttr(root, OriginAttr, p.name)
	dom.SetAttr(root, PendingAttr, "")

	nested := scan(root, s.exp.tag)
	s.queue.push(nested...)
	s.log.Debug("spliced", zap.String("component", p.name), zap.Int("nested", len(nested)))
	return nil
}
