package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/logger"
)

// Registry holds the live form controllers of rendered pages, keyed by a
// random form id. When full, adding a form closes the oldest one.
type Registry struct {
	mu     sync.Mutex
	forms  map[string]registered
	seq    uint64
	max    int
	closed bool
	log    *slog.Logger
}

type registered struct {
	c   *form.Controller
	seq uint64
}

// NewRegistry returns a registry holding at most max forms.
func NewRegistry(max int, log *slog.Logger) *Registry {
	if max < 1 {
		max = 1
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Registry{
		forms: make(map[string]registered),
		max:   max,
		log:   log.With(logger.Component("registry")),
	}
}

// Add stores c under a new id.
func (r *Registry) Add(c *form.Controller) (string, error) {
	id := uuid.NewString()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", ErrRegistryShut
	}
	var evicted *form.Controller
	if len(r.forms) >= r.max {
		oldest, first := "", true
		for k, f := range r.forms {
			if first || f.seq < r.forms[oldest].seq {
				oldest, first = k, false
			}
		}
		evicted = r.forms[oldest].c
		delete(r.forms, oldest)
	}
	r.seq++
	r.forms[id] = registered{c: c, seq: r.seq}
	r.mu.Unlock()

	if evicted != nil {
		r.log.Debug("evicted oldest form", logger.Form(evicted.Name()))
		_ = evicted.Close()
	}
	return id, nil
}

// Get returns the controller stored under id.
func (r *Registry) Get(id string) (*form.Controller, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	return f.c, nil
}

// Delete closes and forgets the form stored under id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	f, ok := r.forms[id]
	delete(r.forms, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	return f.c.Close()
}

// Len returns the number of live forms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// CloseAll closes every form and refuses new ones. It is meant to run as a
// server drain hook.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	forms := r.forms
	r.forms = make(map[string]registered)
	r.mu.Unlock()

	var errs []error
	for _, f := range forms {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := f.c.Close(); err != nil && !errors.Is(err, form.ErrClosed) {
			errs = append(errs, err)
		}
	}
	r.log.InfoContext(ctx, "closed live forms", slog.Int("count", len(forms)))
	return errors.Join(errs...)
}

// Ready fails once CloseAll has run.
func (r *Registry) Ready(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryShut
	}
	return nil
}
