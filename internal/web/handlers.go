package web

import (
	"context"
	"fmt"
	"maps"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/formkit/internal/profile"
	"github.com/dmitrymomot/formkit/pkg/binder"
	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/i18n"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// index mounts a fresh form and renders the page.
func (s *Server) index(_ http.ResponseWriter, r *http.Request) (Response, error) {
	c, err := s.newForm()
	if err != nil {
		return nil, err
	}
	id, err := s.forms.Add(c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	v, err := s.view(r, id, c)
	if err != nil {
		return nil, err
	}
	return page{full: pageView(v)}, nil
}

func (s *Server) show(_ http.ResponseWriter, r *http.Request) (Response, error) {
	id, c, err := s.lookup(r)
	if err != nil {
		return nil, err
	}
	v, err := s.view(r, id, c)
	if err != nil {
		return nil, err
	}
	return page{full: pageView(v), signals: v.signals()}.withPatch(formView(v)), nil
}

// unmount closes the form; later requests for it get 404.
func (s *Server) unmount(_ http.ResponseWriter, r *http.Request) (Response, error) {
	if err := s.forms.Delete(chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return empty{status: http.StatusNoContent}, nil
}

// field applies one edit (change, then blur) and patches the error
// elements of the fields the edit affected.
func (s *Server) field(_ http.ResponseWriter, r *http.Request) (Response, error) {
	id, c, err := s.lookup(r)
	if err != nil {
		return nil, err
	}
	path := chi.URLParam(r, "path")
	if _, ok := c.GetValue(path); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	raw, err := fieldValue(r, path)
	if err != nil {
		return nil, err
	}
	def, _ := fieldpath.Get(c.Defaults(), path)

	var (
		mu       sync.Mutex
		affected = []string{path}
		all      bool
	)
	unsubscribe := c.Subscribe(func(u form.Update) {
		mu.Lock()
		defer mu.Unlock()
		if u.Fields == nil {
			all = true
		}
		affected = append(affected, u.Fields...)
	})
	defer unsubscribe()

	ctx := r.Context()
	if err := c.Change(ctx, path, coerce(def, raw)); err != nil {
		return nil, err
	}
	if err := c.Blur(ctx, path); err != nil {
		return nil, err
	}

	v, err := s.view(r, id, c)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	changed, whole := slices.Clone(affected), all
	mu.Unlock()

	p := page{full: pageView(v)}
	for _, ep := range v.errorPaths() {
		if whole || touches(ep, changed) {
			p = p.withPatch(errorView(v, ep))
		}
	}
	return p.withPatch(statusView(v)), nil
}

func (s *Server) appendPhone(_ http.ResponseWriter, r *http.Request) (Response, error) {
	return s.phoneOp(r, func(arr *form.FieldArray) error {
		return arr.Append(profile.NewPhone())
	})
}

func (s *Server) removePhone(_ http.ResponseWriter, r *http.Request) (Response, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadIndex, chi.URLParam(r, "index"))
	}
	return s.phoneOp(r, func(arr *form.FieldArray) error {
		return arr.Remove(index)
	})
}

// phoneOp runs an operation on the phone list. DataStar clients get the
// list and the matching signals back; plain posts save the posted values
// first and are redirected to the form.
func (s *Server) phoneOp(r *http.Request, op func(*form.FieldArray) error) (Response, error) {
	id, c, err := s.lookup(r)
	if err != nil {
		return nil, err
	}
	if !IsDataStar(r) {
		if err := s.applyPosted(r.Context(), c, r); err != nil {
			return nil, err
		}
	}
	arr, err := s.phones(c)
	if err != nil {
		return nil, err
	}
	before := arr.Len()
	if err := op(arr); err != nil {
		return nil, err
	}
	if !IsDataStar(r) {
		return redirect{url: "/forms/" + id}, nil
	}

	v, err := s.view(r, id, c)
	if err != nil {
		return nil, err
	}
	signals := v.signals()
	for i := len(v.Phones); i < before; i++ {
		signals[signalName(fieldpath.Index(profile.FieldPhone, i, profile.FieldPhoneNumber))] = nil
	}
	return page{full: pageView(v), signals: signals}.
		withPatch(phoneListView(v)).
		withPatch(statusView(v)), nil
}

// submit stores every posted value and runs the submission. Invalid
// submissions re-render with their errors and status 422.
func (s *Server) submit(_ http.ResponseWriter, r *http.Request) (Response, error) {
	id, c, err := s.lookup(r)
	if err != nil {
		return nil, err
	}
	ctx := r.Context()
	if err := s.applyPosted(ctx, c, r); err != nil {
		return nil, err
	}

	status := http.StatusOK
	if err := c.HandleSubmit(ctx, s.onSubmit); err != nil {
		if !validator.IsValidationError(err) {
			return nil, err
		}
		status = http.StatusUnprocessableEntity
	}

	v, err := s.view(r, id, c)
	if err != nil {
		return nil, err
	}
	return page{status: status, full: pageView(v), signals: v.signals()}.withPatch(formView(v)), nil
}

func (s *Server) reset(_ http.ResponseWriter, r *http.Request) (Response, error) {
	id, c, err := s.lookup(r)
	if err != nil {
		return nil, err
	}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	if !IsDataStar(r) {
		return redirect{url: "/forms/" + id}, nil
	}
	v, err := s.view(r, id, c)
	if err != nil {
		return nil, err
	}
	return page{full: pageView(v), signals: v.signals()}.withPatch(formView(v)), nil
}

func (s *Server) lookup(r *http.Request) (string, *form.Controller, error) {
	id := chi.URLParam(r, "id")
	c, err := s.forms.Get(id)
	if err != nil {
		return "", nil, err
	}
	return id, c, nil
}

func (s *Server) phones(c *form.Controller) (*form.FieldArray, error) {
	return c.FieldArray(profile.FieldPhone, form.WithRemovePolicy(s.cfg.policy))
}

func (s *Server) view(r *http.Request, id string, c *form.Controller) (view, error) {
	arr, err := s.phones(c)
	if err != nil {
		return view{}, err
	}
	return newView(id, i18n.GetLocale(r.Context()), c, arr, s.tr), nil
}

// applyPosted stores the posted record's top-level fields the form knows,
// marking them dirty. Unknown fields are ignored.
func (s *Server) applyPosted(ctx context.Context, c *form.Controller, r *http.Request) error {
	record, err := binder.Request(r)
	if err != nil {
		return err
	}
	defaults := c.Defaults()
	for _, key := range slices.Sorted(maps.Keys(record)) {
		def, known := defaults[key]
		if !known {
			continue
		}
		if err := c.SetValue(ctx, key, coerce(def, record[key]), form.ShouldDirty()); err != nil {
			return err
		}
	}
	return nil
}

// fieldValue reads the value posted for path: from the DataStar signals, or
// from a form or JSON body.
func fieldValue(r *http.Request, path string) (any, error) {
	if IsDataStar(r) {
		signals := make(map[string]any)
		if err := datastar.ReadSignals(r, &signals); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMissingSignal, err)
		}
		v, ok := signals[signalName(path)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSignal, path)
		}
		return v, nil
	}

	record, err := binder.Request(r)
	if err != nil {
		return nil, err
	}
	v, ok := fieldpath.Get(record, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSignal, path)
	}
	return v, nil
}

// coerce converts posted text to the type of the default value, so an
// untouched number field compares equal to its default. Values that do not
// convert are kept for the resolver to report.
func coerce(def, v any) any {
	switch d := def.(type) {
	case int:
		switch x := v.(type) {
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
				return n
			}
		case float64:
			if x == math.Trunc(x) && !math.IsInf(x, 0) {
				return int(x)
			}
		}
	case map[string]any:
		if m, ok := v.(map[string]any); ok {
			out := make(map[string]any, len(m))
			for k, x := range m {
				out[k] = coerce(d[k], x)
			}
			return out
		}
	case []any:
		if list, ok := v.([]any); ok && len(d) > 0 {
			out := make([]any, len(list))
			for i, x := range list {
				out[i] = coerce(d[0], x)
			}
			return out
		}
	}
	return v
}

// touches reports whether path is one of changed or lies above or below one.
func touches(path string, changed []string) bool {
	return slices.ContainsFunc(changed, func(c string) bool {
		return fieldpath.HasPrefix(path, c) || fieldpath.HasPrefix(c, path)
	})
}

type redirect struct{ url string }

func (rd redirect) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rd.url, http.StatusSeeOther)
	return nil
}
