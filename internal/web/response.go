package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/formkit/pkg/binder"
	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/i18n"
	"github.com/dmitrymomot/formkit/pkg/logger"
)

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ErrNilResponse is reported when a handler returns neither a response nor an error.
var ErrNilResponse = errors.New("handler returned nil response")

// IsDataStar reports whether r was sent by the DataStar client, which
// expects server-sent patches instead of a page.
func IsDataStar(r *http.Request) bool {
	if r.Header.Get("Datastar-Request") == "true" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	return r.URL.Query().Has("datastar")
}

type patch struct {
	component templ.Component
	options   []datastar.PatchElementOption
}

// page renders full for plain requests and a stream of element and signal
// patches for DataStar requests.
type page struct {
	status  int
	full    templ.Component
	patches []patch
	signals map[string]any
}

func (p page) withPatch(c templ.Component, opts ...datastar.PatchElementOption) page {
	p.patches = append(p.patches, patch{component: c, options: opts})
	return p
}

func (p page) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		sse := datastar.NewSSE(w, r)
		for _, pt := range p.patches {
			if err := sse.PatchElementTempl(pt.component, pt.options...); err != nil {
				return err
			}
		}
		if len(p.signals) > 0 {
			return sse.MarshalAndPatchSignals(p.signals)
		}
		return nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if p.status != 0 {
		w.WriteHeader(p.status)
	}
	return p.full.Render(r.Context(), w)
}

type empty struct{ status int }

func (e empty) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) (Response, error)

func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h(w, r)
		if err == nil && resp == nil {
			err = ErrNilResponse
		}
		if err == nil {
			if err = resp.Render(w, r); err == nil {
				return
			}
		}
		s.renderError(w, r, err)
	}
}

type errorInfo struct {
	status int
	key    string
	level  slog.Level
}

func classifyError(err error) errorInfo {
	info := func(status int, key string) errorInfo {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		return errorInfo{status: status, key: key, level: level}
	}

	switch {
	case errors.Is(err, ErrFormNotFound):
		return info(http.StatusNotFound, "error.not_found")
	case errors.Is(err, form.ErrClosed):
		return info(http.StatusGone, "error.gone")
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return info(http.StatusUnsupportedMediaType, "error.unsupported")
	case errors.Is(err, binder.ErrInvalidForm),
		errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrInvalidFieldName),
		errors.Is(err, binder.ErrTooManyFields),
		errors.Is(err, ErrMissingSignal),
		errors.Is(err, ErrUnknownPath),
		errors.Is(err, ErrBadIndex),
		errors.Is(err, form.ErrIndexOutOfRange):
		return info(http.StatusBadRequest, "error.bad_request")
	case errors.Is(err, form.ErrRemoveDenied), errors.Is(err, form.ErrSubmitInProgress), errors.Is(err, form.ErrSuperseded):
		return info(http.StatusConflict, "error.conflict")
	case errors.Is(err, ErrRegistryShut):
		return info(http.StatusServiceUnavailable, "error.unavailable")
	}
	return info(http.StatusInternalServerError, "error.internal")
}

// renderError answers with a toast for DataStar requests and an error page
// otherwise.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	info := classifyError(err)
	msg := s.tr.T(i18n.GetLocale(ctx), info.key, nil)

	s.log.LogAttrs(ctx, info.level, "request failed",
		logger.Error(err),
		slog.Int("status", info.status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Bool("datastar", IsDataStar(r)),
	)

	if IsDataStar(r) {
		sse := datastar.NewSSE(w, r)
		if perr := sse.PatchElementTempl(toast(msg, "error"),
			datastar.WithSelector("#"+toastsID),
			datastar.WithMode(datastar.ElementPatchModePrepend),
		); perr != nil {
			s.log.ErrorContext(ctx, "failed to render error toast", logger.Error(perr))
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(info.status)
	if rerr := errorPage(info.status, msg, RequestID(ctx)).Render(ctx, w); rerr != nil {
		s.log.ErrorContext(ctx, "failed to render error page", logger.Error(rerr))
	}
}
