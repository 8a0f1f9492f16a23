package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/formkit/internal/profile"
	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/httpserver"
	"github.com/dmitrymomot/formkit/pkg/i18n"
	"github.com/dmitrymomot/formkit/pkg/logger"
)

// Server serves the profile form and keeps one controller per rendered page.
type Server struct {
	cfg      settings
	tr       *i18n.Translator
	forms    *Registry
	log      *slog.Logger
	now      func() time.Time
	onSubmit form.SubmitFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger; forms log through it as well.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock sets the source of the default date of birth.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSubmitHandler replaces the handler run with a valid profile. The
// default logs the submitted values.
func WithSubmitHandler(fn form.SubmitFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.onSubmit = fn
		}
	}
}

// NewServer validates cfg and builds the server.
func NewServer(cfg Config, tr *i18n.Translator, opts ...Option) (*Server, error) {
	st, err := cfg.settings()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg: st,
		tr:  tr,
		log: logger.Discard(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("web"))
	s.forms = NewRegistry(st.maxLive, s.log)
	if s.onSubmit == nil {
		s.onSubmit = s.logSubmission
	}
	return s, nil
}

// Forms returns the live form registry.
func (s *Server) Forms() *Registry { return s.forms }

// Router returns the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestIDMiddleware,
		middleware.RealIP,
		accessLog(s.log),
		middleware.Recoverer,
		i18n.Middleware(s.tr, i18n.FromQuery("lang"), i18n.FromCookie("lang"), i18n.FromAcceptLanguage()),
	)

	r.Get("/healthz", httpserver.HealthCheckHandler(s.log))
	r.Get("/readyz", httpserver.HealthCheckHandler(s.log, httpserver.Check{Name: "forms", Probe: s.forms.Ready}))

	r.Get("/", s.handle(s.index))
	r.Route("/forms/{id}", func(r chi.Router) {
		r.Get("/", s.handle(s.show))
		r.Delete("/", s.handle(s.unmount))
		r.Post("/fields/{path}", s.handle(s.field))
		r.Post("/phone", s.handle(s.appendPhone))
		r.Post("/phone/{index}/remove", s.handle(s.removePhone))
		r.Post("/submit", s.handle(s.submit))
		r.Post("/reset", s.handle(s.reset))
	})
	return r
}

func (s *Server) newForm() (*form.Controller, error) {
	return profile.New(s.cfg.strategy, s.now(),
		form.WithMode(s.cfg.mode),
		form.WithReValidateMode(s.cfg.reValidate),
		form.WithLogger(s.log),
	)
}

func (s *Server) logSubmission(ctx context.Context, values form.Values) error {
	s.log.InfoContext(ctx, "profile submitted",
		logger.Strategy(s.cfg.strategy.String()),
		slog.Any("values", values),
	)
	return nil
}
