// Command formdemo serves the profile form over HTTP.
//
// Configuration is read from the environment (and a .env file when
// present):
//
//	APP_ENV=development LOG_LEVEL=debug HTTP_ADDR=:8080 \
//	FORM_STRATEGY=rules FORM_MODE=onTouched go run ./cmd/formdemo
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/formkit/internal/web"
	"github.com/dmitrymomot/formkit/pkg/config"
	"github.com/dmitrymomot/formkit/pkg/httpserver"
	"github.com/dmitrymomot/formkit/pkg/logger"
)

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Name      string `env:"APP_NAME" envDefault:"formdemo"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("formdemo failed", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var (
		app     appConfig
		formCfg web.Config
		httpCfg httpserver.Config
	)
	if err := errors.Join(config.Load(&app), config.Load(&formCfg), config.Load(&httpCfg)); err != nil {
		return err
	}

	opts := []logger.Option{
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(web.RequestIDExtractor()),
	}
	if app.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(app.LogLevel))
	}
	if app.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(app.LogFormat)))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr, err := web.LoadTranslator(ctx, formCfg.DefaultLang, log)
	if err != nil {
		return err
	}
	srv, err := web.NewServer(formCfg, tr, web.WithLogger(log))
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "starting formdemo",
		logger.Strategy(formCfg.Strategy),
		logger.Mode(formCfg.Mode),
		slog.String("remove_policy", formCfg.RemovePolicy),
	)
	return httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithDrainHook(srv.Forms().CloseAll),
	).Run(ctx, srv.Router())
}
