// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run binds the listener, logs the resolved address and blocks until the
// context is cancelled, SIGINT/SIGTERM arrives or Shutdown is called.
// Shutdown drains in-flight requests and then runs drain hooks, which is where
// the form demo closes its live form controllers so pending validation runs
// are cancelled:
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithDrainHook(forms.CloseAll),
//	)
//	r.Get("/healthz", httpserver.HealthCheckHandler(log))
//	r.Get("/readyz", httpserver.HealthCheckHandler(log, httpserver.Check{Name: "forms", Probe: forms.Ready}))
//
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Bind and serve failures are wrapped with ErrStart and shutdown failures
// with ErrShutdown.
package httpserver
