// Package logger builds *slog.Logger instances from functional options and
// provides attribute constructors with stable key names for form events.
//
// New picks slog.NewTextHandler or slog.NewJSONHandler from the configured
// Format and wraps it with ContextHandler, which adds attributes pulled from
// the record's context through registered ContextExtractor callbacks, such
// as the web server's request id. Attributes the caller sets win over
// extracted ones.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "formdemo"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	log.DebugContext(ctx, "validation finished",
//	    logger.Form("profile"),
//	    logger.Fields([]string{"age"}),
//	    logger.ErrorCount(1),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
