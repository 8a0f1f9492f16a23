package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor returns an attribute derived from a record's context,
// or false when the context has nothing to add. The web server registers
// one for the request id; WithContextValue builds one from a context key.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextHandler tags every record with the attributes its extractors find
// in the record's context. Extraction runs per record, so a shared logger
// picks up the request id of whichever request is logging.
//
// An extracted attribute never overrides one the caller set: it is skipped
// when the record, or a logger derived with With since the last group,
// already has the key. A form handler that logs RequestID explicitly is
// tagged once.
type ContextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
	bound      map[string]struct{}
}

// NewContextHandler wraps next. Nil extractors are ignored; with none left
// next is returned as is.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	var kept []ContextExtractor
	for _, ex := range extractors {
		if ex != nil {
			kept = append(kept, ex)
		}
	}
	if len(kept) == 0 {
		return next
	}
	return &ContextHandler{next: next, extractors: kept}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	var own map[string]struct{}
	for _, ex := range h.extractors {
		attr, ok := ex(ctx)
		if !ok {
			continue
		}
		if own == nil {
			own = h.keysOf(rec)
		}
		if _, taken := own[attr.Key]; taken {
			continue
		}
		own[attr.Key] = struct{}{}
		rec.AddAttrs(attr)
	}
	return h.next.Handle(ctx, rec)
}

// keysOf collects the keys the record and the bound attributes already use.
func (h *ContextHandler) keysOf(rec slog.Record) map[string]struct{} {
	keys := make(map[string]struct{}, rec.NumAttrs()+len(h.bound))
	for k := range h.bound {
		keys[k] = struct{}{}
	}
	rec.Attrs(func(a slog.Attr) bool {
		keys[a.Key] = struct{}{}
		return true
	})
	return keys
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]struct{}, len(h.bound)+len(attrs))
	for k := range h.bound {
		bound[k] = struct{}{}
	}
	for _, a := range attrs {
		bound[a.Key] = struct{}{}
	}
	return &ContextHandler{
		next:       h.next.WithAttrs(attrs),
		extractors: h.extractors,
		bound:      bound,
	}
}

// WithGroup starts a fresh key space: extracted attributes land inside the
// group, away from anything bound before it.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{
		next:       h.next.WithGroup(name),
		extractors: h.extractors,
	}
}
