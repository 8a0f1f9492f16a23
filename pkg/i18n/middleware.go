package i18n

import (
	"context"
	"net/http"
	"strings"
)

type localeContextKey struct{}

// SetLocale stores the request language in ctx.
func SetLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// GetLocale returns the language stored by SetLocale, or DefaultLanguage.
func GetLocale(ctx context.Context) string {
	if locale, _ := ctx.Value(localeContextKey{}).(string); locale != "" {
		return locale
	}
	return DefaultLanguage
}

// LangExtractor reads a language preference from a request. An empty
// result means no preference.
type LangExtractor func(r *http.Request) string

// FromQuery reads the named query parameter.
func FromQuery(name string) LangExtractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.URL.Query().Get(name))
	}
}

// FromCookie reads the named cookie.
func FromCookie(name string) LangExtractor {
	return func(r *http.Request) string {
		c, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(c.Value)
	}
}

// FromAcceptLanguage reads the Accept-Language header.
func FromAcceptLanguage() LangExtractor {
	return func(r *http.Request) string {
		return r.Header.Get("Accept-Language")
	}
}

// Middleware stores the request language in the context. Extractors are
// tried in order and the first preference is matched against the
// translator's languages; with no extractors the Accept-Language header is
// used.
func Middleware(t *Translator, extractors ...LangExtractor) func(http.Handler) http.Handler {
	if len(extractors) == 0 {
		extractors = []LangExtractor{FromAcceptLanguage()}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := t.DefaultLanguage()
			for _, extract := range extractors {
				if pref := extract(r); pref != "" {
					lang = t.Match(pref)
					break
				}
			}
			next.ServeHTTP(w, r.WithContext(SetLocale(r.Context(), lang)))
		})
	}
}
