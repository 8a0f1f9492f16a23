package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/formkit/pkg/logger"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// DefaultLanguage is used when no language is configured or detected.
const DefaultLanguage = "en"

// Translator resolves message keys per language. It is safe for concurrent use.
type Translator struct {
	mu             sync.RWMutex
	translations   map[string]map[string]any
	defaultLang    string
	fallbackToKey  bool
	missingLogMode bool
	logger         *slog.Logger

	matcher language.Matcher
	langs   []string
}

// Option configures a Translator.
type Option func(*Translator)

// WithDefaultLanguage sets the language used when a request matches none.
func WithDefaultLanguage(lang string) Option {
	return func(t *Translator) {
		if lang != "" {
			t.defaultLang = lang
		}
	}
}

// WithFallbackToKey makes T return the key itself for missing messages.
// Enabled by default.
func WithFallbackToKey(fallback bool) Option {
	return func(t *Translator) {
		t.fallbackToKey = fallback
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMissingTranslationsLogging logs every lookup of a missing key.
func WithMissingTranslationsLogging(enabled bool) Option {
	return func(t *Translator) {
		t.missingLogMode = enabled
	}
}

// NewTranslator loads the adapter's translations.
func NewTranslator(ctx context.Context, adapter TranslationAdapter, opts ...Option) (*Translator, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}

	t := &Translator{
		defaultLang:   DefaultLanguage,
		fallbackToKey: true,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}

	translations, err := adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(translations) == 0 {
		return nil, ErrNoTranslations
	}
	for lang, messages := range translations {
		if lang == "" || messages == nil {
			return nil, fmt.Errorf("%w: empty language %q", ErrInvalidCatalogue, lang)
		}
	}

	t.translations = translations
	t.buildMatcher()
	t.logger.DebugContext(ctx, "translations loaded",
		logger.Component("i18n"),
		slog.Any("languages", t.supportedLanguages()),
	)
	return t, nil
}

// buildMatcher puts the default language first so it wins when nothing matches.
func (t *Translator) buildMatcher() {
	langs := t.supportedLanguages()
	if i := slices.Index(langs, t.defaultLang); i > 0 {
		langs = append([]string{t.defaultLang}, slices.Delete(langs, i, i+1)...)
	}

	tags := make([]language.Tag, len(langs))
	for i, l := range langs {
		tag, err := language.Parse(l)
		if err != nil {
			tag = language.Und
		}
		tags[i] = tag
	}
	t.langs = langs
	t.matcher = language.NewMatcher(tags)
}

func (t *Translator) supportedLanguages() []string {
	langs := make([]string, 0, len(t.translations))
	for lang := range t.translations {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// SupportedLanguages lists the loaded languages, sorted.
func (t *Translator) SupportedLanguages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.supportedLanguages()
}

// DefaultLanguage returns the configured default language.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

// Match picks the loaded language best matching an Accept-Language header
// value or a plain language code. Unknown or malformed input yields the
// default language.
func (t *Translator) Match(accept string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	accept = strings.TrimSpace(accept)
	if accept == "" || len(t.langs) == 0 {
		return t.defaultLang
	}
	desired, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(desired) == 0 {
		return t.defaultLang
	}
	_, idx, confidence := t.matcher.Match(desired...)
	if confidence == language.No {
		return t.defaultLang
	}
	return t.langs[idx]
}

// HasTranslation reports whether key resolves for lang, counting the
// default-language fallback.
func (t *Translator) HasTranslation(lang, key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.lookup(lang, key)
	return ok
}

// T translates key for lang, substituting %{name} placeholders from params.
// Missing messages fall back to the key when WithFallbackToKey is on, and
// to the empty string otherwise.
func (t *Translator) T(lang, key string, params map[string]any) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	msg, ok := t.lookup(lang, key)
	if !ok {
		if t.missingLogMode {
			t.logger.Warn("translation not found", slog.String("lang", lang), slog.String("key", key))
		}
		if t.fallbackToKey {
			return substitute(key, params)
		}
		return ""
	}
	return substitute(msg, params)
}

// Tc translates key for the language stored in ctx.
func (t *Translator) Tc(ctx context.Context, key string, params map[string]any) string {
	return t.T(GetLocale(ctx), key, params)
}

// Message renders a validation error for lang. Errors without a translation
// key, or whose key the catalogue lacks, keep their own message.
func (t *Translator) Message(lang string, verr validator.ValidationError) string {
	if verr.TranslationKey == "" {
		return verr.Message
	}
	t.mu.RLock()
	msg, ok := t.lookup(lang, verr.TranslationKey)
	t.mu.RUnlock()
	if !ok {
		return verr.Message
	}
	return substitute(msg, verr.TranslationValues)
}

// Messages renders the first error per field, keyed by field path.
func (t *Translator) Messages(lang string, errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, verr := range errs {
		if _, ok := out[verr.Field]; !ok {
			out[verr.Field] = t.Message(lang, verr)
		}
	}
	return out
}

// lookup finds a string message; t.mu must be held. Unsupported languages
// are looked up in the default language.
func (t *Translator) lookup(lang, key string) (string, bool) {
	messages, ok := t.translations[lang]
	if !ok {
		messages, ok = t.translations[t.defaultLang]
		if !ok {
			return "", false
		}
	}
	val, ok := nested(messages, key)
	if !ok {
		return "", false
	}
	switch v := val.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

// nested walks dot-separated keys: "validation.min" is m["validation"]["min"].
// A flat "validation.min" key is tried first.
func nested(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(key, ".")
	if !found {
		return nil, false
	}
	switch child := m[head].(type) {
	case map[string]any:
		return nested(child, rest)
	case map[any]any:
		converted := make(map[string]any, len(child))
		for k, v := range child {
			if ks, ok := k.(string); ok {
				converted[ks] = v
			}
		}
		return nested(converted, rest)
	}
	return nil, false
}

var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

// substitute replaces %{name} with params[name]; unknown names are kept.
func substitute(tmpl string, params map[string]any) string {
	if len(params) == 0 {
		return tmpl
	}
	return paramRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		if v, ok := params[match[2:len(match)-1]]; ok {
			return fmt.Sprint(v)
		}
		return match
	})
}
