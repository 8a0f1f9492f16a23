package web

import (
	"context"
	"embed"
	"log/slog"

	"github.com/dmitrymomot/formkit/pkg/i18n"
)

//go:embed locales/*.yaml
var locales embed.FS

// LoadTranslator reads the embedded catalogues.
func LoadTranslator(ctx context.Context, defaultLang string, log *slog.Logger) (*i18n.Translator, error) {
	return i18n.NewTranslator(ctx,
		i18n.NewFSAdapter(i18n.NewYAMLParser(), locales, "locales"),
		i18n.WithDefaultLanguage(defaultLang),
		i18n.WithLogger(log),
	)
}
