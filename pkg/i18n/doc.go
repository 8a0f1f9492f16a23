// Package i18n translates validation messages.
//
// Catalogues are YAML files keyed by language, then by message key; keys
// may be nested and are addressed with dots. Placeholders use the %{name}
// form and are filled from validator.ValidationError.TranslationValues:
//
//	en:
//	  validation:
//	    required: "This field is required"
//	    min_length: "Use at least %{min} characters"
//
// Loading from an embedded directory:
//
//	//go:embed locales
//	var locales embed.FS
//
//	tr, err := i18n.NewTranslator(ctx, i18n.NewFSAdapter(i18n.NewYAMLParser(), locales, "locales"))
//
// Errors keep their own message unless they carry a translation key the
// catalogue knows, so messages written next to a rule are never replaced:
//
//	msg := tr.Message(i18n.GetLocale(ctx), verr)
//
// Middleware picks the request language with golang.org/x/text/language
// matching against the loaded languages and stores it in the context.
package i18n
