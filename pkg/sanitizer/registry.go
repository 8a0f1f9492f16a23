package sanitizer

import "strings"

var named = map[string]func(string) string{
	"trim":       Trim,
	"lower":      ToLower,
	"upper":      ToUpper,
	"collapse":   RemoveExtraWhitespace,
	"singleline": SingleLine,
	"nocontrol":  RemoveControlChars,
	"digits":     KeepDigits,
	"email":      NormalizeEmail,
	"phone":      NormalizePhone,
}

// Lookup returns the transform registered under name (case-insensitive).
func Lookup(name string) (func(string) string, bool) {
	fn, ok := named[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

// Names lists the registered transform names.
func Names() []string {
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	return names
}
