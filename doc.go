// Package formkit is a toolkit for server-side form handling: field rules,
// declarative schemas, a form state controller with dynamic field arrays,
// and the HTTP plumbing to drive them from a browser.
//
// Packages:
//
//   - pkg/validator: field rules, validation errors and violation kinds
//   - pkg/schema: declarative record schemas with transforms and refinements
//   - pkg/form: form state, validation modes, submission and field arrays
//   - pkg/fieldpath: dotted path addressing of nested records
//   - pkg/binder: HTML form and JSON request bodies to records
//   - pkg/i18n: message catalogues and language negotiation
//   - pkg/sanitizer: value normalizers used by schema transforms
//   - pkg/logger, pkg/config, pkg/httpserver: ambient plumbing
//
// Basic usage:
//
//	c := form.New(form.Values{"email": ""},
//		form.WithMode(form.OnTouched),
//	)
//	_ = c.Register("email", validator.Required(""), validator.Email(""))
//
//	_ = c.Change(ctx, "email", "booi@")
//	_ = c.Blur(ctx, "email")
//	fmt.Println(c.Snapshot().Error("email"))
//
// cmd/formdemo serves a complete profile form built on these packages.
package formkit
