package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/formkit/internal/profile"
	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/i18n"
)

// Element ids targeted by patches.
const (
	formID      = "profile-form"
	statusID    = "form-status"
	bannerID    = "submit-banner"
	phoneListID = "phone-list"
	toastsID    = "toasts"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

const pageStyle = `body{font-family:system-ui,sans-serif;background:#111827;color:#e5e7eb}
main{max-width:30rem;margin:2rem auto;padding:1.5rem;background:#1f2937}
.field{display:flex;flex-direction:column;gap:.25rem;margin:.5rem 0}
input,select{padding:.5rem;border-radius:.25rem;background:#334155;color:inherit;border:0}
.error{color:#f87171;min-height:1rem;margin:0}.banner{color:#4ade80}
.toast{padding:.5rem;margin:.25rem 0;background:#7f1d1d}`

type phoneRow struct {
	Key       string
	Path      string
	Index     int
	CanRemove bool
}

// view is everything a render of the profile form needs.
type view struct {
	ID       string
	Lang     string
	Strategy form.Strategy
	Snap     form.Snapshot
	Errors   map[string]string
	Phones   []phoneRow

	tr    *i18n.Translator
	upper cases.Caser
}

func newView(id, lang string, c *form.Controller, arr *form.FieldArray, tr *i18n.Translator) view {
	v := view{
		ID:       id,
		Lang:     lang,
		Strategy: c.Strategy(),
		Snap:     c.Snapshot(),
		Errors:   tr.Messages(lang, c.Errors()),
		tr:       tr,
		upper:    cases.Upper(language.Make(lang)),
	}
	for _, e := range arr.Fields() {
		v.Phones = append(v.Phones, phoneRow{
			Key:       e.Key,
			Path:      e.Path(profile.FieldPhoneNumber),
			Index:     e.Index,
			CanRemove: arr.CanRemove(e.Index),
		})
	}
	return v
}

func (v view) t(key string) string { return v.tr.T(v.Lang, key, nil) }

func (v view) label(key string) string { return v.upper.String(v.t("form.label." + key)) }

func (v view) action(parts ...string) string {
	return "/forms/" + v.ID + "/" + strings.Join(parts, "/")
}

func (v view) value(path string) string {
	raw, _ := fieldpath.Get(v.Snap.Values, path)
	return display(raw)
}

// errorPaths lists every path that has an error element on the page.
func (v view) errorPaths() []string {
	paths := []string{
		profile.FieldUsername, profile.FieldEmail, profile.FieldAge, profile.FieldDOB,
		profile.FieldAddressLine1, profile.FieldAddressLine2, profile.FieldGender,
	}
	for _, p := range v.Phones {
		paths = append(paths, p.Path)
	}
	return paths
}

// signals returns the client-side value of every leaf field.
func (v view) signals() map[string]any {
	out := make(map[string]any)
	for path, raw := range fieldpath.Flatten(v.Snap.Values) {
		out[signalName(path)] = display(raw)
	}
	return out
}

func display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(profile.DateLayout)
	}
	return fmt.Sprint(v)
}

func fieldID(path string) string { return strings.ReplaceAll(path, ".", "-") }

func signalName(path string) string { return strings.ReplaceAll(path, ".", "_") }

type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) write(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) render(c templ.Component) {
	if h.err == nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

var esc = templ.EscapeString

func post(url string) string { return "@post('" + url + "')" }

func pageView(v view) templ.Component {
	return component(func(h *htmlWriter) {
		h.write(`<!DOCTYPE html><html lang="`, esc(v.Lang), `"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, esc(v.t("form.title")), `</title>`,
			`<script type="module" src="`, datastarScript, `"></script>`,
			`<style>`, pageStyle, `</style></head><body><main>`,
			`<div id="`, toastsID, `"></div>`)
		h.render(formView(v))
		h.write(`</main></body></html>`)
	})
}

func formView(v view) templ.Component {
	return component(func(h *htmlWriter) {
		signals, err := templ.JSONString(v.signals())
		if err != nil {
			h.err = err
			return
		}
		submit := v.action("submit")
		h.write(`<form id="`, formID, `" method="post" action="`, esc(submit), `" novalidate`,
			` data-signals="`, esc(signals), `"`,
			` data-on-submit="`, esc("@post('"+submit+"', {contentType: 'form'})"), `">`,
			`<h2>`, esc(v.t("form.title")), ` · `, esc(v.t("form.strategy."+v.Strategy.String())), `</h2>`)

		h.render(inputView(v, profile.FieldUsername, "username", "text"))
		h.render(inputView(v, profile.FieldEmail, "email", "email"))
		h.render(phoneListView(v))
		h.render(inputView(v, profile.FieldAge, "age", "number"))
		h.render(inputView(v, profile.FieldDOB, "dob", "date"))
		h.render(inputView(v, profile.FieldAddressLine1, "address_line1", "text"))
		h.render(inputView(v, profile.FieldAddressLine2, "address_line2", "text"))
		h.render(genderView(v))

		reset := v.action("reset")
		h.write(`<div class="actions"><button type="submit">`, esc(v.t("form.submit")), `</button> `,
			`<button type="submit" formaction="`, esc(reset), `" data-on-click__prevent="`, esc(post(reset)), `">`,
			esc(v.t("form.reset")), `</button></div>`)
		h.render(bannerView(v))
		h.render(statusView(v))
		h.write(`</form>`)
	})
}

func fieldAttrs(v view, path string) string {
	attrs := ` id="f-` + esc(fieldID(path)) + `" name="` + esc(path) + `"` +
		` data-bind="` + esc(signalName(path)) + `"` +
		` data-on-change="` + esc(post(v.action("fields", path))) + `"`
	if _, bad := v.Errors[path]; bad {
		attrs += ` aria-invalid="true"`
	}
	return attrs
}

func inputView(v view, path, labelKey, typ string) templ.Component {
	return component(func(h *htmlWriter) {
		h.write(`<div class="field"><label for="f-`, esc(fieldID(path)), `">`, esc(v.label(labelKey)), `</label>`,
			`<input type="`, typ, `"`, fieldAttrs(v, path), ` value="`, esc(v.value(path)), `">`)
		h.render(errorView(v, path))
		h.write(`</div>`)
	})
}

func errorView(v view, path string) templ.Component {
	return component(func(h *htmlWriter) {
		h.write(`<p id="err-`, esc(fieldID(path)), `" class="error" role="alert">`, esc(v.Errors[path]), `</p>`)
	})
}

func phoneListView(v view) templ.Component {
	return component(func(h *htmlWriter) {
		h.write(`<fieldset id="`, phoneListID, `"><legend>`, esc(v.label("phone")), `</legend>`)
		for _, p := range v.Phones {
			h.write(`<div class="field" id="phone-`, esc(p.Key), `">`,
				`<input type="tel"`, fieldAttrs(v, p.Path), ` value="`, esc(v.value(p.Path)), `">`)
			h.render(errorView(v, p.Path))
			if p.CanRemove {
				remove := v.action("phone", strconv.Itoa(p.Index), "remove")
				h.write(`<button type="submit" formaction="`, esc(remove), `" data-on-click__prevent="`, esc(post(remove)), `">`,
					esc(v.t("form.remove")), `</button>`)
			}
			h.write(`</div>`)
		}
		add := v.action("phone")
		h.write(`<button type="submit" formaction="`, esc(add), `" data-on-click__prevent="`, esc(post(add)), `">`,
			esc(v.t("form.add_phone")), `</button></fieldset>`)
	})
}

func genderView(v view) templ.Component {
	return component(func(h *htmlWriter) {
		path := profile.FieldGender
		current := v.value(path)
		h.write(`<div class="field"><label for="f-`, esc(fieldID(path)), `">`, esc(v.label("gender")), `</label>`,
			`<select`, fieldAttrs(v, path), `><option value="">`, esc(v.t("form.gender.choose")), `</option>`)
		for _, g := range profile.Genders {
			selected := ""
			if g == current {
				selected = " selected"
			}
			h.write(`<option value="`, esc(g), `"`, selected, `>`, esc(v.t("form.gender."+g)), `</option>`)
		}
		h.write(`</select>`)
		h.render(errorView(v, path))
		h.write(`</div>`)
	})
}

func bannerView(v view) templ.Component {
	return component(func(h *htmlWriter) {
		msg := ""
		if v.Snap.SubmitSucceeded {
			msg = v.t("form.submitted")
		}
		h.write(`<p id="`, bannerID, `" class="banner">`, esc(msg), `</p>`)
	})
}

func statusView(v view) templ.Component {
	return component(func(h *htmlWriter) {
		flags := map[string]bool{
			"dirty":   v.Snap.Dirty,
			"touched": v.Snap.Touched,
			"valid":   v.Snap.IsValid,
		}
		h.write(`<dl id="`, statusID, `">`)
		for _, name := range slices.Sorted(maps.Keys(flags)) {
			h.write(`<dt>`, esc(v.t("form.status."+name)), `</dt><dd>`, strconv.FormatBool(flags[name]), `</dd>`)
		}
		h.write(`<dt>`, esc(v.t("form.status.submits")), `</dt><dd>`, strconv.Itoa(v.Snap.SubmitCount), `</dd></dl>`)
	})
}

func toast(msg, kind string) templ.Component {
	return component(func(h *htmlWriter) {
		h.write(`<div class="toast toast-`, esc(kind), `" role="alert">`, esc(msg), `</div>`)
	})
}

func errorPage(status int, msg, requestID string) templ.Component {
	return component(func(h *htmlWriter) {
		h.write(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`, strconv.Itoa(status), `</title>`,
			`<style>`, pageStyle, `</style></head><body><main><h1>`, strconv.Itoa(status), `</h1><p>`, esc(msg), `</p>`)
		if requestID != "" {
			h.write(`<p><small>request `, esc(requestID), `</small></p>`)
		}
		h.write(`<p><a href="/">↻</a></p></main></body></html>`)
	})
}
