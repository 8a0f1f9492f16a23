package binder

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
)

const (
	// DefaultMaxMemory bounds the memory used for multipart forms (10MB).
	DefaultMaxMemory = 10 << 20
	// DefaultMaxFields bounds the number of distinct field names.
	DefaultMaxFields = 1000
)

// Option configures a binder.
type Option func(*config)

type config struct {
	maxMemory int64
	maxFields int
	maxJSON   int64
}

func newConfig(opts []Option) config {
	c := config{
		maxMemory: DefaultMaxMemory,
		maxFields: DefaultMaxFields,
		maxJSON:   DefaultMaxJSONSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithMaxMemory sets the multipart memory limit.
func WithMaxMemory(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxMemory = n
		}
	}
}

// WithMaxFields sets the field name limit.
func WithMaxFields(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxFields = n
		}
	}
}

// WithMaxJSONSize sets the JSON body size limit.
func WithMaxJSONSize(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxJSON = n
		}
	}
}

// Form reads an application/x-www-form-urlencoded or multipart/form-data
// body into a record. Uploaded files are ignored.
func Form(r *http.Request, opts ...Option) (map[string]any, error) {
	cfg := newConfig(opts)

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return nil, fmt.Errorf("%w: expected application/x-www-form-urlencoded or multipart/form-data", ErrMissingContentType)
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed content type", ErrInvalidForm)
	}

	var values url.Values
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
		values = r.PostForm

	case "multipart/form-data":
		if params["boundary"] == "" {
			return nil, fmt.Errorf("%w: missing boundary in content type", ErrInvalidForm)
		}
		if err := r.ParseMultipartForm(cfg.maxMemory); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
		values = url.Values{}
		if r.MultipartForm != nil {
			values = r.MultipartForm.Value
		}

	default:
		return nil, fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded or multipart/form-data", ErrUnsupportedMediaType, mediaType)
	}

	return Values(values, opts...)
}

// Values converts posted form values into a record.
func Values(values url.Values, opts ...Option) (map[string]any, error) {
	cfg := newConfig(opts)
	if len(values) > cfg.maxFields {
		return nil, fmt.Errorf("%w: %d, limit %d", ErrTooManyFields, len(values), cfg.maxFields)
	}

	flat := make(map[string]any, len(values))
	for name, vals := range values {
		path, list, err := normalizeName(name)
		if err != nil {
			return nil, err
		}
		switch {
		case list || len(vals) > 1:
			items := make([]any, len(vals))
			for i, v := range vals {
				items[i] = v
			}
			flat[path] = items
		case len(vals) == 1:
			flat[path] = vals[0]
		default:
			flat[path] = ""
		}
	}

	record, err := fieldpath.Expand(flat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFieldName, err)
	}
	return record, nil
}

// normalizeName rewrites bracket notation to a dotted path: "a[0][b]"
// becomes "a.0.b". A trailing "[]" marks a list field.
func normalizeName(name string) (path string, list bool, err error) {
	if before, ok := strings.CutSuffix(name, "[]"); ok {
		name, list = before, true
	}

	var b strings.Builder
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '[':
			end := strings.IndexByte(name[i:], ']')
			if end < 0 {
				return "", false, fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
			}
			b.WriteString(fieldpath.Separator)
			b.WriteString(name[i+1 : i+end])
			i += end
		case ']':
			return "", false, fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
		default:
			b.WriteByte(c)
		}
	}

	path = b.String()
	if _, err := fieldpath.Parse(path); err != nil {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
	}
	return path, list, nil
}
