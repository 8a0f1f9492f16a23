package form

import (
	"maps"
	"slices"
	"sort"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// Snapshot is a consistent copy of a form's state.
type Snapshot struct {
	Values        Values
	Errors        map[string]string
	DirtyFields   map[string]bool
	TouchedFields map[string]bool

	Dirty           bool
	Touched         bool
	IsValid         bool
	IsValidating    bool
	Submitting      bool
	Submitted       bool
	SubmitSucceeded bool
	SubmitCount     int
}

// Error returns the message shown for path.
func (s Snapshot) Error(path string) string {
	return s.Errors[path]
}

// ErrorPaths lists the paths with errors, sorted.
func (s Snapshot) ErrorPaths() []string {
	return slices.Sorted(maps.Keys(s.Errors))
}

// FieldState describes one field.
type FieldState struct {
	Path    string
	State   State
	Value   any
	Error   *validator.ValidationError
	Dirty   bool
	Touched bool
}

// Invalid reports whether the field currently has an error.
func (f FieldState) Invalid() bool {
	return f.Error != nil
}

// Update is delivered to subscribers after every state change. Fields
// names the paths whose value, flags or error changed; nil means the whole
// form (reset, submission flags).
type Update struct {
	Fields   []string
	Snapshot Snapshot
}

// Affects reports whether the update concerns path or a field beneath it.
func (u Update) Affects(path string) bool {
	if u.Fields == nil {
		return true
	}
	for _, f := range u.Fields {
		if fieldpath.HasPrefix(f, path) || fieldpath.HasPrefix(path, f) {
			return true
		}
	}
	return false
}

// snapshotLocked builds a Snapshot; c.mu must be held.
func (c *Controller) snapshotLocked() Snapshot {
	errs := make(map[string]string, len(c.errors))
	for path, verr := range c.errors {
		errs[path] = verr.Message
	}

	dirty := make(map[string]bool, len(c.dirty))
	for path, d := range c.dirty {
		if d {
			dirty[path] = true
		}
	}

	touched := make(map[string]bool, len(c.touched))
	for path, t := range c.touched {
		if t {
			touched[path] = true
		}
	}

	return Snapshot{
		Values:          fieldpath.CloneMap(c.values),
		Errors:          errs,
		DirtyFields:     dirty,
		TouchedFields:   touched,
		Dirty:           !fieldpath.Equal(c.values, c.defaults),
		Touched:         len(touched) > 0,
		IsValid:         len(errs) == 0,
		IsValidating:    c.validating > 0,
		Submitting:      c.submitting,
		Submitted:       c.submitted,
		SubmitSucceeded: c.submitSucceeded,
		SubmitCount:     c.submitCount,
	}
}

// errorsLocked returns the current errors sorted by path; c.mu must be held.
func (c *Controller) errorsLocked() validator.ValidationErrors {
	paths := make([]string, 0, len(c.errors))
	for p := range c.errors {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make(validator.ValidationErrors, 0, len(paths))
	for _, p := range paths {
		out = append(out, c.errors[p])
	}
	return out
}
