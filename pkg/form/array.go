package form

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// RemovePolicy decides whether the entry at index may be removed from a
// list of the given length.
type RemovePolicy func(index, length int) bool

// AllowAll permits every removal, including the last entry.
func AllowAll(int, int) bool { return true }

// ProtectFirst forbids removing the first entry.
func ProtectFirst(index, _ int) bool { return index != 0 }

// KeepAtLeast forbids removals that would leave fewer than n entries.
func KeepAtLeast(n int) RemovePolicy {
	return func(_, length int) bool { return length > n }
}

// ParseRemovePolicy maps a policy name to a policy: "allow-all",
// "protect-first" or "keep-one".
func ParseRemovePolicy(name string) (RemovePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "allow-all", "":
		return AllowAll, nil
	case "protect-first":
		return ProtectFirst, nil
	case "keep-one":
		return KeepAtLeast(1), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// ArrayOption configures a FieldArray.
type ArrayOption func(*FieldArray)

// WithRemovePolicy sets the removal policy. The default is AllowAll.
func WithRemovePolicy(p RemovePolicy) ArrayOption {
	return func(a *FieldArray) {
		if p != nil {
			a.policy = p
		}
	}
}

// Entry is one element of a field array.
type Entry struct {
	Key   string
	Index int
	Value any

	arrayPath string
}

// Path returns the path of a sub-field of the entry, or of the entry itself
// when sub is empty.
func (e Entry) Path(sub string) string {
	return fieldpath.Index(e.arrayPath, e.Index, sub)
}

// FieldArray manages a list field whose entries carry identity keys that
// survive reordering and removal. Operations go through the owning
// controller and share its lock.
type FieldArray struct {
	c      *Controller
	path   string
	keys   []string
	policy RemovePolicy
}

// FieldArray returns the array controller for path, creating it on first
// use. Options apply on every call.
func (c *Controller) FieldArray(path string, opts ...ArrayOption) (*FieldArray, error) {
	if _, err := fieldpath.Parse(path); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	if v, ok := fieldpath.Get(c.values, path); ok && v != nil {
		if _, isList := v.([]any); !isList {
			return nil, fmt.Errorf("%w: %s", ErrNotArray, path)
		}
	}

	a, ok := c.arrays[path]
	if !ok {
		a = &FieldArray{c: c, path: path, policy: AllowAll}
		a.syncLocked()
		c.arrays[path] = a
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Path returns the array's field path.
func (a *FieldArray) Path() string {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return a.path
}

// Len returns the number of entries.
func (a *FieldArray) Len() int {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return len(a.keys)
}

// Keys returns the identity keys in entry order.
func (a *FieldArray) Keys() []string {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return slices.Clone(a.keys)
}

// Fields returns the entries in order.
func (a *FieldArray) Fields() []Entry {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()

	list := a.listLocked()
	entries := make([]Entry, len(a.keys))
	for i, key := range a.keys {
		entries[i] = Entry{Key: key, Index: i, arrayPath: a.path}
		if i < len(list) {
			entries[i].Value = fieldpath.Clone(list[i])
		}
	}
	return entries
}

// CanRemove reports whether the policy allows removing the entry at index.
func (a *FieldArray) CanRemove(index int) bool {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return index >= 0 && index < len(a.keys) && a.policy(index, len(a.keys))
}

// Append adds entries at the end, each with a fresh key.
func (a *FieldArray) Append(entries ...any) error {
	return a.mutate(func(list []any) ([]any, error) {
		return a.insertLocked(list, len(list), entries)
	})
}

// Prepend adds entries at the start.
func (a *FieldArray) Prepend(entries ...any) error {
	return a.mutate(func(list []any) ([]any, error) {
		return a.insertLocked(list, 0, entries)
	})
}

// Insert adds entries before index; index may equal Len.
func (a *FieldArray) Insert(index int, entries ...any) error {
	return a.mutate(func(list []any) ([]any, error) {
		if index < 0 || index > len(list) {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}
		return a.insertLocked(list, index, entries)
	})
}

// Remove deletes the entry at index. The keys, order and bookkeeping of
// the other entries are preserved.
func (a *FieldArray) Remove(index int) error {
	return a.mutate(func(list []any) ([]any, error) {
		if index < 0 || index >= len(list) {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}
		if !a.policy(index, len(list)) {
			return nil, fmt.Errorf("%w: %s.%d", ErrRemoveDenied, a.path, index)
		}
		a.keys = slices.Delete(a.keys, index, index+1)
		a.c.remapLocked(a.path, func(i int) (int, bool) {
			switch {
			case i == index:
				return 0, false
			case i > index:
				return i - 1, true
			}
			return i, true
		})
		return slices.Delete(list, index, index+1), nil
	})
}

// Swap exchanges two entries together with their keys.
func (a *FieldArray) Swap(i, j int) error {
	return a.mutate(func(list []any) ([]any, error) {
		if i < 0 || i >= len(list) || j < 0 || j >= len(list) {
			return nil, fmt.Errorf("%w: %d, %d", ErrIndexOutOfRange, i, j)
		}
		list[i], list[j] = list[j], list[i]
		a.keys[i], a.keys[j] = a.keys[j], a.keys[i]
		a.c.remapLocked(a.path, func(n int) (int, bool) {
			switch n {
			case i:
				return j, true
			case j:
				return i, true
			}
			return n, true
		})
		return list, nil
	})
}

// Move relocates the entry at from to position to.
func (a *FieldArray) Move(from, to int) error {
	return a.mutate(func(list []any) ([]any, error) {
		if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
			return nil, fmt.Errorf("%w: %d to %d", ErrIndexOutOfRange, from, to)
		}
		item, key := list[from], a.keys[from]
		list = slices.Insert(slices.Delete(list, from, from+1), to, item)
		a.keys = slices.Insert(slices.Delete(a.keys, from, from+1), to, key)
		a.c.remapLocked(a.path, func(n int) (int, bool) {
			switch {
			case n == from:
				return to, true
			case from < to && n > from && n <= to:
				return n - 1, true
			case from > to && n >= to && n < from:
				return n + 1, true
			}
			return n, true
		})
		return list, nil
	})
}

// Update replaces the value of the entry at index, keeping its key.
func (a *FieldArray) Update(index int, entry any) error {
	return a.mutate(func(list []any) ([]any, error) {
		if index < 0 || index >= len(list) {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
		}
		list[index] = fieldpath.Clone(entry)
		return list, nil
	})
}

// mutate applies fn to a copy of the list and stores the result.
func (a *FieldArray) mutate(fn func(list []any) ([]any, error)) error {
	c := a.c
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	list, err := fn(slices.Clone(a.listLocked()))
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if err := fieldpath.Set(c.values, a.path, list); err != nil {
		c.mu.Unlock()
		return err
	}
	c.markDirtyLocked(a.path)
	path := a.path
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(Update{Fields: []string{path}, Snapshot: snap})
	return nil
}

func (a *FieldArray) insertLocked(list []any, index int, entries []any) ([]any, error) {
	if len(entries) == 0 {
		return list, nil
	}
	n := len(entries)
	cloned := make([]any, n)
	keys := make([]string, n)
	for i, e := range entries {
		cloned[i] = fieldpath.Clone(e)
		keys[i] = a.c.keys()
	}
	a.c.remapLocked(a.path, func(i int) (int, bool) {
		if i >= index {
			return i + n, true
		}
		return i, true
	})
	a.keys = slices.Insert(a.keys, index, keys...)
	return slices.Insert(list, index, cloned...), nil
}

func (a *FieldArray) listLocked() []any {
	v, _ := fieldpath.Get(a.c.values, a.path)
	list, _ := v.([]any)
	return list
}

// syncLocked matches the key count to the list after a direct write.
func (a *FieldArray) syncLocked() {
	n := len(a.listLocked())
	if len(a.keys) > n {
		a.keys = a.keys[:n]
	}
	for len(a.keys) < n {
		a.keys = append(a.keys, a.c.keys())
	}
}

// rekeyLocked issues fresh keys for every entry.
func (a *FieldArray) rekeyLocked() {
	a.keys = nil
	a.syncLocked()
}

// remapLocked renumbers the per-field bookkeeping beneath arrayPath:
// errors, flags, lifecycle state and nested arrays. fn maps an old index
// to a new one, or drops it.
func (c *Controller) remapLocked(arrayPath string, fn func(int) (int, bool)) {
	remapErrors := make(map[string]validator.ValidationError, len(c.errors))
	for p, verr := range c.errors {
		if np, ok := remapPath(p, arrayPath, fn); ok {
			verr.Field = np
			remapErrors[np] = verr
		}
	}
	c.errors = remapErrors

	c.dirty = remapKeys(c.dirty, arrayPath, fn)
	c.touched = remapKeys(c.touched, arrayPath, fn)
	c.fields = remapKeys(c.fields, arrayPath, fn)

	arrays := make(map[string]*FieldArray, len(c.arrays))
	for p, a := range c.arrays {
		if np, ok := remapPath(p, arrayPath, fn); ok {
			a.path = np
			arrays[np] = a
		}
	}
	c.arrays = arrays
}

func remapKeys[V any](m map[string]V, arrayPath string, fn func(int) (int, bool)) map[string]V {
	out := make(map[string]V, len(m))
	for p, v := range m {
		if np, ok := remapPath(p, arrayPath, fn); ok {
			out[np] = v
		}
	}
	return out
}

// remapPath rewrites the index segment following arrayPath. Paths outside
// the array, and the array path itself, are returned unchanged.
func remapPath(path, arrayPath string, fn func(int) (int, bool)) (string, bool) {
	prefix := arrayPath + fieldpath.Separator
	if !strings.HasPrefix(path, prefix) {
		return path, true
	}
	idxStr, rest, _ := strings.Cut(path[len(prefix):], fieldpath.Separator)
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return path, true
	}
	n, keep := fn(idx)
	if !keep {
		return "", false
	}
	return fieldpath.Index(arrayPath, n, rest), true
}
