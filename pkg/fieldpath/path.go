package fieldpath

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Separator joins path segments.
const Separator = "."

// Split breaks a path into its segments. An empty path yields nil.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// Join concatenates non-empty segments with the separator.
func Join(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, Separator)
}

// Index builds the path of a sub-field of an array entry: <arrayPath>.<index>.<sub>.
// An empty sub addresses the entry itself.
func Index(arrayPath string, index int, sub string) string {
	return Join(arrayPath, strconv.Itoa(index), sub)
}

// HasPrefix reports whether path equals prefix or lies beneath it.
func HasPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+Separator)
}

// Parse validates a path and returns its segments.
func Parse(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parts := Split(path)
	if slices.Contains(parts, "") {
		return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
	}
	return parts, nil
}

// Get returns the value stored at path.
func Get(values map[string]any, path string) (any, bool) {
	parts, err := Parse(path)
	if err != nil {
		return nil, false
	}

	var cur any = values
	for _, p := range parts {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[p]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(p)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Set stores v at path, creating intermediate containers as needed.
// A numeric segment creates an array, anything else a map.
func Set(values map[string]any, path string, v any) error {
	parts, err := Parse(path)
	if err != nil {
		return err
	}
	if values == nil {
		return fmt.Errorf("%w: nil record", ErrNotContainer)
	}
	_, err = setIn(values, parts, v)
	return err
}

func setIn(container any, parts []string, v any) (any, error) {
	head := parts[0]
	last := len(parts) == 1

	switch c := container.(type) {
	case map[string]any:
		if last {
			c[head] = v
			return c, nil
		}
		child := c[head]
		if child == nil {
			child = newContainer(parts[1])
		}
		updated, err := setIn(child, parts[1:], v)
		if err != nil {
			return nil, err
		}
		c[head] = updated
		return c, nil

	case []any:
		idx, err := strconv.Atoi(head)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: %q is not an array index", ErrInvalidPath, head)
		}
		if idx > len(c) {
			return nil, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, idx, len(c))
		}
		if idx == len(c) {
			c = append(c, nil)
		}
		if last {
			c[idx] = v
			return c, nil
		}
		child := c[idx]
		if child == nil {
			child = newContainer(parts[1])
		}
		updated, err := setIn(child, parts[1:], v)
		if err != nil {
			return nil, err
		}
		c[idx] = updated
		return c, nil

	default:
		return nil, fmt.Errorf("%w: cannot descend into %T at %q", ErrNotContainer, container, head)
	}
}

func newContainer(next string) any {
	if _, err := strconv.Atoi(next); err == nil {
		return []any{}
	}
	return map[string]any{}
}

// Delete removes the value at path. Removing an array element shifts the
// following elements down by one. It reports whether anything was removed.
func Delete(values map[string]any, path string) bool {
	parts, err := Parse(path)
	if err != nil {
		return false
	}

	parentPath := Join(parts[:len(parts)-1]...)
	leaf := parts[len(parts)-1]

	var parent any = values
	if parentPath != "" {
		p, ok := Get(values, parentPath)
		if !ok {
			return false
		}
		parent = p
	}

	switch c := parent.(type) {
	case map[string]any:
		if _, ok := c[leaf]; !ok {
			return false
		}
		delete(c, leaf)
		return true
	case []any:
		idx, err := strconv.Atoi(leaf)
		if err != nil || idx < 0 || idx >= len(c) {
			return false
		}
		shrunk := slices.Delete(slices.Clone(c), idx, idx+1)
		return Set(values, parentPath, shrunk) == nil
	default:
		return false
	}
}

// Clone deep-copies a record. Any slice becomes []any and any map with
// string keys becomes map[string]any, so typed literals such as
// []map[string]any are normalized on the way in.
func Clone(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	case string, bool, int, int64, float64:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Clone(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Clone(iter.Value().Interface())
		}
		return out
	}
	return v
}

// CloneMap deep-copies a top-level record. A nil input yields an empty map.
func CloneMap(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return Clone(values).(map[string]any)
}

// Flatten returns every leaf of the record keyed by its path.
// Empty maps and arrays are leaves.
func Flatten(values map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", values)
	return out
}

func flattenInto(out map[string]any, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 && prefix != "" {
			out[prefix] = t
			return
		}
		for k, val := range t {
			flattenInto(out, Join(prefix, k), val)
		}
	case []any:
		if len(t) == 0 && prefix != "" {
			out[prefix] = t
			return
		}
		for i, val := range t {
			flattenInto(out, Join(prefix, strconv.Itoa(i)), val)
		}
	default:
		if prefix != "" {
			out[prefix] = v
		}
	}
}

// Expand turns a flat path → value map back into a nested record.
// Maps whose keys are exactly 0..n-1 become arrays.
func Expand(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, path := range keys {
		parts, err := Parse(path)
		if err != nil {
			return nil, err
		}
		cur := root
		for i, p := range parts {
			if i == len(parts)-1 {
				cur[p] = flat[path]
				break
			}
			next, ok := cur[p].(map[string]any)
			if !ok {
				if _, exists := cur[p]; exists {
					return nil, fmt.Errorf("%w: %q conflicts with a scalar value", ErrNotContainer, path)
				}
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
	}

	for k, val := range root {
		root[k] = arraysFromMaps(val)
	}
	return root, nil
}

func arraysFromMaps(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, val := range m {
		m[k] = arraysFromMaps(val)
	}
	if len(m) == 0 {
		return m
	}

	arr := make([]any, len(m))
	for k, val := range m {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx >= len(m) || strconv.Itoa(idx) != k {
			return m
		}
		arr[idx] = val
	}
	return arr
}

// Equal reports whether two record values are deeply equal.
func Equal(a, b any) bool {
	return reflect.DeepEqual(Clone(a), Clone(b))
}
