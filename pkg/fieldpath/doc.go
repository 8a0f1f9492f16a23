// Package fieldpath addresses values inside a nested form record using
// dotted paths such as "address.line1" or "phone.0.number".
//
// A record is a tree of map[string]any (objects) and []any (arrays) with
// scalar leaves. Numeric path segments index arrays; when the container at
// that point is a map the segment is used as a plain key, which lets
// records decoded from HTML forms or DataStar signals ("phone": {"0": ...})
// be read with the same paths as records built in Go.
//
// # Usage
//
//	values := map[string]any{}
//	_ = fieldpath.Set(values, "address.line1", "1 Main St")
//	v, ok := fieldpath.Get(values, "address.line1")
//
//	flat := fieldpath.Flatten(values) // {"address.line1": "1 Main St"}
//
// # Error Handling
//
// Set reports ErrInvalidPath for empty segments, ErrIndexOutOfRange when a
// numeric segment points past the end of an array (appending at exactly the
// length is allowed) and ErrNotContainer when a scalar sits where a map or
// array is required.
package fieldpath
