// Package binder turns HTTP request bodies into form records: nested
// map[string]any values addressed by dotted field paths.
//
// Form posts may name fields with dots or brackets; both produce the same
// record:
//
//	username=Booi&phone.0.number=555&phone[1][number]=777&address.line1=Main
//
//	map[string]any{
//		"username": "Booi",
//		"phone": []any{
//			map[string]any{"number": "555"},
//			map[string]any{"number": "777"},
//		},
//		"address": map[string]any{"line1": "Main"},
//	}
//
// A field posted several times, or named with a trailing "[]", becomes a
// []any of strings. JSON bodies are decoded as is, with numbers kept as
// json.Number so their text reaches the validators unchanged.
package binder
