// Package profile defines the demo's user profile form: its fields,
// defaults and the two interchangeable validation setups.
//
// The rules setup registers per-field validator.Rule lists on the
// controller. The schema setup loads schema.yaml (embedded) into an object
// schema; both report the same messages for the fields they share.
//
//	c, err := profile.New(form.StrategySchema, time.Now(), form.WithLogger(log))
package profile
