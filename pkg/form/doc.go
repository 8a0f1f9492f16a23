// Package form holds the state of a form instance and validates it.
//
// A Controller keeps the current record, per-field dirty and touched flags,
// the error map and submission state. Validation is delegated to a
// Resolver: RulesResolver evaluates per-field rule lists registered through
// Controller.Register, SchemaResolver validates the whole record with a
// schema.Schema. NewResolver picks one from a Strategy so the choice can
// come from configuration.
//
// User events arrive through Change and Blur; the Mode given with WithMode
// decides which of them validate before the first submission, and
// WithReValidateMode decides afterwards. HandleSubmit validates everything
// and calls the submit callback only with a valid, normalized record.
//
//	c := form.New(defaults, form.WithResolver(form.NewSchemaResolver(profile)), form.WithMode(form.OnBlur))
//	defer c.Close()
//
//	_ = c.Change(ctx, "age", "12")
//	_ = c.Blur(ctx, "age")
//	c.Snapshot().Errors["age"] // "Minimum age is 13"
//
//	err := c.HandleSubmit(ctx, func(ctx context.Context, v form.Values) error {
//	    return save(ctx, v)
//	})
//
// Only one validation run is effective at a time: starting a run cancels
// the context of the previous one and a superseded run writes nothing.
// After Close, pending runs are dropped and mutations return ErrClosed.
//
// FieldArray manages list fields. Every entry gets an identity key from the
// controller's KeyGenerator; removing or moving entries never changes the
// key of another entry, and the errors and flags of following entries move
// with them. A RemovePolicy decides which entries may be removed.
//
// Each field follows a small lifecycle (pristine, touched, validating,
// valid, invalid) exposed through FieldState.
package form
