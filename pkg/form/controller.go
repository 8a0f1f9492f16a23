package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/formkit/pkg/fieldpath"
	"github.com/dmitrymomot/formkit/pkg/logger"
	"github.com/dmitrymomot/formkit/pkg/schema"
	"github.com/dmitrymomot/formkit/pkg/validator"
)

// SubmitFunc receives the normalized record of a valid submission.
type SubmitFunc func(ctx context.Context, values Values) error

// InvalidFunc receives the errors of a rejected submission.
type InvalidFunc func(ctx context.Context, errs validator.ValidationErrors)

// Controller owns the state of one form instance: values, per-field flags,
// the error map and submission state. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	name       string
	resolver   Resolver
	mode       Mode
	reValidate Mode
	log        *slog.Logger
	keys       KeyGenerator

	defaults Values
	values   Values
	errors   map[string]validator.ValidationError
	dirty    map[string]bool
	touched  map[string]bool
	fields   map[string]*fieldMachine
	arrays   map[string]*FieldArray

	validating      int
	submitting      bool
	submitted       bool
	submitSucceeded bool
	submitCount     int

	// gen is bumped by full runs, Reset and Close; fieldGen by field runs.
	gen          uint64
	fieldGen     uint64
	cancelFull   context.CancelFunc
	cancelField  context.CancelFunc
	fieldApplied map[string]uint64
	applied      uint64
	resets       uint64
	closed       bool

	subs    map[uint64]func(Update)
	nextSub uint64
}

// New creates a controller holding a copy of defaults.
func New(defaults Values, opts ...Option) *Controller {
	c := &Controller{
		mode:       OnSubmit,
		reValidate: OnChange,
		log:        logger.Discard(),
		keys:       UUIDKeys(),
		defaults:   fieldpath.CloneMap(defaults),
		errors:     make(map[string]validator.ValidationError),
		dirty:      make(map[string]bool),
		touched:    make(map[string]bool),
		fields:     make(map[string]*fieldMachine),
		arrays:     make(map[string]*FieldArray),
		subs:       make(map[uint64]func(Update)),

		fieldApplied: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		c.resolver = NewRulesResolver()
	}
	c.values = fieldpath.CloneMap(c.defaults)
	return c
}

// Name returns the name given with WithName.
func (c *Controller) Name() string {
	return c.name
}

// Strategy reports which built-in resolver backs the form, or "custom".
func (c *Controller) Strategy() Strategy {
	switch c.resolver.(type) {
	case *RulesResolver:
		return StrategyRules
	case *SchemaResolver:
		return StrategySchema
	}
	return "custom"
}

// Register binds a field path. Rules are handed to the resolver, which must
// implement RuleRegistry. Paths may use schema.Wildcard for array indexes.
func (c *Controller) Register(path string, rules ...validator.Rule) error {
	if _, err := fieldpath.Parse(path); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if len(rules) > 0 {
		registry, ok := c.resolver.(RuleRegistry)
		if !ok {
			return fmt.Errorf("%w: %s", ErrRulesUnsupported, path)
		}
		registry.Register(path, rules...)
	}
	if !strings.Contains(path, schema.Wildcard) {
		c.machine(path)
	}
	return nil
}

// Unregister forgets a field: its rules, error, flags and lifecycle state.
// The value is kept.
func (c *Controller) Unregister(path string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if registry, ok := c.resolver.(RuleRegistry); ok {
		registry.Unregister(path)
	}
	for p := range c.fields {
		if fieldpath.HasPrefix(p, path) || schema.MatchPath(path, p) {
			delete(c.fields, p)
			delete(c.errors, p)
			delete(c.touched, p)
			delete(c.dirty, p)
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(Update{Fields: []string{path}, Snapshot: snap})
	return nil
}

// Change applies a user edit: the value is stored, the dirty flag updated
// and, depending on the mode, the field is validated.
func (c *Controller) Change(ctx context.Context, path string, value any) error {
	if _, err := fieldpath.Parse(path); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err := c.storeLocked(path, value); err != nil {
		c.mu.Unlock()
		return err
	}
	c.markDirtyLocked(path)
	c.machine(path)
	validate := shouldValidate(c.mode, c.reValidate, c.submitted, c.touched[path], changeEvent)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(Update{Fields: []string{path}, Snapshot: snap})
	if !validate {
		return nil
	}
	return c.validateField(ctx, path)
}

// Blur marks a field as touched and, depending on the mode, validates it.
func (c *Controller) Blur(ctx context.Context, path string) error {
	if _, err := fieldpath.Parse(path); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.touched[path] = true
	_ = c.machine(path).Fire(EventTouch)
	validate := shouldValidate(c.mode, c.reValidate, c.submitted, true, blurEvent)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(Update{Fields: []string{path}, Snapshot: snap})
	if !validate {
		return nil
	}
	return c.validateField(ctx, path)
}

// SetValue stores a value programmatically. Flags and validation are left
// alone unless requested with ShouldDirty, ShouldTouch and ShouldValidate.
func (c *Controller) SetValue(ctx context.Context, path string, value any, opts ...SetValueOption) error {
	if _, err := fieldpath.Parse(path); err != nil {
		return err
	}
	var cfg setValueConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err := c.storeLocked(path, value); err != nil {
		c.mu.Unlock()
		return err
	}
	if cfg.dirty {
		c.markDirtyLocked(path)
	}
	if cfg.touch {
		c.touched[path] = true
		_ = c.machine(path).Fire(EventTouch)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(Update{Fields: []string{path}, Snapshot: snap})
	if !cfg.validate {
		return nil
	}
	return c.validateField(ctx, path)
}

// GetValue returns a copy of the value at path.
func (c *Controller) GetValue(path string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := fieldpath.Get(c.values, path)
	return fieldpath.Clone(v), ok
}

// GetValues returns a copy of the whole record.
func (c *Controller) GetValues() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fieldpath.CloneMap(c.values)
}

// Defaults returns a copy of the default record.
func (c *Controller) Defaults() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fieldpath.CloneMap(c.defaults)
}

// Reset restores the defaults, or replaces them when newDefaults is given,
// and clears errors, flags and submission state. A pending validation run
// is cancelled and its result dropped.
func (c *Controller) Reset(newDefaults ...Values) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	if len(newDefaults) > 0 && newDefaults[0] != nil {
		c.defaults = fieldpath.CloneMap(newDefaults[0])
	}
	c.values = fieldpath.CloneMap(c.defaults)
	clear(c.errors)
	clear(c.dirty)
	clear(c.touched)
	clear(c.fieldApplied)
	for _, m := range c.fields {
		_ = m.Fire(EventReset)
	}
	c.submitted = false
	c.submitSucceeded = false
	c.submitCount = 0
	c.resets++

	c.supersedeLocked()
	for _, a := range c.arrays {
		a.rekeyLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Debug("form reset", logger.Form(c.name))
	c.notify(Update{Snapshot: snap})
	return nil
}

// Trigger validates the given fields, or the whole form when none are
// given, and reports whether they passed.
func (c *Controller) Trigger(ctx context.Context, paths ...string) (bool, error) {
	var fields []string
	if len(paths) > 0 {
		fields = paths
	}
	_, errs, err := c.run(ctx, fields)
	if err != nil {
		return false, err
	}
	return errs.IsEmpty(), nil
}

// HandleSubmit validates the whole form. When it passes, onValid receives
// the normalized record; otherwise the error map is populated, the
// onInvalid callbacks run and the validator.ValidationErrors is returned.
// Every attempt counts as a submission unless Reset interrupts it, in which
// case the attempt is dropped. An error from onValid is returned wrapped in
// ErrSubmitFailed.
func (c *Controller) HandleSubmit(ctx context.Context, onValid SubmitFunc, onInvalid ...InvalidFunc) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	c.submitting = true
	c.submitSucceeded = false
	resets := c.resets
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(Update{Snapshot: snap})

	out, errs, err := c.run(ctx, nil)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.resets != resets {
		return c.dropSubmitLocked(ctx, ErrSuperseded)
	}
	c.submitted = true
	c.submitCount++
	count := c.submitCount

	if err != nil || !errs.IsEmpty() {
		c.submitting = false
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.notify(Update{Snapshot: snap})

		if err != nil {
			c.log.DebugContext(ctx, "submission aborted", logger.Form(c.name), logger.SubmitCount(count), logger.Error(err))
			return err
		}
		c.log.DebugContext(ctx, "submission rejected", logger.Form(c.name), logger.SubmitCount(count), logger.ErrorCount(len(errs)))
		for _, fn := range onInvalid {
			if fn != nil {
				fn(ctx, errs)
			}
		}
		return errs
	}
	c.mu.Unlock()

	var cbErr error
	if onValid != nil {
		cbErr = onValid(ctx, out)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.resets != resets {
		if cbErr != nil {
			cbErr = fmt.Errorf("%w: %w", ErrSubmitFailed, cbErr)
		}
		return c.dropSubmitLocked(ctx, cbErr)
	}
	c.submitting = false
	c.submitSucceeded = cbErr == nil
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(Update{Snapshot: snap})

	if cbErr != nil {
		c.log.DebugContext(ctx, "submit handler failed", logger.Form(c.name), logger.SubmitCount(count), logger.Error(cbErr))
		return fmt.Errorf("%w: %w", ErrSubmitFailed, cbErr)
	}
	c.log.DebugContext(ctx, "form submitted", logger.Form(c.name), logger.SubmitCount(count))
	return nil
}

// dropSubmitLocked ends a submission that Reset interrupted without
// recording it. It unlocks c.mu.
func (c *Controller) dropSubmitLocked(ctx context.Context, err error) error {
	c.submitting = false
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(Update{Snapshot: snap})
	c.log.DebugContext(ctx, "submission dropped by reset", logger.Form(c.name))
	return err
}

// SetError records a manual error. The path must be one the resolver can
// report on.
func (c *Controller) SetError(path, message string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.resolver.Covers(path) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	c.errors[path] = validator.ValidationError{
		Field:   path,
		Kind:    validator.KindCustom,
		Rule:    "manual",
		Message: message,
	}
	m := c.machine(path)
	_ = m.Fire(EventValidate)
	_ = m.Fire(EventFail)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(Update{Fields: []string{path}, Snapshot: snap})
	return nil
}

// ClearErrors removes the errors at or beneath paths, or all errors.
func (c *Controller) ClearErrors(paths ...string) {
	var fields []string
	if len(paths) > 0 {
		fields = paths
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	for p := range c.errors {
		if inScope(p, fields) {
			delete(c.errors, p)
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(Update{Fields: fields, Snapshot: snap})
}

// Errors returns the current errors sorted by path.
func (c *Controller) Errors() validator.ValidationErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorsLocked()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// FieldState describes the field at path. Unknown fields are pristine.
func (c *Controller) FieldState(path string) FieldState {
	c.mu.Lock()
	defer c.mu.Unlock()

	fs := FieldState{
		Path:    path,
		State:   StatePristine,
		Dirty:   c.dirty[path],
		Touched: c.touched[path],
	}
	if m, ok := c.fields[path]; ok {
		fs.State = m.Current()
	}
	if v, ok := fieldpath.Get(c.values, path); ok {
		fs.Value = fieldpath.Clone(v)
	}
	if verr, ok := c.errors[path]; ok {
		fs.Error = &verr
	}
	return fs
}

// Subscribe registers fn for every state change and returns a function
// that removes it. fn is called without the controller's lock held.
func (c *Controller) Subscribe(fn func(Update)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || fn == nil {
		return func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close detaches the controller: pending validation is cancelled, its
// result is discarded and every later mutation returns ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.supersedeLocked()
	clear(c.subs)
	c.log.Debug("form closed", logger.Form(c.name))
	return nil
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) validateField(ctx context.Context, path string) error {
	_, _, err := c.run(ctx, []string{path})
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

// run executes one validation pass. A full run (nil fields) cancels every
// pending run; a field run cancels only the previous field run, so typing
// into a field never aborts a submission. A run that finishes after being
// superseded, or after Close, writes nothing.
func (c *Controller) run(ctx context.Context, fields []string) (Values, validator.ValidationErrors, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, ErrClosed
	}
	full := fields == nil
	runCtx, cancel := context.WithCancel(ctx)
	if full {
		c.supersedeLocked()
		c.cancelFull = cancel
	} else {
		c.supersedeFieldsLocked()
		c.cancelField = cancel
	}
	gen, fieldGen, applied := c.gen, c.fieldGen, c.applied
	c.validating++

	for _, p := range fields {
		c.machine(p)
	}
	var scope []string
	for p, m := range c.fields {
		if inScope(p, fields) {
			_ = m.Fire(EventValidate)
			scope = append(scope, p)
		}
	}
	values := fieldpath.CloneMap(c.values)
	resolver := c.resolver
	c.mu.Unlock()
	defer cancel()

	start := time.Now()
	out, errs, err := resolver.Resolve(runCtx, values, fields)

	c.mu.Lock()
	c.validating--
	if c.closed {
		c.mu.Unlock()
		return nil, nil, ErrClosed
	}
	if gen != c.gen || (!full && fieldGen != c.fieldGen) {
		c.mu.Unlock()
		c.log.DebugContext(ctx, "validation superseded", logger.Form(c.name), logger.Generation(gen))
		return nil, nil, ErrSuperseded
	}
	if full {
		c.cancelFull = nil
	} else {
		c.cancelField = nil
	}
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.log.DebugContext(ctx, "validation failed to run", logger.Form(c.name), logger.Error(err))
		c.notify(Update{Fields: fields, Snapshot: snap})
		return nil, nil, err
	}

	// Field results applied while a full run was pending are newer than it.
	var fresher []string
	if full {
		for p, seq := range c.fieldApplied {
			if seq > applied {
				fresher = append(fresher, p)
			}
		}
	} else {
		c.applied++
		for _, p := range fields {
			c.fieldApplied[p] = c.applied
		}
	}
	changed := c.applyErrorsLocked(fields, fresher, errs, scope)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.DebugContext(ctx, "validation finished",
		logger.Form(c.name),
		logger.Strategy(c.Strategy().String()),
		logger.Fields(fields),
		logger.ErrorCount(len(errs)),
		logger.Generation(gen),
		logger.Duration(time.Since(start)),
	)

	var updated []string
	if fields != nil {
		updated = mergePaths(fields, changed)
	}
	c.notify(Update{Fields: updated, Snapshot: snap})
	return out, errs, nil
}

// applyErrorsLocked replaces the errors within the run's scope, leaving
// paths under keep untouched, and moves the scoped fields to valid or
// invalid. It returns the paths whose error changed.
func (c *Controller) applyErrorsLocked(fields, keep []string, errs validator.ValidationErrors, scope []string) []string {
	owned := func(p string) bool {
		return inScope(p, fields) && (len(keep) == 0 || !inScope(p, keep))
	}

	previous := make(map[string]string)
	for p, verr := range c.errors {
		if owned(p) {
			previous[p] = verr.Message
			delete(c.errors, p)
		}
	}

	for _, verr := range errs {
		if !owned(verr.Field) || !c.resolver.Covers(verr.Field) {
			continue
		}
		if _, seen := c.errors[verr.Field]; seen {
			continue
		}
		c.errors[verr.Field] = verr
	}

	for _, p := range scope {
		if !owned(p) {
			continue
		}
		ev := EventPass
		if _, bad := c.errors[p]; bad {
			ev = EventFail
		}
		m := c.fields[p]
		_ = m.Fire(EventValidate)
		_ = m.Fire(ev)
	}
	for p := range c.errors {
		if _, known := c.fields[p]; !known {
			m := c.machine(p)
			_ = m.Fire(EventValidate)
			_ = m.Fire(EventFail)
		}
	}

	var changed []string
	for p, msg := range previous {
		if cur, ok := c.errors[p]; !ok || cur.Message != msg {
			changed = append(changed, p)
		}
	}
	for p := range c.errors {
		if _, had := previous[p]; !had && owned(p) {
			changed = append(changed, p)
		}
	}
	slices.Sort(changed)
	return changed
}

// supersedeLocked invalidates every in-flight run.
func (c *Controller) supersedeLocked() {
	c.gen++
	if c.cancelFull != nil {
		c.cancelFull()
		c.cancelFull = nil
	}
	c.supersedeFieldsLocked()
}

// supersedeFieldsLocked invalidates the in-flight field run, if any.
func (c *Controller) supersedeFieldsLocked() {
	c.fieldGen++
	if c.cancelField != nil {
		c.cancelField()
		c.cancelField = nil
	}
}

func (c *Controller) machine(path string) *fieldMachine {
	m, ok := c.fields[path]
	if !ok {
		m = newFieldMachine()
		c.fields[path] = m
	}
	return m
}

func (c *Controller) storeLocked(path string, value any) error {
	if err := fieldpath.Set(c.values, path, fieldpath.Clone(value)); err != nil {
		return err
	}
	for ap, a := range c.arrays {
		if fieldpath.HasPrefix(ap, path) || fieldpath.HasPrefix(path, ap) {
			a.syncLocked()
		}
	}
	return nil
}

func (c *Controller) markDirtyLocked(path string) {
	cur, _ := fieldpath.Get(c.values, path)
	def, _ := fieldpath.Get(c.defaults, path)
	if fieldpath.Equal(cur, def) {
		delete(c.dirty, path)
		return
	}
	c.dirty[path] = true
}

func (c *Controller) notify(u Update) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	ids := make([]uint64, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(Update), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.subs[id])
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}

func mergePaths(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
