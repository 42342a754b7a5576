// Package executor applies a reconciliation plan to the registry.
//
// Every mutation is a read-modify-write of the whole record, because the
// registry has no partial update. Mutations run one at a time behind a rate
// limiter. A failed mutation is logged and counted and the run moves on to
// the next one; only context cancellation stops a run early.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/logging"
	"github.com/agentstation/assetsync/pkg/reconcile"
	"github.com/agentstation/assetsync/pkg/sync"
)

// Registry is the write side of the registry client.
type Registry interface {
	GetAsset(ctx context.Context, id int) (assets.RegistryRecord, error)
	CreateAsset(ctx context.Context, rec assets.RegistryRecord) (assets.RegistryRecord, error)
	EditAsset(ctx context.Context, id int, rec assets.RegistryRecord) (assets.RegistryRecord, error)
	GetProductModel(ctx context.Context, id int) (assets.ProductModel, error)
	EditProductModel(ctx context.Context, m assets.ProductModel) (assets.ProductModel, error)
}

// Event describes one attempted mutation.
type Event struct {
	Feed   assets.Feed
	Action reconcile.Action
	// Before is the registry record as planned; zero for creates.
	Before assets.RegistryRecord
	// After is the record the registry stored; zero on failure.
	After assets.RegistryRecord
	// Model is set for model-age updates.
	Model assets.ProductModel
	Err   error
}

// EventHandler observes mutations as they are applied.
type EventHandler func(Event)

// Option configures an Executor.
type Option func(*Executor)

// WithInterval sets the minimum spacing between mutating calls. Zero
// disables throttling.
func WithInterval(d time.Duration) Option {
	return func(e *Executor) {
		e.limiter = newLimiter(d)
	}
}

// WithEventHandler registers a handler called after every mutation.
func WithEventHandler(fn EventHandler) Option {
	return func(e *Executor) {
		if fn != nil {
			e.handlers = append(e.handlers, fn)
		}
	}
}

// Executor applies plans for one feed.
type Executor struct {
	registry Registry
	planner  *reconcile.Planner
	limiter  *rate.Limiter
	handlers []EventHandler
}

// New creates an executor. The planner supplies the status table and the
// label link for new records.
func New(reg Registry, planner *reconcile.Planner, opts ...Option) *Executor {
	e := &Executor{
		registry: reg,
		planner:  planner,
		limiter:  newLimiter(constants.DefaultMutationInterval),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// Apply runs every mutation in plan, creates first, then updates, then
// model ages, and records each outcome in result. The returned error is
// non-nil only when ctx ends before the plan is finished.
func (e *Executor) Apply(ctx context.Context, plan *reconcile.Plan, result *sync.Result) error {
	logger := logging.Ctx(ctx).With().Str("stage", "apply").Logger()

	for _, c := range plan.Creates {
		if err := e.create(ctx, &logger, plan.Feed, c, result); err != nil {
			return err
		}
	}
	for _, u := range plan.Updates {
		if err := e.update(ctx, &logger, plan.Feed, u, result); err != nil {
			return err
		}
	}
	for _, m := range plan.ModelAges {
		if err := e.modelAge(ctx, &logger, plan.Feed, m, result); err != nil {
			return err
		}
	}
	return nil
}

// wait blocks until the next mutation may be issued.
func (e *Executor) wait(ctx context.Context) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for mutation slot: %w", err)
	}
	return nil
}

func (e *Executor) create(ctx context.Context, logger *zerolog.Logger, feed assets.Feed, c reconcile.Create, result *sync.Result) error {
	if err := e.wait(ctx); err != nil {
		return err
	}

	created, err := e.registry.CreateAsset(ctx, c.Record)
	result.Record(reconcile.ActionCreate, created.ID, c.Record.Name, err)
	e.emit(Event{Feed: feed, Action: reconcile.ActionCreate, After: created, Err: err})
	if err != nil {
		logger.Error().Err(err).
			Str("action", string(reconcile.ActionCreate)).
			Str("name", c.Record.Name).
			Str("serial_number", c.Record.SerialNumber).
			Msg("create failed")
		return nil
	}
	logger.Info().
		Int("asset_id", created.ID).
		Str("action", string(reconcile.ActionCreate)).
		Str("name", created.Name).
		Str("external_id", c.Source.ExternalID).
		Msg("asset created")

	// The label link embeds the assigned ID, so it is written in a second call.
	if created.ID == 0 {
		err := errors.NewValidationError("ID", created.ID, "created asset has no ID, label not attached")
		result.Record(reconcile.ActionLabel, 0, c.Record.Name, err)
		e.emit(Event{Feed: feed, Action: reconcile.ActionLabel, Before: created, Err: err})
		logger.Error().Err(err).
			Str("action", string(reconcile.ActionLabel)).
			Str("name", c.Record.Name).
			Msg("label update skipped")
		return nil
	}
	if err := e.wait(ctx); err != nil {
		return err
	}
	labeled := created
	labeled.Attributes = created.Attributes.Clone()
	e.planner.LabelPatch(created.ID).Apply(&labeled, e.planner.Config().Statuses)

	after, err := e.registry.EditAsset(ctx, created.ID, labeled)
	result.Record(reconcile.ActionLabel, created.ID, created.Name, err)
	e.emit(Event{Feed: feed, Action: reconcile.ActionLabel, Before: created, After: after, Err: err})
	if err != nil {
		logger.Error().Err(err).
			Int("asset_id", created.ID).
			Str("action", string(reconcile.ActionLabel)).
			Msg("label update failed")
		return nil
	}
	logger.Debug().
		Int("asset_id", created.ID).
		Str("action", string(reconcile.ActionLabel)).
		Msg("label attached")
	return nil
}

func (e *Executor) update(ctx context.Context, logger *zerolog.Logger, feed assets.Feed, u reconcile.Update, result *sync.Result) error {
	id := u.Registry.ID
	event := logger.Info().
		Int("asset_id", id).
		Str("action", string(u.Action)).
		Str("name", u.Registry.Name).
		Strs("fields", u.Patch.Fields())
	if len(u.Failed) > 0 {
		event = event.Strs("predicates", u.FailedNames())
	}
	event.Msg("applying update")

	if err := e.wait(ctx); err != nil {
		return err
	}

	after, err := e.readModifyWrite(ctx, id, u.Patch)
	result.Record(u.Action, id, u.Registry.Name, err)
	e.emit(Event{Feed: feed, Action: u.Action, Before: u.Registry, After: after, Err: err})
	if err != nil {
		logger.Error().Err(err).
			Int("asset_id", id).
			Str("action", string(u.Action)).
			Msg("update failed")
	}
	return nil
}

func (e *Executor) readModifyWrite(ctx context.Context, id int, patch assets.Patch) (assets.RegistryRecord, error) {
	full, err := e.registry.GetAsset(ctx, id)
	if err != nil {
		return assets.RegistryRecord{}, err
	}
	patch.Apply(&full, e.planner.Config().Statuses)
	return e.registry.EditAsset(ctx, id, full)
}

func (e *Executor) modelAge(ctx context.Context, logger *zerolog.Logger, feed assets.Feed, m reconcile.ModelAgeUpdate, result *sync.Result) error {
	if err := e.wait(ctx); err != nil {
		return err
	}

	model, err := e.registry.GetProductModel(ctx, m.ModelID)
	if err == nil {
		model.Age = m.Value()
		model, err = e.registry.EditProductModel(ctx, model)
	}
	result.Record(reconcile.ActionModelAge, m.ModelID, m.ModelName, err)
	e.emit(Event{Feed: feed, Action: reconcile.ActionModelAge, Model: model, Err: err})

	if err != nil {
		logger.Error().Err(err).
			Int("model_id", m.ModelID).
			Str("action", string(reconcile.ActionModelAge)).
			Msg("model age update failed")
		return nil
	}
	logger.Info().
		Int("model_id", m.ModelID).
		Str("action", string(reconcile.ActionModelAge)).
		Str("model", m.ModelName).
		Str("age", m.Value()).
		Msg("model age updated")
	return nil
}

func (e *Executor) emit(ev Event) {
	for _, fn := range e.handlers {
		fn(ev)
	}
}
