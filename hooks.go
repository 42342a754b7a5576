package assetsync

import (
	"sync"

	"github.com/agentstation/assetsync/internal/executor"
	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/reconcile"
)

// Hook function types for registry mutations
type (
	// CreatedHook is called when a record is created in the registry
	CreatedHook func(feed assets.Feed, rec assets.RegistryRecord)

	// UpdatedHook is called when a record's fields are updated. Action is
	// update, retag, or label.
	UpdatedHook func(feed assets.Feed, action reconcile.Action, before, after assets.RegistryRecord)

	// TransitionHook is called when a record is reactivated or deactivated
	TransitionHook func(feed assets.Feed, action reconcile.Action, before, after assets.RegistryRecord)

	// ModelAgedHook is called when a product model's age is set
	ModelAgedHook func(feed assets.Feed, model assets.ProductModel)

	// FailedHook is called when a mutation fails
	FailedHook func(feed assets.Feed, action reconcile.Action, err error)
)

// hooks manages event callbacks for registry mutations
type hooks struct {
	mu           sync.RWMutex
	onCreated    []CreatedHook
	onUpdated    []UpdatedHook
	onTransition []TransitionHook
	onModelAged  []ModelAgedHook
	onFailed     []FailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnCreated registers a callback for when records are created
func (h *hooks) OnCreated(fn CreatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCreated = append(h.onCreated, fn)
}

// OnUpdated registers a callback for when records are updated
func (h *hooks) OnUpdated(fn UpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdated = append(h.onUpdated, fn)
}

// OnTransition registers a callback for when a record changes status
func (h *hooks) OnTransition(fn TransitionHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTransition = append(h.onTransition, fn)
}

// OnModelAged registers a callback for when a model age is written
func (h *hooks) OnModelAged(fn ModelAgedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onModelAged = append(h.onModelAged, fn)
}

// OnFailed registers a callback for when a mutation fails
func (h *hooks) OnFailed(fn FailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFailed = append(h.onFailed, fn)
}

// trigger dispatches one executor event to the matching hooks
func (h *hooks) trigger(ev executor.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if ev.Err != nil {
		for _, hook := range h.onFailed {
			hook(ev.Feed, ev.Action, ev.Err)
		}
		return
	}

	switch ev.Action {
	case reconcile.ActionCreate:
		for _, hook := range h.onCreated {
			hook(ev.Feed, ev.After)
		}
	case reconcile.ActionReactivate, reconcile.ActionDeactivate:
		for _, hook := range h.onTransition {
			hook(ev.Feed, ev.Action, ev.Before, ev.After)
		}
	case reconcile.ActionModelAge:
		for _, hook := range h.onModelAged {
			hook(ev.Feed, ev.Model)
		}
	default:
		for _, hook := range h.onUpdated {
			hook(ev.Feed, ev.Action, ev.Before, ev.After)
		}
	}
}

// OnCreated implements Syncer.
func (s *syncer) OnCreated(fn CreatedHook) { s.hooks.OnCreated(fn) }

// OnUpdated implements Syncer.
func (s *syncer) OnUpdated(fn UpdatedHook) { s.hooks.OnUpdated(fn) }

// OnTransition implements Syncer.
func (s *syncer) OnTransition(fn TransitionHook) { s.hooks.OnTransition(fn) }

// OnModelAged implements Syncer.
func (s *syncer) OnModelAged(fn ModelAgedHook) { s.hooks.OnModelAged(fn) }

// OnFailed implements Syncer.
func (s *syncer) OnFailed(fn FailedHook) { s.hooks.OnFailed(fn) }

// subscribeMetrics counts every mutation outcome through the hooks.
func (s *syncer) subscribeMetrics() {
	m := s.metrics
	s.hooks.OnCreated(func(feed assets.Feed, _ assets.RegistryRecord) {
		m.ObserveMutation(feed.String(), string(reconcile.ActionCreate), nil)
	})
	s.hooks.OnUpdated(func(feed assets.Feed, action reconcile.Action, _, _ assets.RegistryRecord) {
		m.ObserveMutation(feed.String(), string(action), nil)
	})
	s.hooks.OnTransition(func(feed assets.Feed, action reconcile.Action, _, _ assets.RegistryRecord) {
		m.ObserveMutation(feed.String(), string(action), nil)
	})
	s.hooks.OnModelAged(func(feed assets.Feed, _ assets.ProductModel) {
		m.ObserveMutation(feed.String(), string(reconcile.ActionModelAge), nil)
	})
	s.hooks.OnFailed(func(feed assets.Feed, action reconcile.Action, err error) {
		m.ObserveMutation(feed.String(), string(action), err)
	})
}
