package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/logging"
	"github.com/agentstation/assetsync/pkg/reconcile"
	"github.com/agentstation/assetsync/pkg/sync"
)

type fakeRegistry struct {
	assets  map[int]assets.RegistryRecord
	models  map[int]assets.ProductModel
	nextID  int
	calls   []string
	failGet map[int]error
	failNew error
	noIDs   bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		assets:  make(map[int]assets.RegistryRecord),
		models:  make(map[int]assets.ProductModel),
		nextID:  5001,
		failGet: make(map[int]error),
	}
}

func (f *fakeRegistry) GetAsset(_ context.Context, id int) (assets.RegistryRecord, error) {
	f.calls = append(f.calls, fmt.Sprintf("get %d", id))
	if err := f.failGet[id]; err != nil {
		return assets.RegistryRecord{}, err
	}
	rec, ok := f.assets[id]
	if !ok {
		return assets.RegistryRecord{}, fmt.Errorf("asset %d not found", id)
	}
	rec.Attributes = rec.Attributes.Clone()
	return rec, nil
}

func (f *fakeRegistry) CreateAsset(_ context.Context, rec assets.RegistryRecord) (assets.RegistryRecord, error) {
	f.calls = append(f.calls, "create "+rec.Name)
	if f.failNew != nil {
		return assets.RegistryRecord{}, f.failNew
	}
	if f.noIDs {
		return rec, nil
	}
	rec.ID = f.nextID
	f.nextID++
	f.assets[rec.ID] = rec
	return rec, nil
}

func (f *fakeRegistry) EditAsset(_ context.Context, id int, rec assets.RegistryRecord) (assets.RegistryRecord, error) {
	f.calls = append(f.calls, fmt.Sprintf("edit %d", id))
	f.assets[id] = rec
	return rec, nil
}

func (f *fakeRegistry) GetProductModel(_ context.Context, id int) (assets.ProductModel, error) {
	f.calls = append(f.calls, fmt.Sprintf("get model %d", id))
	m, ok := f.models[id]
	if !ok {
		return assets.ProductModel{}, fmt.Errorf("model %d not found", id)
	}
	return m, nil
}

func (f *fakeRegistry) EditProductModel(_ context.Context, m assets.ProductModel) (assets.ProductModel, error) {
	f.calls = append(f.calls, fmt.Sprintf("edit model %d", m.ID))
	f.models[m.ID] = m
	return m, nil
}

func newPlanner(t *testing.T) *reconcile.Planner {
	t.Helper()
	p, err := reconcile.NewPlanner(reconcile.CasperPolicy("Casper"))
	require.NoError(t, err)
	return p
}

func TestApplyCreate(t *testing.T) {
	reg := newFakeRegistry()
	var events []Event
	e := New(reg, newPlanner(t), WithInterval(0), WithEventHandler(func(ev Event) { events = append(events, ev) }))

	plan := &reconcile.Plan{
		Feed: assets.FeedCasper,
		Creates: []reconcile.Create{{
			Source: assets.SourceRecord{ExternalID: "55"},
			Record: assets.RegistryRecord{
				Name:         "mac-55",
				SerialNumber: "C02AB",
				Attributes:   assets.Attributes{assets.KindCPU: "M1"},
			},
		}},
	}
	result := sync.NewResult(assets.FeedCasper, "run-1")

	require.NoError(t, e.Apply(context.Background(), plan, result))

	assert.Equal(t, []string{"create mac-55", "edit 5001"}, reg.calls)
	stored := reg.assets[5001]
	assert.Equal(t, "https://tools.is.oregonstate.edu/td-asset-labels/5001", stored.Attributes.Get(assets.KindLabelLink))
	assert.Equal(t, "M1", stored.Attributes.Get(assets.KindCPU))

	assert.Equal(t, 1, result.Applied[reconcile.ActionCreate])
	assert.Equal(t, 1, result.Applied[reconcile.ActionLabel])
	require.Len(t, events, 2)
	assert.Equal(t, reconcile.ActionCreate, events[0].Action)
	assert.Equal(t, 5001, events[0].After.ID)
	assert.Empty(t, events[1].Before.Attributes.Get(assets.KindLabelLink), "the created record is not modified in place")
}

func TestApplyCreateFailureSkipsLabel(t *testing.T) {
	reg := newFakeRegistry()
	reg.failNew = errors.New("duplicate serial")
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	plan := &reconcile.Plan{
		Feed: assets.FeedCasper,
		Creates: []reconcile.Create{
			{Record: assets.RegistryRecord{Name: "mac-1"}},
			{Record: assets.RegistryRecord{Name: "mac-2"}},
		},
	}
	result := sync.NewResult(assets.FeedCasper, "run-1")
	require.NoError(t, New(reg, newPlanner(t), WithInterval(0)).Apply(ctx, plan, result))

	assert.Equal(t, []string{"create mac-1", "create mac-2"}, reg.calls)
	assert.Equal(t, 2, result.Failed[reconcile.ActionCreate])
	assert.Zero(t, result.Applied[reconcile.ActionLabel])
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "duplicate serial", result.Failures[0].Error)
	assert.True(t, tl.ContainsAll("create failed", "duplicate serial"))
}

func TestApplyCreateWithoutIDSkipsLabel(t *testing.T) {
	reg := newFakeRegistry()
	reg.noIDs = true
	var events []Event
	e := New(reg, newPlanner(t), WithInterval(0), WithEventHandler(func(ev Event) { events = append(events, ev) }))

	plan := &reconcile.Plan{
		Feed:    assets.FeedCasper,
		Creates: []reconcile.Create{{Record: assets.RegistryRecord{Name: "mac-1"}}},
	}
	result := sync.NewResult(assets.FeedCasper, "run-1")
	require.NoError(t, e.Apply(context.Background(), plan, result))

	assert.Equal(t, []string{"create mac-1"}, reg.calls, "no edit of asset 0")
	assert.Equal(t, 1, result.Applied[reconcile.ActionCreate])
	assert.Equal(t, 1, result.Failed[reconcile.ActionLabel])
	require.Len(t, result.Failures, 1)
	assert.Equal(t, reconcile.ActionLabel, result.Failures[0].Action)
	assert.Equal(t, "mac-1", result.Failures[0].Name)

	require.Len(t, events, 2)
	assert.Equal(t, reconcile.ActionLabel, events[1].Action)
	assert.Error(t, events[1].Err)
}

func TestApplyUpdateReadModifyWrite(t *testing.T) {
	reg := newFakeRegistry()
	reg.assets[10] = assets.RegistryRecord{
		ID:         10,
		Name:       "old-name",
		Status:     assets.Status{ID: 916, Name: "In Use"},
		Attributes: assets.Attributes{assets.KindCPU: "i5", assets.KindMemory: "8192"},
		Raw:        []byte(`{"ID":10,"LocationID":9001}`),
	}
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	var patch assets.Patch
	patch.Name = assets.StringPtr("new-name")
	patch.SetAttribute(assets.KindCPU, "i7")

	plan := &reconcile.Plan{
		Feed: assets.FeedCasper,
		Updates: []reconcile.Update{{
			Action:   reconcile.ActionUpdate,
			Registry: reg.assets[10],
			Patch:    patch,
			Failed:   []reconcile.Predicate{reconcile.PredicateName, reconcile.PredicateCPU},
		}},
	}
	result := sync.NewResult(assets.FeedCasper, "run-1")
	require.NoError(t, New(reg, newPlanner(t), WithInterval(0)).Apply(ctx, plan, result))

	assert.Equal(t, []string{"get 10", "edit 10"}, reg.calls)
	want := assets.RegistryRecord{
		ID:         10,
		Name:       "new-name",
		Status:     assets.Status{ID: 916, Name: "In Use"},
		Attributes: assets.Attributes{assets.KindCPU: "i7", assets.KindMemory: "8192"},
		Raw:        []byte(`{"ID":10,"LocationID":9001}`),
	}
	if diff := cmp.Diff(want, reg.assets[10]); diff != "" {
		t.Errorf("stored record mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, result.Applied[reconcile.ActionUpdate])
	assert.True(t, tl.ContainsAll(`"asset_id":10`, `"action":"update"`, `"predicates":["name","cpu"]`))
}

func TestApplyTransitions(t *testing.T) {
	reg := newFakeRegistry()
	reg.assets[1] = assets.RegistryRecord{ID: 1, Status: assets.Status{ID: 916, Name: "In Use"}}
	reg.assets[2] = assets.RegistryRecord{ID: 2, Status: assets.Status{ID: 920, Name: "Retired"}}
	reg.failGet[3] = errors.New("gateway timeout")

	plan := &reconcile.Plan{
		Feed: assets.FeedSCCM,
		Updates: []reconcile.Update{
			{Action: reconcile.ActionDeactivate, Registry: reg.assets[1], Patch: assets.Patch{Lifecycle: assets.Deactivate}},
			{Action: reconcile.ActionDeactivate, Registry: assets.RegistryRecord{ID: 3}, Patch: assets.Patch{Lifecycle: assets.Deactivate}},
			{Action: reconcile.ActionReactivate, Registry: reg.assets[2], Patch: assets.Patch{Lifecycle: assets.Activate}},
		},
	}
	result := sync.NewResult(assets.FeedSCCM, "run-1")
	require.NoError(t, New(reg, newPlanner(t), WithInterval(0)).Apply(context.Background(), plan, result))

	assert.Equal(t, assets.Status{ID: 918, Name: "Inactive"}, reg.assets[1].Status)
	assert.Equal(t, assets.Status{ID: 916, Name: "In Use"}, reg.assets[2].Status)
	assert.Equal(t, 1, result.Applied[reconcile.ActionDeactivate])
	assert.Equal(t, 1, result.Failed[reconcile.ActionDeactivate])
	assert.Equal(t, 1, result.Applied[reconcile.ActionReactivate])
	assert.Equal(t, []string{"get 1", "edit 1", "get 3", "get 2", "edit 2"}, reg.calls)
}

func TestApplyModelAge(t *testing.T) {
	reg := newFakeRegistry()
	reg.models[8] = assets.ProductModel{ID: 8, Name: "MacBookPro16,1"}

	plan := &reconcile.Plan{
		Feed: assets.FeedCasper,
		ModelAges: []reconcile.ModelAgeUpdate{
			{ModelID: 8, ModelName: "MacBookPro16,1", Year: "2019"},
			{ModelID: 9, ModelName: "Macmini9,1", Year: "2020"},
		},
	}
	result := sync.NewResult(assets.FeedCasper, "run-1")
	require.NoError(t, New(reg, newPlanner(t), WithInterval(0)).Apply(context.Background(), plan, result))

	assert.Equal(t, "01/01/2019", reg.models[8].Age)
	assert.Equal(t, 1, result.Applied[reconcile.ActionModelAge])
	assert.Equal(t, 1, result.Failed[reconcile.ActionModelAge])
	assert.Equal(t, []string{"get model 8", "edit model 8", "get model 9"}, reg.calls)
}

func TestApplyThrottles(t *testing.T) {
	reg := newFakeRegistry()
	plan := &reconcile.Plan{
		Feed:    assets.FeedCasper,
		Creates: []reconcile.Create{{Record: assets.RegistryRecord{Name: "mac-1"}}},
	}

	start := time.Now()
	err := New(reg, newPlanner(t), WithInterval(50*time.Millisecond)).
		Apply(context.Background(), plan, sync.NewResult(assets.FeedCasper, "run-1"))
	require.NoError(t, err)

	// The create goes out at once; the label write waits one interval.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestApplyCanceled(t *testing.T) {
	reg := newFakeRegistry()
	plan := &reconcile.Plan{
		Feed: assets.FeedCasper,
		Creates: []reconcile.Create{
			{Record: assets.RegistryRecord{Name: "mac-1"}},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(reg, newPlanner(t), WithInterval(time.Hour)).
		Apply(ctx, plan, sync.NewResult(assets.FeedCasper, "run-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reg.calls)
}
