package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rawblock/cryptomunge/internal/contenders"
	"github.com/rawblock/cryptomunge/internal/cutlist"
	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/internal/search"
	"github.com/rawblock/cryptomunge/internal/store"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// run is the in-process record of one dispatched search driver — Munge,
// BTR, or Best-Fit — held alongside its cancel func, one per HTTP
// request rather than one long-lived process-wide scanner.
type run struct {
	id         uuid.UUID
	driver     string
	cancel     context.CancelFunc
	contenders *contenders.Registry
	progress   func() search.Snapshot
	startedAt  time.Time
}

// RunManager dispatches and tracks search driver runs, and is the target
// the Hub's alert callback feeds into for websocket broadcast.
type RunManager struct {
	mu       sync.Mutex
	runs     map[uuid.UUID]*run
	reg      *registry.Registry
	scorer   *search.Scorer
	envs     *search.EnvPool
	cuts     *cutlist.CutList
	store    *store.Store
	wsHub    *Hub
	capacity int
}

// NewRunManager wires a RunManager to the shared, process-wide registry,
// scorer, environment pool, and cutlist every run dispatches against.
func NewRunManager(reg *registry.Registry, scorer *search.Scorer, envs *search.EnvPool, cuts *cutlist.CutList, st *store.Store, wsHub *Hub, contenderCapacity int) *RunManager {
	return &RunManager{
		runs:     make(map[uuid.UUID]*run),
		reg:      reg,
		scorer:   scorer,
		envs:     envs,
		cuts:     cuts,
		store:    st,
		wsHub:    wsHub,
		capacity: contenderCapacity,
	}
}

func (m *RunManager) register(r *run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[r.id] = r
}

// Get returns the run record for id, or false if no such run exists.
func (m *RunManager) Get(id uuid.UUID) (*run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	return r, ok
}

// alertFunc builds the SequenceAlert callback for runID, broadcasting
// every new top-K entry over the websocket hub.
func (m *RunManager) alertFunc(runID uuid.UUID, driver string) search.AlertFunc {
	return func(a search.SequenceAlert) {
		if m.wsHub == nil {
			return
		}
		BroadcastSequenceAlert(m.wsHub, runID, driver, a)
	}
}

// StartMunge launches a Munge run in the background and returns its id.
func (m *RunManager) StartMunge(ctx context.Context, opts search.MungeOptions) uuid.UUID {
	id := uuid.New()
	cont := contenders.New(m.capacity)
	runCtx, cancel := context.WithCancel(ctx)

	var saveState func()
	if m.store != nil {
		saveState = func() {
			if data, err := cont.Snapshot(); err == nil {
				_ = m.store.SaveCheckpoint(context.Background(), id, data)
			}
		}
	}

	driver := search.NewMunge(m.reg, m.scorer, m.envs, cont, m.cuts, m.alertFunc(id, "munge"), saveState)
	r := &run{id: id, driver: "munge", cancel: cancel, contenders: cont, progress: driver.Progress, startedAt: time.Now()}
	m.register(r)

	go func() {
		defer cancel()
		_ = driver.Run(runCtx, opts)
	}()
	return id
}

// StartBTR launches a BTR run in the background and returns its id.
func (m *RunManager) StartBTR(ctx context.Context, opts search.BTROptions) uuid.UUID {
	id := uuid.New()
	cont := contenders.New(m.capacity)
	runCtx, cancel := context.WithCancel(ctx)

	var saveState func()
	if m.store != nil {
		saveState = func() {
			if data, err := cont.Snapshot(); err == nil {
				_ = m.store.SaveCheckpoint(context.Background(), id, data)
			}
		}
	}

	driver := search.NewBTR(m.scorer, m.envs, cont, m.alertFunc(id, "btr"), saveState)
	r := &run{id: id, driver: "btr", cancel: cancel, contenders: cont, progress: driver.Progress, startedAt: time.Now()}
	m.register(r)

	go func() {
		defer cancel()
		_ = driver.Run(runCtx, opts)
	}()
	return id
}

// StartBestFit launches a Best-Fit run in the background and returns its
// id.
func (m *RunManager) StartBestFit(ctx context.Context, opts search.BestFitOptions) uuid.UUID {
	id := uuid.New()
	cont := contenders.New(m.capacity)
	runCtx, cancel := context.WithCancel(ctx)

	var saveState func()
	if m.store != nil {
		saveState = func() {
			if data, err := cont.Snapshot(); err == nil {
				_ = m.store.SaveCheckpoint(context.Background(), id, data)
			}
		}
	}

	driver := search.NewBestFit(m.scorer, m.envs, cont, m.alertFunc(id, "bestfit"), saveState)
	r := &run{id: id, driver: "bestfit", cancel: cancel, contenders: cont, progress: driver.Progress, startedAt: time.Now()}
	m.register(r)

	go func() {
		defer cancel()
		_ = driver.Run(runCtx, opts)
	}()
	return id
}

// Cancel stops a run's candidate loop cooperatively.
func (m *RunManager) Cancel(id uuid.UUID) bool {
	r, ok := m.Get(id)
	if !ok {
		return false
	}
	r.cancel()
	return true
}

// StatusView is the JSON-friendly status of one run.
type StatusView struct {
	RunID      uuid.UUID      `json:"runId"`
	Driver     string         `json:"driver"`
	StartedAt  time.Time      `json:"startedAt"`
	Progress   search.Snapshot `json:"progress"`
	Considered int            `json:"contendersHeld"`
}

// Status returns a point-in-time view of a run.
func (m *RunManager) Status(id uuid.UUID) (StatusView, bool) {
	r, ok := m.Get(id)
	if !ok {
		return StatusView{}, false
	}
	return StatusView{
		RunID:      r.id,
		Driver:     r.driver,
		StartedAt:  r.startedAt,
		Progress:   r.progress(),
		Considered: r.contenders.Len(),
	}, true
}

// TopContenders returns the top n contenders currently held by a run.
func (m *RunManager) TopContenders(id uuid.UUID, n int) ([]models.Contender, bool) {
	r, ok := m.Get(id)
	if !ok {
		return nil, false
	}
	return r.contenders.Top(n), true
}

func dataTypeFromString(s string) models.InputType {
	t := models.InputType(s)
	if models.DataTypeIndex(t) >= 0 {
		return t
	}
	return models.InputCombined
}
