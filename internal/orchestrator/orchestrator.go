package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"synthd/internal/device"
	"synthd/internal/registry"
)

type Orchestrator struct {
	cfg Config
	log zerolog.Logger
	reg *registry.Registry

	mu          sync.Mutex
	initialized bool
	dev         *device.Context
	locks       map[string]*idLock

	// loadMu serializes execution-object construction across identifiers.
	loadMu sync.Mutex

	startTime time.Time
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

// New constructs an orchestrator from cfg. Operations other than the status
// reads fail with a not-initialized error until Initialize has run.
func New(cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	return &Orchestrator{
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "orchestrator").Logger(),
		reg:       registry.New(),
		locks:     make(map[string]*idLock),
		startTime: time.Now(),
	}
}

// Initialize selects the compute device and readies the orchestrator for
// loads. Selection happens once; repeat calls are no-ops. The returned bool
// reports whether the selected device is an accelerator.
func (o *Orchestrator) Initialize(ctx context.Context, preferred string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.initialized {
		return o.dev.Accelerated()
	}
	o.dev = device.Select(ctx, preferred, o.cfg.Accelerator, o.cfg.Logger)
	o.initialized = true
	o.cfg.Publisher.Publish(Event{Name: "initialized", Fields: map[string]any{"device": o.dev.Kind()}})
	return o.dev.Accelerated()
}

// Ready reports whether Initialize has run.
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.initialized
}

// Device exposes the selected device context, or nil before Initialize.
// The hardware monitor samples through it.
func (o *Orchestrator) Device() *device.Context { return o.device() }

// device returns the selected context, or nil before Initialize.
func (o *Orchestrator) device() *device.Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.initialized {
		return nil
	}
	return o.dev
}

// lockID acquires the exclusive lock for one model identifier, creating it
// on first use. The returned func releases it.
func (o *Orchestrator) lockID(id string) func() {
	o.mu.Lock()
	l := o.locks[id]
	if l == nil {
		l = &idLock{}
		o.locks[id] = l
	}
	l.refs++
	o.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		o.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(o.locks, id)
		}
		o.mu.Unlock()
	}
}

// Shutdown releases every handle and returns cached device memory. The
// orchestrator must not be used afterwards.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	err := o.reg.Clear()
	loadedModels.Set(0)
	if dev := o.device(); dev != nil {
		dev.ReleaseCached(ctx)
	}
	o.cfg.Publisher.Publish(Event{Name: "shutdown"})
	if err != nil {
		o.log.Warn().Err(err).Msg("handle release during shutdown failed")
	}
	return err
}
