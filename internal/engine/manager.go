package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/stellarlinkco/lorewright/internal/decision"
	"github.com/stellarlinkco/lorewright/internal/llm"
	"github.com/stellarlinkco/lorewright/internal/search"
	"github.com/stellarlinkco/lorewright/internal/session"
	"github.com/stellarlinkco/lorewright/internal/tool"
	toolbuiltin "github.com/stellarlinkco/lorewright/internal/tool/builtin"
)

const (
	// defaultRetention is how long a finished session keeps its live engine
	// before the janitor drops it. The stored record stays either way.
	defaultRetention = 24 * time.Hour

	janitorSchedule = "@every 10m"
)

var (
	ErrSessionExists   = errors.New("session already has a live engine")
	ErrSessionNotFound = errors.New("no live engine for session")
)

// DeciderFactory builds the decision source for a new session. The default
// wires the configured chat model; tests substitute scripted deciders.
type DeciderFactory func(cfg session.LLMConfig, registry *tool.Registry) (Decider, error)

// ManagerOptions tune the manager and every engine it creates.
type ManagerOptions struct {
	Engine    Options
	Retention time.Duration
	Decider   DeciderFactory
}

// Manager tracks one live engine per active session and prunes finished ones
// on a schedule.
type Manager struct {
	store     session.Store
	registry  *tool.Registry
	factory   DeciderFactory
	engineOpt Options
	retention time.Duration

	mu      sync.RWMutex
	engines map[string]*Engine
	done    map[string]time.Time // session id -> when it went terminal

	cron *rcron.Cron
}

// NewManager builds a manager with the full tool set registered. The search
// client may be search.Unconfigured() when no key is available.
func NewManager(store session.Store, searchClient search.Client, opts *ManagerOptions) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("engine: store is required")
	}
	if searchClient == nil {
		searchClient = search.Unconfigured()
	}

	registry := tool.NewRegistry()
	if err := toolbuiltin.RegisterAll(registry, searchClient); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	m := &Manager{
		store:     store,
		registry:  registry,
		factory:   defaultDeciderFactory,
		retention: defaultRetention,
		engines:   make(map[string]*Engine),
		done:      make(map[string]time.Time),
	}
	if opts != nil {
		m.engineOpt = opts.Engine
		if opts.Retention > 0 {
			m.retention = opts.Retention
		}
		if opts.Decider != nil {
			m.factory = opts.Decider
		}
	}
	return m, nil
}

func defaultDeciderFactory(cfg session.LLMConfig, registry *tool.Registry) (Decider, error) {
	client, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return decision.NewEngine(client, registry)
}

// Registry exposes the shared tool registry, mainly for command surfaces
// that list tool declarations.
func (m *Manager) Registry() *tool.Registry { return m.registry }

// Create makes a new stored session and its live engine.
func (m *Manager) Create(ctx context.Context, title string, cfg session.LLMConfig) (*Engine, error) {
	decider, err := m.factory(cfg, m.registry)
	if err != nil {
		return nil, fmt.Errorf("build decider: %w", err)
	}

	sess, err := m.store.CreateSession(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	eng, err := New(m.store, decider, m.registry, sess, cfg, &m.engineOpt)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.engines[sess.ID]; exists {
		return nil, ErrSessionExists
	}
	m.engines[sess.ID] = eng
	return eng, nil
}

// Attach rebuilds a live engine for a stored session, typically after a
// restart. History, output and the iteration counter come back from the
// store, so a paused session resumes where it stopped.
func (m *Manager) Attach(ctx context.Context, id string, cfg session.LLMConfig) (*Engine, error) {
	m.mu.RLock()
	eng, ok := m.engines[id]
	m.mu.RUnlock()
	if ok {
		return eng, nil
	}

	sess, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	decider, err := m.factory(cfg, m.registry)
	if err != nil {
		return nil, fmt.Errorf("build decider: %w", err)
	}

	eng, err = New(m.store, decider, m.registry, sess, cfg, &m.engineOpt)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.engines[id]; ok {
		return existing, nil
	}
	m.engines[id] = eng
	return eng, nil
}

// Get returns the live engine for a session.
func (m *Manager) Get(id string) (*Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eng, ok := m.engines[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return eng, nil
}

// Release marks a session's engine as finished. The janitor removes it once
// the retention window passes; the stored record is never deleted.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.engines[id]; ok {
		m.done[id] = time.Now()
	}
}

// Delete drops a live engine immediately.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.engines, id)
	delete(m.done, id)
}

// StartJanitor begins the periodic prune of terminal engines.
func (m *Manager) StartJanitor() error {
	if m.cron != nil {
		return nil
	}
	c := rcron.New()
	if _, err := c.AddFunc(janitorSchedule, m.prune); err != nil {
		return fmt.Errorf("schedule janitor: %w", err)
	}
	c.Start()
	m.cron = c
	log.Printf("[engine] janitor started (%s, retention %s)", janitorSchedule, m.retention)
	return nil
}

// Stop halts the janitor. Live engines stay usable.
func (m *Manager) Stop() {
	if m.cron != nil {
		m.cron.Stop()
		m.cron = nil
	}
}

func (m *Manager) prune() {
	cutoff := time.Now().Add(-m.retention)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, eng := range m.engines {
		if !eng.Status().Terminal() {
			continue
		}
		finishedAt, marked := m.done[id]
		if !marked {
			m.done[id] = time.Now()
			continue
		}
		if finishedAt.Before(cutoff) {
			delete(m.engines, id)
			delete(m.done, id)
			log.Printf("[engine] pruned finished session %s", id)
		}
	}
}
