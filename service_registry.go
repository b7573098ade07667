package main

import (
	"context"
	"fmt"
	"sync"
)

// Service is the lifecycle every application service implements.
type Service interface {
	// Name identifies the service in logs and errors.
	Name() string
	// Initialize runs once all services are registered.
	Initialize(ctx context.Context) error
	// Shutdown releases whatever Initialize acquired.
	Shutdown() error
}

type serviceEntry struct {
	service  Service
	name     string
	critical bool // startup fails when a critical service fails
}

// ServiceRegistry owns the application services and runs their lifecycle
// in registration order.
type ServiceRegistry struct {
	ctx      context.Context
	logger   func(string)
	services []serviceEntry
	byName   map[string]Service
	mu       sync.RWMutex
}

// NewServiceRegistry creates an empty registry.
func NewServiceRegistry(ctx context.Context, logger func(string)) *ServiceRegistry {
	if logger == nil {
		logger = func(string) {}
	}
	return &ServiceRegistry{
		ctx:      ctx,
		logger:   logger,
		services: make([]serviceEntry, 0),
		byName:   make(map[string]Service),
	}
}

// Register adds a service whose failure only degrades the application.
func (r *ServiceRegistry) Register(svc Service) error {
	return r.register(svc, false)
}

// RegisterCritical adds a service that must initialize for startup to
// succeed.
func (r *ServiceRegistry) RegisterCritical(svc Service) error {
	return r.register(svc, true)
}

func (r *ServiceRegistry) register(svc Service, critical bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := svc.Name()
	if _, exists := r.byName[name]; exists {
		return WrapError("ServiceRegistry", "Register", fmt.Errorf("service %q already registered", name))
	}
	r.services = append(r.services, serviceEntry{service: svc, name: name, critical: critical})
	r.byName[name] = svc
	return nil
}

// Get returns the service registered under name.
func (r *ServiceRegistry) Get(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.byName[name]
	return svc, ok
}

// Names lists the registered services in registration order.
func (r *ServiceRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.services))
	for i, e := range r.services {
		names[i] = e.name
	}
	return names
}

func (r *ServiceRegistry) snapshot() []serviceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]serviceEntry, len(r.services))
	copy(entries, r.services)
	return entries
}

// InitializeAll initializes services in registration order. The first
// critical failure aborts startup; other failures are logged.
func (r *ServiceRegistry) InitializeAll() error {
	for _, entry := range r.snapshot() {
		if err := entry.service.Initialize(r.ctx); err != nil {
			if entry.critical {
				r.logger(fmt.Sprintf("Critical service %q failed to initialize: %v", entry.name, err))
				return WrapError("ServiceRegistry", "InitializeAll", fmt.Errorf("critical service %q failed: %w", entry.name, err))
			}
			r.logger(fmt.Sprintf("Service %q failed to initialize (degraded): %v", entry.name, err))
		}
	}
	return nil
}

// ShutdownAll shuts services down in reverse registration order. Errors are
// logged and do not stop the remaining shutdowns.
func (r *ServiceRegistry) ShutdownAll() {
	entries := r.snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		if err := entries[i].service.Shutdown(); err != nil {
			r.logger(fmt.Sprintf("Service %q shutdown error: %v", entries[i].name, err))
		}
	}
}
