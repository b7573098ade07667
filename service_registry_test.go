package main

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
)

type mockService struct {
	name           string
	initErr        error
	shutdownErr    error
	initCalled     bool
	shutdownCalled bool
	order          *[]string
}

func (m *mockService) Name() string { return m.name }

func (m *mockService) Initialize(ctx context.Context) error {
	m.initCalled = true
	if m.order != nil {
		*m.order = append(*m.order, "init:"+m.name)
	}
	return m.initErr
}

func (m *mockService) Shutdown() error {
	m.shutdownCalled = true
	if m.order != nil {
		*m.order = append(*m.order, "shutdown:"+m.name)
	}
	return m.shutdownErr
}

func newTestLogger() (func(string), *[]string) {
	var logs []string
	return func(msg string) { logs = append(logs, msg) }, &logs
}

func TestRegister_GetAndDuplicate(t *testing.T) {
	logger, _ := newTestLogger()
	reg := NewServiceRegistry(context.Background(), logger)

	svc := &mockService{name: "decks"}
	if err := reg.Register(svc); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got, ok := reg.Get("decks"); !ok || got != svc {
		t.Error("Get should return the registered instance")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get should miss unregistered names")
	}

	err := reg.RegisterCritical(&mockService{name: "decks"})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("duplicate registration error = %v", err)
	}
}

func TestGet_ThreadSafe(t *testing.T) {
	reg := NewServiceRegistry(context.Background(), nil)
	svc := &mockService{name: "concurrent"}
	_ = reg.Register(svc)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if got, ok := reg.Get("concurrent"); !ok || got != svc {
				t.Errorf("concurrent Get failed")
			}
		}()
		go func(i int) {
			defer wg.Done()
			_ = reg.Register(&mockService{name: fmt.Sprintf("svc-%d", i)})
		}(i)
	}
	wg.Wait()
	if n := len(reg.Names()); n != 51 {
		t.Errorf("expected 51 services, got %d", n)
	}
}

func TestLifecycle_Order(t *testing.T) {
	reg := NewServiceRegistry(context.Background(), nil)
	var order []string
	for _, name := range []string{"config", "decks", "export"} {
		_ = reg.Register(&mockService{name: name, order: &order})
	}

	if err := reg.InitializeAll(); err != nil {
		t.Fatal(err)
	}
	reg.ShutdownAll()

	want := []string{
		"init:config", "init:decks", "init:export",
		"shutdown:export", "shutdown:decks", "shutdown:config",
	}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v", order)
	}
	if !reflect.DeepEqual(reg.Names(), []string{"config", "decks", "export"}) {
		t.Errorf("Names = %v", reg.Names())
	}
}

func TestInitializeAll_CriticalFailure(t *testing.T) {
	reg := NewServiceRegistry(context.Background(), nil)
	after := &mockService{name: "after-critical"}
	_ = reg.Register(&mockService{name: "ok"})
	_ = reg.RegisterCritical(&mockService{name: "config", initErr: fmt.Errorf("bad config")})
	_ = reg.Register(after)

	err := reg.InitializeAll()
	if err == nil || !strings.Contains(err.Error(), `critical service "config" failed`) {
		t.Fatalf("InitializeAll error = %v", err)
	}
	if after.initCalled {
		t.Error("services after a critical failure must not be initialized")
	}
}

func TestInitializeAll_NonCriticalFailure(t *testing.T) {
	logger, logs := newTestLogger()
	reg := NewServiceRegistry(context.Background(), logger)
	after := &mockService{name: "after"}
	_ = reg.Register(&mockService{name: "decks", initErr: fmt.Errorf("disk locked")})
	_ = reg.Register(after)

	if err := reg.InitializeAll(); err != nil {
		t.Fatalf("non-critical failure aborted startup: %v", err)
	}
	if !after.initCalled {
		t.Error("later services should still initialize")
	}
	if len(*logs) != 1 || !strings.Contains((*logs)[0], "degraded") {
		t.Errorf("logs = %v", *logs)
	}
}

func TestShutdownAll_ContinuesAfterError(t *testing.T) {
	logger, logs := newTestLogger()
	reg := NewServiceRegistry(context.Background(), logger)
	first := &mockService{name: "first"}
	_ = reg.Register(first)
	_ = reg.Register(&mockService{name: "second", shutdownErr: fmt.Errorf("busy")})

	reg.ShutdownAll()
	if !first.shutdownCalled {
		t.Error("shutdown stopped at the failing service")
	}
	if len(*logs) != 1 || !strings.Contains((*logs)[0], `"second" shutdown error: busy`) {
		t.Errorf("logs = %v", *logs)
	}
}
