package app

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/assetsync"
)

// closeCounter is a syncer that only records Close calls.
type closeCounter struct {
	assetsync.Syncer
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_Syncer_Injected verifies that an injected syncer is shared and closed on shutdown.
func TestApp_Syncer_Injected(t *testing.T) {
	stub := &closeCounter{}
	app, err := New("1.0.0", "test", "2024-01-01", "test", WithSyncer(stub))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := app.Syncer()
			if err != nil {
				t.Errorf("Syncer() failed: %v", err)
				return
			}
			if s != stub {
				t.Error("Syncer() returned a different instance")
			}
		}()
	}
	wg.Wait()

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
	if stub.closed != 1 {
		t.Errorf("Close() called %d times, want 1", stub.closed)
	}
}

// TestApp_Shutdown_NoSyncer verifies shutdown before any command needed a syncer.
func TestApp_Shutdown_NoSyncer(t *testing.T) {
	app, err := New("1.0.0", "test", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := app.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
}

func TestApp_WithOptions(t *testing.T) {
	logger := zerolog.Nop()
	cfg := &Config{Format: "yaml"}
	app, err := New("1.0.0", "test", "2024-01-01", "test", WithLogger(&logger), WithConfig(cfg))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if app.Logger() != &logger {
		t.Error("WithLogger() not applied")
	}
	if app.OutputFormat() != "yaml" {
		t.Errorf("OutputFormat() = %q, want yaml", app.OutputFormat())
	}
}

// TestApp_Execute runs the root command end to end with an injected syncer.
func TestApp_Execute(t *testing.T) {
	app, err := New("1.0.0", "test", "2024-01-01", "test", WithSyncer(&closeCounter{}))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := app.Execute(context.Background(), []string{"version", "-q"}); err != nil {
		t.Errorf("version failed: %v", err)
	}
	if !app.Config().Quiet {
		t.Error("-q not applied to config")
	}
	if err := app.Execute(context.Background(), []string{"sync", "jamf"}); err == nil {
		t.Error("sync accepted an unknown feed")
	}
	if err := app.Execute(context.Background(), []string{"--config", "/nonexistent/assetsync.yaml", "version"}); err == nil {
		t.Error("missing --config file was accepted")
	}
}
