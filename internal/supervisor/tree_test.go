// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitStarted(t *testing.T, svc *mockService) {
	t.Helper()
	select {
	case <-svc.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not start", svc.name)
	}
}

func mustAdd(t *testing.T, tree *SupervisorTree, layer Layer, svc suture.Service) {
	t.Helper()
	if _, err := tree.Add(layer, svc); err != nil {
		t.Fatalf("Add(%s) error = %v", layer, err)
	}
}

func TestNewSupervisorTree(t *testing.T) {
	t.Run("applies defaults for zero config", func(t *testing.T) {
		tree := NewSupervisorTree(quietLogger(), TreeConfig{})
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
		if tree.config.FailureBackoff != time.Second {
			t.Errorf("FailureBackoff = %v, want 1s", tree.config.FailureBackoff)
		}
		if tree.config.FailureThreshold != 5 {
			t.Errorf("FailureThreshold = %v, want 5", tree.config.FailureThreshold)
		}
	})

	t.Run("nil logger", func(t *testing.T) {
		tree := NewSupervisorTree(nil, TreeConfig{})
		if len(tree.layers) != len(Layers()) {
			t.Errorf("layers = %d, want %d", len(tree.layers), len(Layers()))
		}
	})
}

func TestSupervisorTree_AddUnknownLayer(t *testing.T) {
	tree := NewSupervisorTree(quietLogger(), TreeConfig{})
	_, err := tree.Add(Layer("cache-layer"), newMockService("cache"))
	if err == nil {
		t.Fatal("Add() error = nil, want unknown layer error")
	}
	if !strings.Contains(err.Error(), "cache-layer") {
		t.Errorf("error = %q, want it to name the layer", err)
	}
}

func TestSupervisorTree_RunsAllLayers(t *testing.T) {
	tree := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  50 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})

	scheduler := newMockService("index-scheduler")
	processor := newMockService("event-processor")
	httpSvc := newMockService("http-server")
	mustAdd(t, tree, LayerData, scheduler)
	mustAdd(t, tree, LayerMessaging, processor)
	mustAdd(t, tree, LayerAPI, httpSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*mockService{scheduler, processor, httpSvc} {
		waitStarted(t, svc)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not shut down")
	}

	for _, svc := range []*mockService{scheduler, processor, httpSvc} {
		if svc.stopCount.Load() != svc.startCount.Load() {
			t.Errorf("%s: %d starts, %d stops", svc.name, svc.startCount.Load(), svc.stopCount.Load())
		}
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	processor := newMockService("event-processor")
	processor.setFailCount(2)
	httpSvc := newMockService("http-server")
	mustAdd(t, tree, LayerMessaging, processor)
	mustAdd(t, tree, LayerAPI, httpSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for processor.startCount.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := processor.startCount.Load(); got < 3 {
		t.Errorf("processor started %d times, want at least 3", got)
	}
	if got := httpSvc.startCount.Load(); got != 1 {
		t.Errorf("http server started %d times, want 1 (isolated from messaging failures)", got)
	}

	cancel()
	<-errCh
}

func TestMockServiceIsService(t *testing.T) {
	var _ suture.Service = (*mockService)(nil)
}
