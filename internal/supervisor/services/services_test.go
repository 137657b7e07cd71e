// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

type fakeBuilder struct {
	initCalls    atomic.Int32
	refreshCalls atomic.Int32
	initFails    int32
	refreshErr   error
}

func (b *fakeBuilder) Initialize(context.Context) (int, error) {
	if b.initCalls.Add(1) <= b.initFails {
		return 0, errors.New("store unavailable")
	}
	return 10, nil
}

func (b *fakeBuilder) Refresh(context.Context) (int, error) {
	b.refreshCalls.Add(1)
	return 10, b.refreshErr
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestIndexSchedulerService_Interface(t *testing.T) {
	var _ suture.Service = (*IndexSchedulerService)(nil)
	var _ suture.Service = (*EventProcessorService)(nil)
}

func TestIndexSchedulerService_Defaults(t *testing.T) {
	svc := NewIndexSchedulerService(&fakeBuilder{}, IndexSchedulerConfig{}, zerolog.Nop())
	if svc.config.RetryInterval != 30*time.Second {
		t.Errorf("RetryInterval = %v, want 30s", svc.config.RetryInterval)
	}
	if svc.config.BuildTimeout != 10*time.Minute {
		t.Errorf("BuildTimeout = %v, want 10m", svc.config.BuildTimeout)
	}
	if svc.String() != "index-scheduler" {
		t.Errorf("String() = %q, want index-scheduler", svc.String())
	}
}

func TestIndexSchedulerService_RetriesInitialBuild(t *testing.T) {
	b := &fakeBuilder{initFails: 2}
	svc := NewIndexSchedulerService(b, IndexSchedulerConfig{RetryInterval: 5 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitFor(t, "third initialize attempt", func() bool { return b.initCalls.Load() >= 3 })
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if got := b.initCalls.Load(); got != 3 {
		t.Errorf("Initialize calls = %d, want 3", got)
	}
	if b.refreshCalls.Load() != 0 {
		t.Error("Refresh called with refresh disabled")
	}
}

func TestIndexSchedulerService_PeriodicRefresh(t *testing.T) {
	b := &fakeBuilder{refreshErr: errors.New("embedding timeout")}
	svc := NewIndexSchedulerService(b, IndexSchedulerConfig{RefreshInterval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	// Failed refreshes do not stop the schedule.
	waitFor(t, "two refreshes", func() bool { return b.refreshCalls.Load() >= 2 })
	cancel()
	<-errCh

	if got := b.initCalls.Load(); got != 1 {
		t.Errorf("Initialize calls = %d, want 1", got)
	}
}

func TestIndexSchedulerService_RestartSkipsInitialize(t *testing.T) {
	b := &fakeBuilder{}
	svc := NewIndexSchedulerService(b, IndexSchedulerConfig{}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_ = svc.Serve(ctx)
		cancel()
	}
	if got := b.initCalls.Load(); got != 1 {
		t.Errorf("Initialize calls = %d, want 1", got)
	}
}

func TestIndexSchedulerService_SkipInitialBuild(t *testing.T) {
	b := &fakeBuilder{}
	svc := NewIndexSchedulerService(b, IndexSchedulerConfig{
		SkipInitialBuild: true,
		RefreshInterval:  10 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitFor(t, "first refresh", func() bool { return b.refreshCalls.Load() >= 1 })
	cancel()
	<-errCh

	if got := b.initCalls.Load(); got != 0 {
		t.Errorf("Initialize calls = %d, want 0", got)
	}
}

type fakeRunner struct {
	err       error
	immediate bool
}

func (r *fakeRunner) Run(ctx context.Context) error {
	if r.immediate {
		return r.err
	}
	<-ctx.Done()
	return nil
}

func TestEventProcessorService_Serve(t *testing.T) {
	t.Run("stops with context", func(t *testing.T) {
		svc := NewEventProcessorService(&fakeRunner{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	})

	t.Run("unexpected exit is not restarted", func(t *testing.T) {
		svc := NewEventProcessorService(&fakeRunner{immediate: true, err: errors.New("subscribe failed")})
		if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve() error = %v, want suture.ErrDoNotRestart", err)
		}
	})

	if got := NewEventProcessorService(&fakeRunner{}).String(); got != "event-processor" {
		t.Errorf("String() = %q, want event-processor", got)
	}
}
