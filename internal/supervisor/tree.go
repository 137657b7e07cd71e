// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names a child supervisor of the tree.
type Layer string

const (
	// LayerData owns the index: the initial build and the periodic refresh.
	LayerData Layer = "data-layer"

	// LayerMessaging owns the content event consumer.
	LayerMessaging Layer = "messaging-layer"

	// LayerAPI owns the HTTP server.
	LayerAPI Layer = "api-layer"
)

// Layers lists the layers in start order. The index is scheduled before the
// HTTP server comes up so the first readiness probe usually sees a build in
// progress rather than an idle engine.
func Layers() []Layer {
	return []Layer{LayerData, LayerMessaging, LayerAPI}
}

// TreeConfig tunes restart behaviour. The same values apply to every layer.
type TreeConfig struct {
	// FailureThreshold is how many recent failures a layer tolerates before
	// it backs off. Default: 5
	FailureThreshold float64

	// FailureDecay is the half-life, in seconds, of the failure count.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is how long a layer pauses restarts once the
	// threshold is crossed. Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service gets to stop, and
	// therefore how long an in-flight refresh may delay shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree runs the recommendation server's services.
//
// A refresh that keeps failing backs off inside the data layer while the api
// layer goes on answering searches from the last published index. Likewise a
// broken NATS connection only restarts the messaging layer.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig
}

// NewSupervisorTree creates the "synapse" root with one child per Layer.
// Zero fields of config take defaults. A nil logger uses slog.Default.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) *SupervisorTree {
	if logger == nil {
		logger = slog.Default()
	}
	config = config.withDefaults()

	// MustHook has a pointer receiver. Layers inherit the hook from the root.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()
	root := suture.New("synapse", config.spec(hook))

	layers := make(map[Layer]*suture.Supervisor, 3)
	for _, l := range Layers() {
		sup := suture.New(string(l), config.spec(nil))
		root.Add(sup)
		layers[l] = sup
	}

	return &SupervisorTree{root: root, layers: layers, config: config}
}

// Add registers svc with a layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("unknown supervisor layer %q", layer)
	}
	return sup.Add(svc), nil
}

func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The channel yields the
// result once the tree has stopped.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that outlived ShutdownTimeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
