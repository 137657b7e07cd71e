// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

package services

import (
	"context"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/synapse/internal/logging"
)

// EventRunner consumes events until its context ends.
// *events.Processor satisfies it.
type EventRunner interface {
	Run(ctx context.Context) error
}

// EventProcessorService runs the content event processor under
// supervision. A watermill router cannot be restarted once it stops, so an
// unexpected exit is reported with suture.ErrDoNotRestart.
type EventProcessorService struct {
	runner EventRunner
	name   string
}

// NewEventProcessorService wraps runner.
func NewEventProcessorService(runner EventRunner) *EventProcessorService {
	return &EventProcessorService{runner: runner, name: "event-processor"}
}

// Serve implements suture.Service.
func (s *EventProcessorService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logging.Error().Err(err).Str("service", s.name).Msg("Event processor exited unexpectedly")
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer for suture's logs.
func (s *EventProcessorService) String() string {
	return s.name
}
