// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package services adapts server components to suture.Service.

Each wrapper turns a component's own lifecycle into Serve(ctx) error and
names itself through fmt.Stringer for supervisor logs:

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
  - IndexSchedulerService: initial index build, retried until it succeeds,
    then periodic refreshes.
  - EventProcessorService: the watermill content event router.
*/
package services
