// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

/*
Package supervisor runs the server's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("synapse")
	├── DataSupervisor ("data-layer")
	│   └── IndexSchedulerService
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventProcessorService (if events are enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a crashing event consumer is
restarted with backoff while the HTTP server keeps serving. Supervisor
events (start, failure, backoff) are logged through sutureslog.

Usage:

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if _, err := tree.Add(supervisor.LayerData, services.NewIndexSchedulerService(lifecycle, schedCfg, logger)); err != nil {
	    return err
	}
	if _, err := tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(server, 10*time.Second)); err != nil {
	    return err
	}
	return tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
