// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

// Package logging provides the service-wide zerolog logger.
//
// # Overview
//
// A single global zerolog.Logger is configured once from main with Init and
// read everywhere else through the level helpers or a component logger:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logger := logging.WithComponent("index")
//	logger.Info().Int("vectors", n).Str("strategy", "ivf").Msg("index built")
//
// # Request Context
//
// HTTP middleware stores a request ID in the request context and background
// jobs (scheduled refreshes, content events) store a correlation ID. Ctx adds
// both to the returned logger:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("refresh failed")
//
// # Adapters
//
//   - SlogHandler feeds slog records (suture supervisor events) into zerolog
//   - WatermillAdapter implements watermill.LoggerAdapter for the content
//     event router
//
// # Configuration
//
// Environment variables read by the config package:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file and line (default: false)
package logging
