// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

/*
Package supervisor runs bookreco's long-lived services under suture v4.

The tree has two layers so the ops endpoint stays up while report
generation restarts:

	RootSupervisor ("bookreco")
	├── EngineSupervisor ("engine-layer")
	│   └── ReportService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events are logged through sutureslog, so callers pass an
*slog.Logger (see logging.NewSlogLogger).

# Usage

	tree, err := supervisor.NewTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddEngineService(reportSvc)
	tree.AddAPIService(httpSvc)
	return tree.Serve(ctx)
*/
package supervisor
