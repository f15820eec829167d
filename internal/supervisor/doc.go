// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

/*
Package supervisor runs the long-lived triprec services under a suture v4
supervisor tree.

# Overview

Services are split into two layers so a failing rebuild loop never takes
the HTTP server down with it:

	RootSupervisor ("triprec")
	├── DataSupervisor ("data-layer")
	│   ├── RebuildService      (startup build + periodic rebuilds)
	│   ├── CacheCleanupService (expired result eviction)
	│   └── PeriodicService     (snapshot value-log GC, if snapshots enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through the zerolog slog bridge via sutureslog.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddDataService(rebuildSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Serve(ctx)
*/
package supervisor
