// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package supervisor provides process supervision for Culturemap using suture v4.

The tree groups long-running services into three layers so a failure in one
layer restarts only that layer:

	RootSupervisor ("culturemap")
	├── DataSupervisor ("data-layer")
	│   └── MaintenanceService (value log GC or DuckDB checkpoint)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   ├── Forwarder (event bus to WebSocket)
	│   └── SyncService (periodic event refresh)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with exponential backoff. FailureThreshold and
FailureDecay control when a supervisor gives up and backs off. Supervisor
events are logged through sutureslog.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewMaintenanceService(gateway, 0))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewSyncService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

A service that returns suture.ErrDoNotRestart is removed from its supervisor
instead of being restarted. After shutdown, UnstoppedServiceReport lists any
service that did not return within ShutdownTimeout.

See the services subpackage for the wrappers.
*/
package supervisor
