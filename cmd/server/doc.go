// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

/*
Package main is the entry point for the triprec server.

triprec recommends shuttle trips that resemble a reference trip or a stated
preference. The corpus is read from a CSV through DuckDB, turned into
normalized feature vectors and served by a brute-force nearest-neighbor
index behind a Chi HTTP API.

# Application Architecture

	RootSupervisor ("triprec")
	├── DataSupervisor ("data-layer")
	│   ├── RebuildService      (startup + periodic rebuilds, breaker, snapshot fallback)
	│   ├── CacheCleanupService (if RECOMMEND_CACHE_TTL > 0)
	│   └── snapshot GC         (if SNAPSHOT_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB for CSV ingestion
 4. Snapshot store: BadgerDB (optional)
 5. Model holder, result cache and rebuild service
 6. Supervisor tree and HTTP server

The HTTP API answers 503 until the first model is built.

# Example Usage

	export TRIPS_CSV_PATH=./data/trips.csv
	export RECOMMEND_DEFAULT_K=5
	./triprec-server

	curl -s localhost:8080/api/v1/recommend/by-id \
	  -d '{"trip_id":"V.01","n_recommendations":3}'
*/
package main
