// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Package services adapts triprec components to suture.Service.
//
// Every service blocks in Serve until its context is canceled and returns
// ctx.Err() on a clean stop. Errors returned for any other reason make the
// supervisor restart the service with backoff.
package services
