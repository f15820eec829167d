// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

// Command triprec queries the trip recommender from a terminal.
package main

import (
	"os"

	"github.com/tomtom215/triprec/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
