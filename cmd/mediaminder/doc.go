// Package main hosts the MediaMinder CLI entrypoint and command graph.
//
// The Cobra command tree covers catalog search, tracking, recommendations,
// recent releases, cache maintenance, and configuration scaffolding. Services
// are wired lazily in commandContext so commands that only touch the config
// file never open the detail cache or reach the network.
//
// Add behaviour to the internal packages first, then surface it here as a
// command or flag.
package main
