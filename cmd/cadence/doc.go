// Package main hosts the Cadence CLI entrypoint and command graph.
//
// The Cobra-based command tree covers weekly plan editing, routine catalog
// inspection, trigger synchronization, guided runs, and configuration
// scaffolding. It centralizes configuration resolution and store wiring so
// subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
