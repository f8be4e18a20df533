// Package main hosts the dubsync CLI entrypoint and command graph.
//
// The root command takes a video URL and a target language, runs the dubbing
// pipeline, and prints the final state. Subcommands list the locale table,
// run preflight checks, and scaffold configuration. Configuration and logger
// setup live in commandContext so subcommands only deal with presentation.
package main
