// Package main hosts the dms CLI entrypoint and command graph.
//
// The Cobra-based command tree maps terminal invocations onto the pipeline
// stages: scanning the document tree, summarizing pending changes, reviewing
// them, and applying the approved set to the state store. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
