// Package main hosts the nzbforge CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces catalog exports, title-list
// inspection and pushing, the web API server, and configuration
// scaffolding. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
