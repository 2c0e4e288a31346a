// Package main hosts the ciff CLI entrypoint and command graph.
//
// The root command predicts candidate structures for PDF curve files; the
// subcommands manage configuration, inspect the structure catalog, populate
// the reference bank, and check the installation. Configuration resolution
// and logging setup live here so the internal packages receive explicit
// options.
package main
