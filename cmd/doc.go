// Package cmd implements the command-line interface for feedbridge. It
// provides a hierarchical command structure for running the bridge and for
// inspecting a running instance.
//
// The package is organized into several subpackages:
//
//   - serve: Runs the bridge process itself, normally launched by the
//     browser through the native messaging manifest
//   - status: Queries the health endpoint of a running bridge
//   - util: Shared utilities for command-line processing (internal use)
//
// See feedbridge -help for a list of all commands.
package cmd
