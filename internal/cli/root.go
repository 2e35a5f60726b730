// Package cli implements the jumpmat command-line interface.
//
// This package provides commands for rendering calibration mats, printing
// their text specification, inspecting fiducial markers, managing mat
// configuration files, serving artifacts over HTTP, and managing the
// artifact cache. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - render: Generate PNG, JPEG, BMP, TIFF, OBJ/MTL, TXT or JSON artifacts
//   - spec: Print the printable text specification
//   - markers: List marker placements or write a single marker image
//   - config: Write or show mat configuration files
//   - serve: Serve artifacts over HTTP
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The CLI
// logger is attached to each command's context.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli
