// Package application provides application initialization and dependency wiring.
// It owns the pre-flight checks the comparison core relies on (at least two
// existing input files), drives parsing, comparison and rendering for the
// compare command, and builds the HTTP server for the serve command.
package application
