// cmd/golmbench/main.go
package main

import (
	cmd "github.com/mwiater/golmbench/internal/cli"
)

// Build-time variables injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Seams for tests.
var (
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
)

// main starts the golmbench CLI application by delegating to the
// cobra root command defined in the golmbench package.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
