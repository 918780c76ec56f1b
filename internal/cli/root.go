// Package cli is the entry point shared by the motors binaries.
package cli

import (
	"os"

	cmdpkg "github.com/berrythewa/motors/internal/cli/cmd"
)

// SetVersionInfo records build information for the version command.
func SetVersionInfo(version, buildTime, commit string) {
	cmdpkg.SetVersionInfo(version, buildTime, commit)
}

// Execute runs the motors command line and exits with its status.
func Execute() {
	os.Exit(cmdpkg.Run(os.Args[1:], os.Stdout, os.Stderr))
}
