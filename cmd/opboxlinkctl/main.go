// Command opboxlinkctl is the bench-testing control client for opboxlinkd:
// it reads the diagnostic HTTP surface and can send one-off notifications
// directly over the link, without going through the embedding interface.
package main

import (
	"fmt"
	"os"

	"github.com/osu-uwrt/opboxlink/cmd/opboxlinkctl/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
