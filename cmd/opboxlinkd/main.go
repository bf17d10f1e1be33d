// Command opboxlinkd is the supervisory link daemon running aboard the
// robot or the topside operator box, depending on configuration.
package main

import (
	"fmt"
	"os"

	"github.com/osu-uwrt/opboxlink/cmd/opboxlinkd/commands"
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
