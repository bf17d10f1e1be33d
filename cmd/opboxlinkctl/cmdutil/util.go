// Package cmdutil holds opboxlinkctl's global flag values, synced from the
// root command's PersistentPreRun so subcommands can read them without
// threading *cobra.Command through every call.
package cmdutil

import "github.com/osu-uwrt/opboxlink/internal/cli/output"

// GlobalFlags holds the parsed values of opboxlinkctl's persistent flags.
type GlobalFlags struct {
	Address string
	Output  string
	NoColor bool
}

// Flags is the process-wide parsed flag set.
var Flags GlobalFlags

// GetOutputFormatParsed parses Flags.Output into an output.Format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}
