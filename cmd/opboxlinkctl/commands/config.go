package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osu-uwrt/opboxlink/internal/config"
)

// configCmd is the parent command for config file management.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the opboxlinkd config file",
	Long: `Generate and validate opboxlinkd's config file.

Examples:
  # Write a sample config to the default location
  opboxlinkctl config init

  # Validate an existing config file
  opboxlinkctl config validate /etc/opboxlink/config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample config file to the default location",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigValidate,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path, err := config.InitConfig(force)
	if err != nil {
		return err
	}
	fmt.Printf("wrote sample config to %s\n", path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := config.GetDefaultConfigPath()
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := config.Load(path); err != nil {
		return err
	}
	fmt.Printf("%s is valid\n", path)
	return nil
}
