package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/osu-uwrt/opboxlink/internal/cli/prompt"
	"github.com/osu-uwrt/opboxlink/internal/config"
	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/osu-uwrt/opboxlink/internal/link"
	"github.com/osu-uwrt/opboxlink/internal/transceiver"
)

const notifyWaitForConnection = 2 * time.Second

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a one-off acknowledged notification, for bench testing",
	Long: `Prompt for a severity, sensor name, and description, then open a
short-lived Link Engine using the same role and peer settings as a running
opboxlinkd, send one NOTIFICATION_FRAME, and report whether it was
acknowledged.

This bypasses the embedding interface entirely and is meant for exercising a
peer's notification handling on the bench, not for production alerting.

Examples:
  opboxlinkctl notify
  opboxlinkctl notify --config /etc/opboxlink/config.yaml`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().String("config", "", "Path to the opboxlinkd config file (default: same resolution as opboxlinkd)")
}

func runNotify(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	severityStr, err := prompt.SelectString("Severity", []string{"WARNING", "ERROR", "FATAL"})
	if err != nil {
		return err
	}
	severity, err := frame.ParseNotificationType(severityStr)
	if err != nil {
		return err
	}

	sensor, err := prompt.InputRequired("Sensor name")
	if err != nil {
		return err
	}

	description, err := prompt.InputOptional("Description")
	if err != nil {
		return err
	}

	xcvr, err := newNotifyTransceiver(cfg)
	if err != nil {
		return fmt.Errorf("failed to create transceiver: %w", err)
	}

	engine, err := newNotifyEngine(cfg, xcvr)
	if err != nil {
		return fmt.Errorf("failed to start link: %w", err)
	}
	defer func() { _ = engine.Close() }()

	fmt.Println("waiting for connection...")
	deadline := time.Now().Add(notifyWaitForConnection)
	for !engine.Connected() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if !engine.Connected() {
		return fmt.Errorf("peer did not connect within %s", notifyWaitForConnection)
	}

	acked, err := engine.SendNotification(severity, sensor, description, 2*time.Second)
	if err != nil {
		return fmt.Errorf("send_notification: %w", err)
	}
	if !acked {
		return fmt.Errorf("notification was not acknowledged")
	}

	fmt.Println("notification acknowledged")
	return nil
}

func newNotifyTransceiver(cfg *config.Config) (transceiver.Transceiver, error) {
	if cfg.Link.PeerAddress == "localhost" {
		side := transceiver.RobotSide
		if cfg.Role == "opbox" {
			side = transceiver.OpboxSide
		}
		return transceiver.NewLoopback("localhost", cfg.Link.PeerPort, side)
	}
	return transceiver.NewRemoteUDP(cfg.Link.PeerAddress, cfg.Link.PeerPort)
}

// notifyEngine is the subset of *link.RobotLink / *link.OpboxLink notify needs.
type notifyEngine interface {
	Connected() bool
	Close() error
	SendNotification(kind frame.NotificationType, sensor, description string, timeout time.Duration) (bool, error)
}

func newNotifyEngine(cfg *config.Config, xcvr transceiver.Transceiver) (notifyEngine, error) {
	switch cfg.Role {
	case "opbox":
		return link.NewOpboxLink(xcvr, cfg.Link.Label+"-notify", link.Callbacks{}, nil)
	case "robot":
		return link.NewRobotLink(xcvr, cfg.Link.Label+"-notify", link.Callbacks{}, nil)
	default:
		return nil, fmt.Errorf("unknown role %q", cfg.Role)
	}
}
