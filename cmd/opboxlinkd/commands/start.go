package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/osu-uwrt/opboxlink/internal/actuator"
	"github.com/osu-uwrt/opboxlink/internal/config"
	"github.com/osu-uwrt/opboxlink/internal/danger"
	"github.com/osu-uwrt/opboxlink/internal/fieldstore"
	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/osu-uwrt/opboxlink/internal/httpapi"
	"github.com/osu-uwrt/opboxlink/internal/indicator"
	"github.com/osu-uwrt/opboxlink/internal/link"
	"github.com/osu-uwrt/opboxlink/internal/logger"
	"github.com/osu-uwrt/opboxlink/internal/metrics"
	"github.com/osu-uwrt/opboxlink/internal/telemetry"
	"github.com/osu-uwrt/opboxlink/internal/transceiver"
	"github.com/osu-uwrt/opboxlink/pkg/embed"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the opboxlinkd daemon",
	Long: `Start the opboxlinkd supervisory daemon: the Link Engine, Actuator
Scheduler (opbox role only), danger-state aggregator, and diagnostic HTTP
surface.

Examples:
  # Start with default config location
  opboxlinkd start

  # Start with a custom config file
  opboxlinkd start --config /etc/opboxlink/config.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runID := uuid.NewString()
	logger.Info("opboxlinkd run starting", "run_id", runID)

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       true,
		SampleFraction: cfg.Telemetry.SampleFraction,
		RunID:          runID,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	metricsSet := metrics.New(registry)

	logger.Info("opboxlinkd starting", "role", cfg.Role, "peer", fmt.Sprintf("%s:%d", cfg.Link.PeerAddress, cfg.Link.PeerPort))

	xcvr, err := newTransceiver(cfg)
	if err != nil {
		return fmt.Errorf("failed to create transceiver: %w", err)
	}

	dangerRules := parseDangerRules(cfg)

	var opboxAPI *embed.OpboxAPI
	var dangerAggregator *danger.Aggregator
	var ledScheduler, buzzerScheduler *actuator.Scheduler

	callbacks := link.Callbacks{
		OnConnectionChange: func(connected bool) {
			up := 0.0
			if connected {
				up = 1.0
			}
			metricsSet.ConnectionUp.WithLabelValues(cfg.Role).Set(up)
			logger.Info("link connection state changed", "connected", connected)
		},
	}

	var engine interface {
		Connected() bool
		Close() error
		Store() *fieldstore.Store
	}

	switch cfg.Role {
	case "opbox":
		ledScheduler = actuator.New(indicatorSink(cfg.Indicators.LEDSinkPath), 0, "led", metricsSet)
		buzzerScheduler = actuator.New(indicatorSink(cfg.Indicators.BuzzerSinkPath), 0, "buzzer", metricsSet)

		callbacks.OnNotification = func(kind frame.NotificationType, sensor, description string) {
			logger.Warn("notification received", logger.Sensor(sensor), "kind", kind.String(), "description", description)
			applyAlertIndicators(cfg, kind, buzzerScheduler)
		}

		opboxLink, err := link.NewOpboxLink(xcvr, cfg.Link.Label, callbacks, metricsSet)
		if err != nil {
			return fmt.Errorf("failed to create opbox link: %w", err)
		}
		engine = opboxLink

		ledScheduler.SetPattern(indicator.LEDPattern(indicator.LEDSlowBlink), true)

	case "robot":
		// The robot side hosts the embedding interface: its ROS node
		// subscribes to diagnostics (feeding the danger aggregator below)
		// and wants kill-button state reported as it arrives, which
		// only this side observes (OPBOX_STATUS_FRAME is decoded here, not
		// sent here). robotLink is bound lazily because the Link Engine's
		// pump task starts inside the constructor, before this variable is
		// assigned. OnKillButton (KillReportEmitter) never touches
		// robotLink; only the adapter's SendNotification and Connected
		// resolve it, at call time.
		var robotLink *link.RobotLink
		opboxAPI = embed.New(
			robotLinkAdapter{get: func() *link.RobotLink { return robotLink }},
			robotLinkAdapter{get: func() *link.RobotLink { return robotLink }},
			func(state frame.KillState) {
				logger.Info("kill button state observed", "state", state)
			},
		)
		callbacks.OnKillButton = opboxAPI.KillReportEmitter

		var err error
		robotLink, err = link.NewRobotLink(xcvr, cfg.Link.Label, callbacks, metricsSet)
		if err != nil {
			return fmt.Errorf("failed to create robot link: %w", err)
		}
		engine = robotLink

		// The robot side is the natural home for the danger aggregator: it
		// has the onboard sensors and escalates toward the opbox over this
		// same link. Feeding it diagnostic_msgs/DiagnosticArray observations
		// is the external collaborator's responsibility; this only builds
		// the ready aggregator.
		if len(dangerRules) > 0 {
			dangerAggregator = danger.New(robotLink, dangerRules)
		}

	default:
		return fmt.Errorf("unknown role %q", cfg.Role)
	}

	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("link shutdown error", "error", err)
		}
		if ledScheduler != nil {
			ledScheduler.Close()
		}
		if buzzerScheduler != nil {
			buzzerScheduler.Close()
		}
	}()

	if dangerAggregator != nil {
		logger.Info("danger aggregator ready", "rules", len(dangerRules))
	}

	var servers []*http.Server
	if cfg.Diagnostic.Enabled {
		router := httpapi.NewRouter(engine, engine.Store())
		srv := &http.Server{Addr: cfg.Diagnostic.Address, Handler: router}
		servers = append(servers, srv)
		go func() {
			logger.Info("diagnostic HTTP surface listening", "address", cfg.Diagnostic.Address)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("diagnostic HTTP surface stopped", "error", err)
			}
		}()
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Address, Handler: mux}
		servers = append(servers, srv)
		go func() {
			logger.Info("metrics HTTP surface listening", "address", cfg.Metrics.Address)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics HTTP surface stopped", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("opboxlinkd is running. Press Ctrl+C to stop.")
	<-sigChan
	signal.Stop(sigChan)
	logger.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}

	logger.Info("opboxlinkd stopped")
	return nil
}

// robotLinkAdapter satisfies embed.Notifier and embed.ConnectionChecker by
// resolving the *link.RobotLink lazily through get, since the embedding
// surface must be wired into Callbacks before the RobotLink it wraps exists.
type robotLinkAdapter struct {
	get func() *link.RobotLink
}

func (a robotLinkAdapter) SendNotification(kind frame.NotificationType, sensor, description string, timeout time.Duration) (bool, error) {
	return a.get().SendNotification(kind, sensor, description, timeout)
}

func (a robotLinkAdapter) Connected() bool {
	return a.get().Connected()
}

func newTransceiver(cfg *config.Config) (transceiver.Transceiver, error) {
	if cfg.Link.PeerAddress == "localhost" {
		side := transceiver.RobotSide
		if cfg.Role == "opbox" {
			side = transceiver.OpboxSide
		}
		return transceiver.NewLoopback("localhost", cfg.Link.PeerPort, side)
	}
	return transceiver.NewRemoteUDP(cfg.Link.PeerAddress, cfg.Link.PeerPort)
}

func indicatorSink(path string) actuator.Sink {
	if path == "" {
		return actuator.NewMemorySink()
	}
	return actuator.NewFileSink(path)
}

func applyAlertIndicators(cfg *config.Config, kind frame.NotificationType, buzzer *actuator.Scheduler) {
	if buzzer == nil {
		return
	}

	var sev config.SeverityAlertConfig
	var state indicator.BuzzerState
	switch kind {
	case frame.NotificationWarning:
		sev, state = cfg.Alerts.Warn, indicator.BuzzerChirp
	case frame.NotificationError:
		sev, state = cfg.Alerts.Error, indicator.BuzzerLongChirp
	case frame.NotificationFatal:
		sev, state = cfg.Alerts.Error, indicator.BuzzerPanic
	default:
		return
	}

	if sev.BuzzerEnabled {
		buzzer.SetPattern(indicator.BuzzerPattern(state), true)
	}
}

// parseDangerRules converts cfg.Danger into danger.Rule values, skipping and
// logging any entry with an unrecognized escalation severity.
func parseDangerRules(cfg *config.Config) []danger.Rule {
	rules := make([]danger.Rule, 0, len(cfg.Danger))
	for _, r := range cfg.Danger {
		sev, err := frame.ParseNotificationType(r.EscalationSeverity)
		if err != nil {
			logger.Warn("skipping invalid danger rule", "diagnostic_name", r.DiagnosticName, logger.Err(err))
			continue
		}
		rules = append(rules, danger.Rule{
			DiagnosticName:     r.DiagnosticName,
			TargetLevel:        r.TargetLevel,
			MinConsecutive:     r.MinConsecutive,
			EscalationSeverity: sev,
		})
	}
	return rules
}
