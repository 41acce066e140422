package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/muurk/thermabridge/internal/bootstrap"
	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/device"
	"github.com/muurk/thermabridge/internal/discovery"
	"github.com/muurk/thermabridge/internal/gpio"
	"github.com/muurk/thermabridge/internal/link"
	"github.com/muurk/thermabridge/internal/logging"
	"github.com/muurk/thermabridge/internal/ota"
	"github.com/muurk/thermabridge/internal/peripheral"
	"github.com/muurk/thermabridge/internal/reset"
	"github.com/muurk/thermabridge/internal/server"
	"github.com/muurk/thermabridge/internal/settings"
	"github.com/muurk/thermabridge/internal/storage"
	"github.com/muurk/thermabridge/internal/system"
	"github.com/muurk/thermabridge/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	settingsPath string
	logLevel     string
	dataDir      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bootstrap sequence",
	Long: `Run the bootstrap sequence until the device restarts or a signal arrives.

Settings are read from the YAML file given by --config, then overridden by
THERMABRIDGE_* environment variables and finally by flags.`,
	Example: `  # Run with the packaged settings file
  thermabridge run

  # Run against a scratch volume with the simulated radio
  thermabridge run --config ./dev.yaml --data-dir /tmp/tb --log-level debug`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().StringVarP(&settingsPath, "config", "c", settings.DefaultPath, "Path to the daemon settings file")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory backing the config volume")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	s, err := settings.Load(settingsPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	if dataDir != "" {
		s.DataDir = dataDir
	}

	if err := logging.Initialize(s.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	logging.Info("Starting ThermaBridge",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("data_dir", s.DataDir),
		zap.String("radio", s.Radio.Driver),
	)

	app, err := assemble(s, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.Indicator.Enabled {
		peripheral.Supervise(ctx, app.console)
	}

	err = app.seq.Run(ctx, clock.New())
	if err == nil {
		// A restart was issued and returned, which only happens when the
		// restarter itself failed.
		return fmt.Errorf("restart did not take effect")
	}

	logging.Info("Shutdown signal received, stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.HTTP.ShutdownTimeout)
	defer cancel()
	if serr := app.seq.Shutdown(shutdownCtx); serr != nil {
		logging.Warn("Shutdown incomplete", zap.Error(serr))
	}
	return nil
}

// appliance is the assembled daemon.
type appliance struct {
	device  *device.Context
	store   *config.Store
	prefs   *storage.Prefs
	link    *link.Controller
	portal  *server.Portal
	console *peripheral.Console
	seq     *bootstrap.Sequencer
}

// assemble builds every component from s without starting any of them.
func assemble(s settings.Settings, out io.Writer) (*appliance, error) {
	clk := clock.New()
	dev := device.NewContext(clk.Now())

	vol := storage.NewDirVolume(s.DataDir)
	store := config.NewStore(vol)
	prefs := storage.NewPrefs(vol)

	radio, err := buildRadio(s, clk)
	if err != nil {
		return nil, err
	}
	ctrl := link.NewController(radio, s.AccessPointIP())

	httpCfg := server.Config{
		ListenAddr:      s.HTTP.Listen,
		ReadTimeout:     s.HTTP.ReadTimeout,
		WriteTimeout:    s.HTTP.WriteTimeout,
		ShutdownTimeout: s.HTTP.ShutdownTimeout,
	}
	deps := server.Deps{Store: store, Link: ctrl, Device: dev, Clock: clk}
	portal := server.NewPortal(server.PortalConfig{HTTP: httpCfg, DNSAddr: s.DNS.Listen}, deps)

	updates := ota.NewListener()
	diag := server.NewDiagnostics(server.DiagnosticsConfig{
		HTTP:           httpCfg,
		EventsInterval: s.Events.Interval,
	}, deps, prefs, updates)

	restarter, err := system.NewRestarter(s.Restart.Mode)
	if err != nil {
		return nil, err
	}

	console := peripheral.NewConsole(dev, out, s.Product)
	var indicator reset.Indicator
	if s.Indicator.Enabled {
		indicator = console
	}

	guard := &reset.Guard{
		Monitor: reset.NewMonitor(buildResetInput(s)),
		Action: &reset.Action{
			Device:     dev,
			Indicator:  indicator,
			Namespaces: []reset.Namespace{store, prefs},
			Restarter:  restarter,
		},
	}

	seq := bootstrap.New(bootstrap.Deps{
		Device:      dev,
		Store:       store,
		Link:        ctrl,
		Portal:      portal,
		Diagnostics: diag,
		Updates:     updates,
		Advertiser:  discovery.NewAdvertiser(),
		Prefs:       prefs,
		Guard:       guard,
		Restarter:   restarter,
	}, bootstrap.Options{
		ConnectTimeout: s.Connect.Timeout,
		PollInterval:   s.Connect.PollInterval,
		Product:        s.Product,
		HTTPPort:       s.HTTPPort(),
		Version:        version.Version,
	})

	return &appliance{
		device:  dev,
		store:   store,
		prefs:   prefs,
		link:    ctrl,
		portal:  portal,
		console: console,
		seq:     seq,
	}, nil
}

// buildRadio returns the radio driver named by the settings.
func buildRadio(s settings.Settings, clk clock.Clock) (link.Radio, error) {
	switch s.Radio.Driver {
	case settings.RadioSim:
		networks := make([]link.SimNetwork, 0, len(s.Radio.Networks))
		for _, n := range s.Radio.Networks {
			networks = append(networks, link.SimNetwork{
				SSID: n.SSID,
				PSK:  n.PSK,
				IP:   net.ParseIP(n.IP),
			})
		}
		radio := link.NewSimRadio(clk, networks...)
		radio.AssociationDelay = s.Radio.AssociationDelay
		return radio, nil
	case settings.RadioNMCLI:
		return link.NewNMCLIRadio(s.Radio.Interface), nil
	default:
		return nil, fmt.Errorf("unknown radio driver %q", s.Radio.Driver)
	}
}

// buildResetInput returns the factory-reset input named by the settings.
func buildResetInput(s settings.Settings) gpio.Input {
	switch s.Reset.Driver {
	case settings.ResetSysfs:
		return gpio.NewSysfsInput(s.Reset.Pin)
	case settings.ResetFile:
		return gpio.NewFileTrigger(s.Reset.Path)
	default:
		return gpio.None{}
	}
}
