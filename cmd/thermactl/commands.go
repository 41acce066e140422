package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/thermabridge/internal/client"
	"github.com/muurk/thermabridge/internal/config"
	"github.com/muurk/thermabridge/internal/discovery"
	"github.com/muurk/thermabridge/internal/link"
	"github.com/muurk/thermabridge/internal/registry"
	"github.com/muurk/thermabridge/internal/ui"
)

// Command flags
var (
	deviceTarget   string
	devicePort     int
	jsonOutput     bool
	requestTimeout time.Duration
	registryPath   string
	scanTimeout    int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceTarget, "device", "", "Device IP, hostname, name or nickname (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", 0, "Device HTTP port (default from registry, 80)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON instead of formatted output")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", client.DefaultTimeout, "Per-request timeout")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "Device registry file (default $XDG_CONFIG_HOME/thermabridge/devices.yaml)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(nicknameCmd)
	rootCmd.AddCommand(forgetCmd)
}

// commandContext bounds a whole command, retries included.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 4*requestTimeout+30*time.Second)
}

// fail prints err as a failure box and returns it for the exit status.
func fail(title string, err error) error {
	if jsonOutput {
		return err
	}
	ui.NewPrinter(nil).PrintError(title, err, client.Troubleshooting(err))
	return fmt.Errorf("%s", client.ShortMessage(err))
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for ThermaBridge devices on the network",
	Long: `Scan for ThermaBridge devices using mDNS/DNS-SD discovery.

Only devices in normal operation advertise themselves. A device serving the
provisioning portal is reached on its own access point at 192.168.4.1.
Every device found is remembered in the registry.`,
	Example: `  # Scan with the registry's default timeout
  thermactl scan

  # Longer scan for busy networks
  thermactl scan --scan-timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 0, "Scan timeout in seconds (default from registry)")
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, path, err := loadRegistry()
	if err != nil {
		return err
	}
	timeout := reg.Preferences.ScanTimeoutSeconds
	if scanTimeout > 0 {
		timeout = scanTimeout
	}

	p := ui.NewPrinter(nil)
	if !jsonOutput {
		p.PrintHeader("Device Scan", "thermactl scan", ui.Field{Key: "Timeout", Value: fmt.Sprintf("%ds", timeout)})
	}

	devices, err := discovery.ScanForDevices(time.Duration(timeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	observe(reg, devices)
	if err := reg.Save(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save device registry: %v\n", err)
	}

	if jsonOutput {
		return p.PrintJSON(devices)
	}

	if len(devices) == 0 {
		p.PrintWarning("No devices found",
			ui.Field{Key: "Hint", Value: "Devices advertise only once they are on a network"},
			ui.Field{Key: "Hint", Value: "Unprovisioned devices are at 192.168.4.1 on their access point"},
			ui.Field{Key: "Hint", Value: "Try increasing --scan-timeout"},
		)
		return nil
	}

	for _, d := range devices {
		fields := []ui.Field{
			{Key: "Address", Value: fmt.Sprintf("%s:%d", d.IP, d.Port)},
			{Key: "Hostname", Value: d.Hostname},
			{Key: "Version", Value: d.Version},
		}
		if e := reg.Get(d.Name); e != nil && e.Nickname != "" {
			fields = append(fields, ui.Field{Key: "Nickname", Value: e.Nickname})
		}
		p.PrintSuccess(d.Name, fields...)
	}
	p.Println(fmt.Sprintf("Found %d device(s). Use 'thermactl status --device <name>' for details.", len(devices)))
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the device's link and credential status",
	Example: `  thermactl status --device 192.168.4.1
  thermactl status --device kitchen --json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, t, reg, path, err := connect()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	st, err := c.Status(ctx)
	if err != nil {
		return fail("Status request failed", err)
	}
	remember(reg, path, t, func(d *registry.Device) {
		if st.SSID != "" {
			d.LastSSID = st.SSID
		}
	})

	p := ui.NewPrinter(nil)
	if jsonOutput {
		return p.PrintJSON(st)
	}

	fields := []ui.Field{
		{Key: "Configured", Value: strconv.FormatBool(st.Configured)},
		{Key: "SSID", Value: orNone(st.SSID)},
		{Key: "Password", Value: orNone(st.PSKMasked)},
		{Key: "Device name", Value: orNone(st.DevName)},
		{Key: "Wi-Fi status", Value: fmt.Sprintf("%s (%d)", link.Status(st.WifiStatus), st.WifiStatus)},
		{Key: "IP", Value: orNone(st.IP)},
	}
	p.PrintHeader("Device Status", "thermactl status", ui.Field{Key: "Device", Value: t.String()})
	if st.Configured {
		p.PrintSuccess("Configured", fields...)
	} else {
		p.PrintWarning("Not configured", fields...)
	}
	return nil
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show uptime and free memory",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	c, t, reg, path, err := connect()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	h, err := c.Health(ctx)
	if err != nil {
		return fail("Health request failed", err)
	}
	remember(reg, path, t, nil)

	p := ui.NewPrinter(nil)
	if jsonOutput {
		return p.PrintJSON(h)
	}
	p.PrintSuccess("Healthy",
		ui.Field{Key: "Device", Value: t.String()},
		ui.Field{Key: "Uptime", Value: (time.Duration(h.UptimeS) * time.Second).String()},
		ui.Field{Key: "Free heap", Value: fmt.Sprintf("%d bytes", h.FreeHeap)},
	)
	return nil
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show build, boot history and update listener state",
	Long: `Show the diagnostics document of a device in normal operation.

The /info endpoint is served only once the device has joined its network;
a device on its provisioning portal answers 404.`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, t, reg, path, err := connect()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	info, err := c.Info(ctx)
	if err != nil {
		return fail("Info request failed", err)
	}
	remember(reg, path, t, func(d *registry.Device) {
		d.Version = info.Build.Version
		if info.LastSSID != "" {
			d.LastSSID = info.LastSSID
		}
	})

	p := ui.NewPrinter(nil)
	if jsonOutput {
		return p.PrintJSON(info)
	}

	lastConnected := "never"
	if info.LastConnected != nil {
		lastConnected = info.LastConnected.Local().Format(time.RFC1123)
	}
	update := "disarmed"
	if info.Update.Armed {
		update = "armed as " + info.Update.Hostname
		if info.Update.Authenticated {
			update += " (password protected)"
		}
	}

	p.PrintHeader("Device Info", "thermactl info", ui.Field{Key: "Device", Value: t.String()})
	p.Println(ui.RenderModeBanner(info.Hostname, info.Mode,
		ui.Field{Key: "Version", Value: info.Build.Version},
		ui.Field{Key: "Commit", Value: info.Build.Commit},
		ui.Field{Key: "Uptime", Value: (time.Duration(info.UptimeS) * time.Second).String()},
	))
	p.PrintSuccess("Boot history",
		ui.Field{Key: "Boot count", Value: strconv.Itoa(info.BootCount)},
		ui.Field{Key: "Last SSID", Value: orNone(info.LastSSID)},
		ui.Field{Key: "Last IP", Value: orNone(info.LastIP)},
		ui.Field{Key: "Last connected", Value: lastConnected},
		ui.Field{Key: "Update listener", Value: update},
	)
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the stored configuration record",
	Long: `Show the configuration record stored on the device.

The stored password is returned by the device as written; it is masked here
unless --json is given.`,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	c, t, reg, path, err := connect()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	raw, rec, err := c.Config(ctx)
	if err != nil {
		return fail("Config request failed", err)
	}
	remember(reg, path, t, func(d *registry.Device) { d.LastSSID = rec.SSID })

	if jsonOutput {
		_, err := os.Stdout.Write(raw)
		return err
	}

	p := ui.NewPrinter(nil)
	p.PrintHeader("Stored Configuration", "thermactl config", ui.Field{Key: "Device", Value: t.String()})
	p.PrintSuccess("config.json", recordFields(rec)...)
	return nil
}

func recordFields(rec *config.Record) []ui.Field {
	fields := []ui.Field{
		{Key: "SSID", Value: orNone(rec.SSID)},
		{Key: "Password", Value: orNone(rec.MaskedPSK())},
		{Key: "Device name", Value: orNone(rec.DevName)},
		{Key: "Reset hold", Value: fmt.Sprintf("%ds", rec.ResetHoldSeconds)},
		{Key: "mDNS", Value: strconv.FormatBool(rec.MDNSEnable)},
		{Key: "Update password", Value: orNone(config.Mask(rec.OTAPassword))},
	}
	if rec.ResetHoldSeconds <= 0 {
		fields[3].Value += fmt.Sprintf(" (acts as %s)", rec.ResetHold())
	}
	if rec.DisplayEnabled {
		fields = append(fields, ui.Field{Key: "Display", Value: fmt.Sprintf("%dx%d", rec.DisplayWidth, rec.DisplayHeight)})
	}
	return fields
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices remembered in the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadRegistry()
		if err != nil {
			return err
		}
		p := ui.NewPrinter(nil)
		if jsonOutput {
			return p.PrintJSON(reg.Devices)
		}
		names := reg.Names()
		if len(names) == 0 {
			p.Println("No devices remembered yet. Run 'thermactl scan'.")
			return nil
		}
		for _, name := range names {
			d := reg.Get(name)
			p.PrintSuccess(name,
				ui.Field{Key: "Nickname", Value: orNone(d.Nickname)},
				ui.Field{Key: "Address", Value: fmt.Sprintf("%s:%d", d.LastIP, d.Port)},
				ui.Field{Key: "Version", Value: orNone(d.Version)},
				ui.Field{Key: "Network", Value: orNone(d.LastSSID)},
				ui.Field{Key: "Last seen", Value: d.LastSeen.Local().Format(time.RFC1123)},
			)
		}
		return nil
	},
}

var nicknameCmd = &cobra.Command{
	Use:   "nickname <device> <nickname>",
	Short: "Give a remembered device a nickname",
	Example: `  thermactl nickname ThermaBridge-3f2a kitchen
  thermactl status --device kitchen`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, path, err := loadRegistry()
		if err != nil {
			return err
		}
		name, _, ok := reg.Resolve(args[0])
		if !ok {
			return fmt.Errorf("unknown device %q. Run 'thermactl scan' first", args[0])
		}
		reg.SetNickname(name, args[1])
		if err := reg.Save(path); err != nil {
			return err
		}
		fmt.Printf("%s is now %q\n", name, args[1])
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <device>",
	Short: "Remove a device from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, path, err := loadRegistry()
		if err != nil {
			return err
		}
		name, _, ok := reg.Resolve(args[0])
		if !ok || !reg.Remove(name) {
			return fmt.Errorf("unknown device %q", args[0])
		}
		if err := reg.Save(path); err != nil {
			return err
		}
		fmt.Printf("Forgot %s\n", name)
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
