package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/thermabridge/internal/client"
	"github.com/muurk/thermabridge/internal/discovery"
	"github.com/muurk/thermabridge/internal/registry"
	"github.com/muurk/thermabridge/internal/ui"
)

// defaultPortalAddr is where an unprovisioned device serves its portal.
const defaultPortalAddr = "192.168.4.1"

var (
	provSSID    string
	provPSK     string
	provDevName string
	provYes     bool
	provWait    time.Duration
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Send Wi-Fi credentials to a device's provisioning portal",
	Long: `Send Wi-Fi credentials to a device serving its captive portal.

Join the device's access point (ThermaBridge-XXXX) first. The device stores
the credentials, tries the network for up to 15 seconds and restarts onto it
when it connects. If it cannot connect the portal stays up and the command
can be run again.

When the device already holds credentials you are asked to confirm the
overwrite, unless --yes is given. Without --psk the password is prompted for
on a terminal; an empty password provisions an open network.`,
	Example: `  # Provision the device on its access point
  thermactl provision --ssid HomeNet

  # Name the device and wait for it to appear on the home network
  thermactl provision --ssid HomeNet --devname kitchen-bridge --wait 60s`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&provSSID, "ssid", "", "Network name (required)")
	provisionCmd.Flags().StringVar(&provPSK, "psk", "", "Network password (prompted when omitted)")
	provisionCmd.Flags().StringVar(&provDevName, "devname", "", "Device name (blank keeps the default)")
	provisionCmd.Flags().BoolVarP(&provYes, "yes", "y", false, "Overwrite existing credentials without asking")
	provisionCmd.Flags().DurationVar(&provWait, "wait", 0, "After sending, wait this long for the device to advertise itself")
	_ = provisionCmd.MarkFlagRequired("ssid")
}

const (
	stepCheck = iota
	stepConfirm
	stepSend
	stepWait
)

func runProvision(cmd *cobra.Command, args []string) error {
	if deviceTarget == "" {
		deviceTarget = defaultPortalAddr
	}
	c, t, reg, path, err := connect()
	if err != nil {
		return err
	}

	creds := client.Credentials{SSID: provSSID, PSK: provPSK, DevName: provDevName}
	if err := creds.Validate(); err != nil {
		return err
	}
	if !cmd.Flags().Changed("psk") {
		psk, err := promptSecret(fmt.Sprintf("Password for %q (empty for an open network): ", provSSID))
		if err != nil {
			return err
		}
		creds.PSK = psk
	}

	p := ui.NewPrinter(nil)
	p.PrintHeader("Provision Device", "thermactl provision",
		ui.Field{Key: "Device", Value: t.String()},
		ui.Field{Key: "SSID", Value: creds.SSID},
		ui.Field{Key: "Device name", Value: orNone(creds.DevName)},
	)

	prog := ui.NewProgress("Provisioning", "Check device", "Confirm overwrite", "Send credentials", "Wait for device").SetWidth(p.Width())
	ctx, cancel := commandContext()
	defer cancel()

	prog.Start(stepCheck, "GET /status")
	st, err := c.Status(ctx)
	if err != nil {
		prog.Fail(stepCheck, client.ShortMessage(err))
		p.Println(prog.Render())
		return fail("Device not reachable", err)
	}
	prog.Complete(stepCheck, fmt.Sprintf("configured=%t", st.Configured))

	switch {
	case !st.Configured:
		prog.Skip(stepConfirm, "no stored credentials")
	case provYes:
		prog.Skip(stepConfirm, "--yes")
	default:
		if !ui.ConfirmReprovision(os.Stdin, os.Stdout, t.Label(), st.SSID) {
			prog.Fail(stepConfirm, "cancelled")
			p.Println(prog.Render())
			return fmt.Errorf("provisioning cancelled")
		}
		prog.Complete(stepConfirm, "confirmed")
	}

	prog.Start(stepSend, "POST /save")
	page, err := c.Provision(ctx, creds)
	if err != nil {
		prog.Fail(stepSend, client.ShortMessage(err))
		p.Println(prog.Render())
		return fail("Provisioning failed", err)
	}
	prog.Complete(stepSend, client.AckText(page))

	name := creds.DevName
	if name == "" {
		name = st.DevName
	}
	if t.Name == "" {
		t.Name = name
	}

	if provWait <= 0 {
		prog.Skip(stepWait, "not requested")
		p.Println(prog.Render())
		remember(reg, path, t, func(d *registry.Device) { d.LastSSID = creds.SSID })
		p.PrintSuccess("Credentials sent",
			ui.Field{Key: "Next", Value: "The device restarts onto " + creds.SSID + " once it connects"},
			ui.Field{Key: "Then", Value: "Rejoin your network and run 'thermactl scan'"},
		)
		return nil
	}

	prog.Start(stepWait, "rejoin "+creds.SSID+" to see the device")
	p.Println(prog.Render())
	dev, err := waitForDevice(name, provWait)
	if err != nil {
		prog.Fail(stepWait, err.Error())
		p.Println(prog.Render())
		p.PrintWarning("Device not seen yet",
			ui.Field{Key: "Hint", Value: "It stays in provisioning if it could not join " + creds.SSID},
			ui.Field{Key: "Hint", Value: "Check the access point again and re-run provision"},
		)
		return nil
	}
	prog.Complete(stepWait, "found at "+dev.IP)
	p.Println(prog.Render())

	reg.Observe(dev.Name, dev.IP, dev.Port, dev.Version, dev.DiscoveredAt)
	remember(reg, path, target{Name: dev.Name, Host: dev.IP, Port: dev.Port}, func(d *registry.Device) {
		d.LastSSID = creds.SSID
	})
	p.PrintSuccess("Device online", ui.Field{Key: "Address", Value: fmt.Sprintf("%s:%d", dev.IP, dev.Port)})
	return nil
}

func waitForDevice(name string, timeout time.Duration) (*discovery.Device, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	return scanner.WaitForDevice(context.Background(), name)
}

// promptSecret reads a line without echo on a terminal, or a plain line
// from a pipe.
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Print(prompt)
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimRight(line, "\r\n"), nil
}
