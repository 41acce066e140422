package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/thermabridge/internal/client"
	"github.com/muurk/thermabridge/internal/server"
	"github.com/muurk/thermabridge/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running device's mode and link status live",
	Long: `Follow the /events stream of a device in normal operation.

The screen shows the latest snapshot and a log of mode changes. The stream
ends when the device restarts, for example after a factory reset.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, t, reg, path, err := connect()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := c.WatchEvents(ctx)
	if err != nil {
		return fail("Cannot open event stream", err)
	}
	defer func() { _ = stream.Close() }()
	remember(reg, path, t, nil)

	if jsonOutput {
		p := ui.NewPrinter(nil)
		for {
			ev, err := stream.Next()
			if err != nil {
				return streamEnd(err)
			}
			if err := p.PrintJSON(ev); err != nil {
				return err
			}
		}
	}

	next := func() (ui.WatchSnapshot, error) {
		ev, err := stream.Next()
		if err != nil {
			return ui.WatchSnapshot{}, err
		}
		return snapshotFromEvent(ev), nil
	}

	final, err := tea.NewProgram(ui.NewWatchModel(t.Label(), next)).Run()
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	if m, ok := final.(ui.WatchModel); ok && m.Err() != nil {
		return streamEnd(m.Err())
	}
	return nil
}

func snapshotFromEvent(ev server.Event) ui.WatchSnapshot {
	return ui.WatchSnapshot{
		Time:       ev.Time,
		Mode:       ev.Mode,
		Configured: ev.Status.Configured,
		SSID:       ev.Status.SSID,
		WiFiStatus: ev.Status.WifiStatus,
		IP:         ev.Status.IP,
	}
}

// streamEnd reports how the stream ended. A device going away is the normal
// way for a watch to end.
func streamEnd(err error) error {
	if errors.Is(err, client.ErrStreamClosed) {
		fmt.Println("Event stream closed by the device.")
		return nil
	}
	return err
}
