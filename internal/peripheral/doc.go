// Package peripheral hosts collaborators that observe the device mode
// without ever affecting the core.
//
// A peripheral reads device.Context through the ModeSource interface and
// nothing else. Supervise runs one peripheral on its own goroutine and
// recovers any panic, so a broken display or indicator is logged and
// forgotten while the bootstrap sequencer carries on.
//
// Console is the peripheral shipped with the daemon: it redraws a lipgloss
// mode banner on the process console whenever the mode changes, and shows
// the factory reset visual on request.
package peripheral
