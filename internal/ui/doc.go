// Package ui provides terminal rendering for thermactl and the daemon's
// console indicator.
//
// Output follows a "run once and exit" pattern: a Header names the
// operation and target device, a Progress tracks multi-step work such as
// provisioning, and a Result box closes with details or troubleshooting
// tips. The Printer wraps these for commands.
//
// WatchModel is the one interactive piece. It is a Bubble Tea model fed by
// a NextFunc that blocks on the device's event stream; `thermactl watch`
// runs it until the user quits or the stream closes.
//
// Mode colors (ModeColor, ModeBadge, RenderModeBanner) are shared with the
// console indicator so an operator sees the same palette on the device
// console and in thermactl.
package ui
