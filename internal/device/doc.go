// Package device holds the shared, concurrently readable state of the
// appliance: the high-level mode, the currently loaded settings record and
// the boot time.
//
// A single Context is created at startup and handed to every component that
// needs it. The bootstrap sequencer is the only writer of the mode.
// Peripherals (the console indicator, and anything else that renders
// device state) poll Mode and Record and never write.
package device
