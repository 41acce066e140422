// Package bootstrap is the device's control loop.
//
// A Sequencer walks the boot phases on every Tick:
//
//	MountingStorage -> LoadingConfig -> Connecting -> Operational
//	                          |              |
//	                          v              v
//	                  EnteringProvisioning -> Provisioning <-> ProvisionConnecting
//	                                                                 |
//	                                                                 v
//	                                                            Restarting
//
// The factory reset guard is polled first on every tick and can end the
// sequence from any phase. Connection attempts are bounded by a deadline
// checked per tick, so nothing in the loop blocks. The portal hands
// credential submissions over a channel; all phase changes happen on the
// goroutine calling Tick.
//
// Run drives Tick from a ticker until a restart is issued.
package bootstrap
