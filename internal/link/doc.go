// Package link drives the single radio between access-point and client role.
//
// The Controller is the only thing that talks to a Radio. Starting either
// role tears the previous role down first; there is never more than one
// active role. Client connections are non-blocking: BeginClientConnection
// returns as soon as association has been started and the caller polls
// Status until it reports Connected or its own time budget runs out.
//
// Two Radio drivers are provided:
//
//   - SimRadio keeps a table of reachable networks in memory and completes
//     association after a configurable delay. It is used by tests and by
//     the daemon when no wireless hardware is present.
//   - NMCLIRadio shells out to NetworkManager's nmcli on Linux hosts.
//
// Status values are the integer codes reported on the wire in the
// wifi_status field of /status.
package link
