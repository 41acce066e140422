// Package server implements the two HTTP surfaces of the device.
//
// # Provisioning portal
//
// While the device has no usable network it hosts its own access point and
// a Portal on it. The portal serves an embedded configuration page, accepts
// credential submissions on POST /save and redirects every unknown path to
// the access-point root so captive-portal probes land on the page. A
// captive DNS responder (package captive) is started alongside it.
//
// A valid submission is persisted first and acknowledged immediately with a
// short HTML page; the connection attempt itself is run by the bootstrap
// sequencer, which receives the submission on the channel returned by
// Portal.Submissions. The channel holds one submission; a newer one
// replaces a pending one.
//
// # Diagnostics
//
// Once the device is on a network, Diagnostics serves read-only endpoints:
//
//	GET /status       configured, ssid, psk_masked, devname, wifi_status, ip
//	GET /health       uptime_s, free_heap
//	GET /config       raw persisted document, unmasked (alias /config.json)
//	GET /info         build, mode, boot bookkeeping, update listener state
//	GET /events       websocket stream of /status snapshots
//
// /status, /health and /config are also served by the portal. Every request
// re-reads the config store; nothing is cached between requests.
//
// # Concurrency
//
// Handlers run on net/http goroutines. They only read through the
// mutex-guarded config store and link controller and hand submissions to
// the control loop over the channel; they never change device state
// themselves.
package server
