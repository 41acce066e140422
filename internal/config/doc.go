// Package config owns the device's persisted settings record.
//
// The record lives in a single JSON document, config.json, on the flash
// volume. Store is the only writer. Readers get value snapshots that are valid
// for one operation; nothing is cached across calls, so every load observes
// the last successful save.
//
// # Usability
//
// A record is usable only when its SSID is non-blank after trimming. Load
// treats a blank SSID exactly like a missing file: it returns a nil record
// and an error for which IsConfigInvalid is true.
//
// # Defaults
//
// Decoding starts from Default(), so fields missing from the document keep
// their documented defaults (devname "ThermaBridge", reset_hold_seconds 10,
// mdns_enable true). Save always writes every field.
//
// # Reset hold
//
// ResetHoldSeconds is stored and displayed as-is, including zero. ResetHold()
// clamps it to a positive duration and is what the factory reset monitor acts
// on.
//
// # Storage failure
//
// Every operation mounts the volume. The first failed mount triggers a format
// and remount; if that fails as well the store reports itself Degraded and
// every operation returns an error for which IsStorageUnavailable is true.
package config
