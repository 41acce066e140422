package config

import (
	"strings"
	"time"
)

const (
	// DefaultDeviceName is used when a record carries no devname.
	DefaultDeviceName = "ThermaBridge"

	// DefaultResetHoldSeconds is the factory-reset hold used when the stored
	// value is zero or negative.
	DefaultResetHoldSeconds = 10
)

// Record is the single persisted settings document.
//
// JSON field names are the on-flash format and must not change.
type Record struct {
	SSID             string `json:"ssid"`
	PSK              string `json:"psk"`
	DevName          string `json:"devname"`
	ResetHoldSeconds int    `json:"reset_hold_seconds"`
	OTAPassword      string `json:"ota_password"`
	MDNSEnable       bool   `json:"mdns_enable"`

	// Peripheral settings. The bootstrap core never reads these; they are
	// carried so a save does not drop them.
	DisplayEnabled bool `json:"display_enabled"`
	DisplayWidth   int  `json:"display_width"`
	DisplayHeight  int  `json:"display_height"`
	DisplaySDAPin  int  `json:"display_sda_pin"`
	DisplaySCLPin  int  `json:"display_scl_pin"`
	EncoderEnabled bool `json:"encoder_enabled"`
	EncoderCLKPin  int  `json:"encoder_clk_pin"`
	EncoderDTPin   int  `json:"encoder_dt_pin"`
	EncoderSWPin   int  `json:"encoder_sw_pin"`
	ClimateEnabled bool `json:"climate_enabled"`
	IREnabled      bool `json:"ir_enabled"`
	IRPin          int  `json:"ir_pin"`
}

// Default returns a record with every documented default applied and no
// network credentials.
func Default() Record {
	return Record{
		DevName:          DefaultDeviceName,
		ResetHoldSeconds: DefaultResetHoldSeconds,
		MDNSEnable:       true,
	}
}

// Usable reports whether the record names a network. A record with a blank
// SSID is treated exactly like a missing record.
func (r Record) Usable() bool {
	return strings.TrimSpace(r.SSID) != ""
}

// ResetHold returns the factory-reset hold duration to act on. The raw field
// may be zero or negative; the returned value never is.
func (r Record) ResetHold() time.Duration {
	secs := r.ResetHoldSeconds
	if secs <= 0 {
		secs = DefaultResetHoldSeconds
	}
	return time.Duration(secs) * time.Second
}

// MaskedPSK replaces every character of the secret with '*'.
func (r Record) MaskedPSK() string {
	return Mask(r.PSK)
}

// Mask returns a string of '*' with one mask symbol per character of s.
func Mask(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}

// DefaultResetHold is the hold duration used when no record is loaded.
func DefaultResetHold() time.Duration {
	return Default().ResetHold()
}
