package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/muurk/thermabridge/internal/logging"
	"github.com/muurk/thermabridge/internal/storage"
	"go.uber.org/zap"
)

// FileName is the well-known name of the config document on the volume.
const FileName = "config.json"

// Store is the sole writer of the config document.
//
// Every operation mounts the volume first. The first failed mount triggers
// one format and a second mount; once that has been tried the store does not
// format again for the rest of its life.
type Store struct {
	vol storage.Volume

	mu              sync.Mutex
	formatAttempted bool
	degraded        bool
}

// NewStore creates a store on vol.
func NewStore(vol storage.Volume) *Store {
	return &Store{vol: vol}
}

// Name identifies the store in purge logs.
func (s *Store) Name() string {
	return FileName
}

// Mount mounts the volume, formatting it once if the first mount fails.
func (s *Store) Mount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mount()
}

func (s *Store) mount() error {
	err := s.vol.Mount()
	if err == nil {
		s.degraded = false
		return nil
	}

	if s.formatAttempted {
		s.degraded = true
		return newStoreError("mount", ErrTypeStorageUnavailable, err)
	}
	s.formatAttempted = true

	logging.Warn("Volume failed to mount, formatting to recover",
		zap.Error(err),
	)

	if ferr := s.vol.Format(); ferr != nil {
		s.degraded = true
		return newStoreError("mount", ErrTypeStorageUnavailable, errors.Join(err, ferr))
	}
	if merr := s.vol.Mount(); merr != nil {
		s.degraded = true
		return newStoreError("mount", ErrTypeStorageUnavailable, merr)
	}

	logging.Info("Volume mounted after format")
	s.degraded = false
	return nil
}

// Degraded reports whether the last mount attempt failed for good.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Load returns the stored record if it exists, parses and names a network.
// A nil record means absent; the error says why.
func (s *Store) Load() (*Record, error) {
	rec, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if !rec.Usable() {
		return nil, newStoreError("load", ErrTypeBlankSSID, nil)
	}
	return &rec, nil
}

// Snapshot decodes the stored record without checking that it is usable.
// Fields missing from the document take their defaults.
func (s *Store) Snapshot() (Record, error) {
	data, err := s.ReadRaw()
	if err != nil {
		return Record{}, err
	}
	return Decode(data)
}

// ReadRaw returns the persisted document byte for byte.
func (s *Store) ReadRaw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mount(); err != nil {
		return nil, err
	}

	data, err := s.vol.ReadFile(FileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, newStoreError("read", ErrTypeNotFound, err)
	}
	if err != nil {
		return nil, newStoreError("read", ErrTypeStorageUnavailable, err)
	}
	return data, nil
}

// Save writes every field of rec, defaults included.
func (s *Store) Save(rec Record) error {
	data, err := Encode(rec)
	if err != nil {
		return newStoreError("save", ErrTypeWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mount(); err != nil {
		return err
	}

	n, err := s.vol.WriteFile(FileName, data)
	if err != nil {
		return newStoreError("save", ErrTypeWrite, err)
	}
	if n == 0 {
		return newStoreError("save", ErrTypeWrite, errors.New("zero bytes written"))
	}
	return nil
}

// Erase removes the document. Erasing an absent document succeeds.
func (s *Store) Erase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mount(); err != nil {
		return err
	}
	if err := s.vol.Remove(FileName); err != nil {
		return newStoreError("erase", ErrTypeWrite, err)
	}
	return nil
}

// Decode parses a config document on top of Default.
//
// Fields are decoded one at a time. A field of the wrong type keeps its
// default and the rest of the document is still used; only a malformed
// document or a non-string ssid is a parse error.
func Decode(data []byte) (Record, error) {
	rec := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return Record{}, newStoreError("load", ErrTypeParse, errors.New("empty document"))
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Record{}, newStoreError("load", ErrTypeParse, err)
	}

	for name, target := range rec.fields() {
		raw, ok := doc[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			if name == "ssid" {
				return Record{}, newStoreError("load", ErrTypeParse, err)
			}
			logging.Warn("Ignoring config field of the wrong type",
				zap.String("field", name),
				zap.String("value", string(raw)),
			)
		}
	}
	return rec, nil
}

// fields maps each on-flash key to the field it decodes into.
func (r *Record) fields() map[string]any {
	return map[string]any{
		"ssid":               &r.SSID,
		"psk":                &r.PSK,
		"devname":            &r.DevName,
		"reset_hold_seconds": &r.ResetHoldSeconds,
		"ota_password":       &r.OTAPassword,
		"mdns_enable":        &r.MDNSEnable,
		"display_enabled":    &r.DisplayEnabled,
		"display_width":      &r.DisplayWidth,
		"display_height":     &r.DisplayHeight,
		"display_sda_pin":    &r.DisplaySDAPin,
		"display_scl_pin":    &r.DisplaySCLPin,
		"encoder_enabled":    &r.EncoderEnabled,
		"encoder_clk_pin":    &r.EncoderCLKPin,
		"encoder_dt_pin":     &r.EncoderDTPin,
		"encoder_sw_pin":     &r.EncoderSWPin,
		"climate_enabled":    &r.ClimateEnabled,
		"ir_enabled":         &r.IREnabled,
		"ir_pin":             &r.IRPin,
	}
}

// Encode serialises rec in the on-flash format.
func Encode(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
