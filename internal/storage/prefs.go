package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// PrefsFile is the file backing the auxiliary preferences namespace.
const PrefsFile = "prefs.yaml"

var errCorruptPrefs = errors.New("corrupt prefs")

// BootRecord is the bookkeeping kept in the preferences namespace. It is
// never required for the device to work; a lost or corrupt file just
// restarts the counters.
type BootRecord struct {
	BootCount     int       `yaml:"boot_count"`
	LastIP        string    `yaml:"last_ip,omitempty"`
	LastConnected time.Time `yaml:"last_connected,omitempty"`
	LastSSID      string    `yaml:"last_ssid,omitempty"`
}

// Prefs is the "thermabridge" preferences namespace, stored next to the
// config document on the same volume.
type Prefs struct {
	vol Volume
	mu  sync.Mutex
}

// NewPrefs creates the namespace on vol.
func NewPrefs(vol Volume) *Prefs {
	return &Prefs{vol: vol}
}

// Name identifies the namespace in purge logs.
func (p *Prefs) Name() string {
	return "prefs"
}

// Load returns the stored record, or a zero record if none exists.
func (p *Prefs) Load() (BootRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load()
}

func (p *Prefs) load() (BootRecord, error) {
	var rec BootRecord

	if err := p.vol.Mount(); err != nil {
		return rec, fmt.Errorf("failed to mount volume: %w", err)
	}

	data, err := p.vol.ReadFile(PrefsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("failed to read prefs: %w", err)
	}

	if err := yaml.Unmarshal(data, &rec); err != nil {
		return BootRecord{}, fmt.Errorf("%w: %v", errCorruptPrefs, err)
	}
	return rec, nil
}

func (p *Prefs) save(rec BootRecord) error {
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}
	n, err := p.vol.WriteFile(PrefsFile, data)
	if err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if n == 0 {
		return errors.New("failed to write prefs: zero bytes written")
	}
	return nil
}

// RecordBoot increments the boot counter and returns the updated record.
func (p *Prefs) RecordBoot() (BootRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, err := p.load()
	if err != nil && !errors.Is(err, errCorruptPrefs) {
		return rec, err
	}
	rec.BootCount++
	return rec, p.save(rec)
}

// RecordConnection remembers the network and address of the last successful
// client-role association.
func (p *Prefs) RecordConnection(ssid, ip string, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, err := p.load()
	if err != nil && !errors.Is(err, errCorruptPrefs) {
		return err
	}
	rec.LastSSID = ssid
	rec.LastIP = ip
	rec.LastConnected = at.UTC()
	return p.save(rec)
}

// Erase clears the namespace. A missing file is not an error.
func (p *Prefs) Erase() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.vol.Mount(); err != nil {
		return fmt.Errorf("failed to mount volume: %w", err)
	}
	return p.vol.Remove(PrefsFile)
}
