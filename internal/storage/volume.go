package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotMounted is returned by file operations on a volume that has not been
// mounted successfully.
var ErrNotMounted = errors.New("volume not mounted")

// Volume is the flash-backed filesystem the device persists to.
//
// Mount must be idempotent. Format wipes every file on the volume and leaves
// it unmounted.
type Volume interface {
	Mount() error
	Format() error
	ReadFile(name string) ([]byte, error)
	// WriteFile replaces name atomically and returns the bytes written.
	WriteFile(name string, data []byte) (int, error)
	// Remove deletes name. A missing file is not an error.
	Remove(name string) error
	Exists(name string) (bool, error)
}

// DirVolume maps a Volume onto a directory of the host filesystem.
type DirVolume struct {
	Root string

	mu      sync.Mutex
	mounted bool
}

// NewDirVolume creates a volume rooted at dir.
func NewDirVolume(dir string) *DirVolume {
	return &DirVolume{Root: dir}
}

// Mount creates the root directory if needed and probes it for writability.
func (v *DirVolume) Mount() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.mounted {
		return nil
	}

	if err := os.MkdirAll(v.Root, 0700); err != nil {
		return fmt.Errorf("failed to create volume root: %w", err)
	}

	probe, err := os.CreateTemp(v.Root, ".mount-*")
	if err != nil {
		return fmt.Errorf("volume root is not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	v.mounted = true
	return nil
}

// Format removes the root directory and everything in it.
func (v *DirVolume) Format() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.mounted = false
	if err := os.RemoveAll(v.Root); err != nil {
		return fmt.Errorf("failed to format volume: %w", err)
	}
	return nil
}

func (v *DirVolume) path(name string) (string, error) {
	v.mu.Lock()
	mounted := v.mounted
	v.mu.Unlock()

	if !mounted {
		return "", ErrNotMounted
	}
	return filepath.Join(v.Root, filepath.Base(name)), nil
}

// ReadFile reads a file from the volume.
func (v *DirVolume) ReadFile(name string) ([]byte, error) {
	p, err := v.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteFile writes to a temporary file first and renames it into place.
func (v *DirVolume) WriteFile(name string, data []byte) (int, error) {
	p, err := v.path(name)
	if err != nil {
		return 0, err
	}

	tmpPath := p + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return 0, fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, p); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return len(data), nil
}

// Remove deletes a file. A missing file is not an error.
func (v *DirVolume) Remove(name string) error {
	p, err := v.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether a file is present on the volume.
func (v *DirVolume) Exists(name string) (bool, error) {
	p, err := v.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
