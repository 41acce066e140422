package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// MemVolume is an in-memory Volume. Failure switches let callers exercise the
// mount/format fallback paths without real flash.
type MemVolume struct {
	mu      sync.Mutex
	files   map[string][]byte
	mounted bool

	// FailMount makes every Mount fail until cleared.
	FailMount bool
	// FailMountOnce makes only the next Mount fail.
	FailMountOnce bool
	// FailFormat makes Format fail.
	FailFormat bool
	// ShortWrites makes WriteFile report zero bytes written.
	ShortWrites bool

	MountCalls  int
	FormatCalls int
}

// NewMemVolume creates an empty in-memory volume.
func NewMemVolume() *MemVolume {
	return &MemVolume{files: make(map[string][]byte)}
}

// Mount marks the volume mounted unless a failure switch is set.
func (v *MemVolume) Mount() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.MountCalls++
	if v.mounted {
		return nil
	}
	if v.FailMount {
		return errors.New("mount failed")
	}
	if v.FailMountOnce {
		v.FailMountOnce = false
		return errors.New("mount failed")
	}
	v.mounted = true
	return nil
}

// Format drops every file.
func (v *MemVolume) Format() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.FormatCalls++
	if v.FailFormat {
		return errors.New("format failed")
	}
	v.files = make(map[string][]byte)
	v.mounted = false
	return nil
}

// ReadFile returns a copy of the stored bytes.
func (v *MemVolume) ReadFile(name string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.mounted {
		return nil, ErrNotMounted
	}
	data, ok := v.files[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// WriteFile stores a copy of data.
func (v *MemVolume) WriteFile(name string, data []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.mounted {
		return 0, ErrNotMounted
	}
	if v.ShortWrites {
		return 0, nil
	}
	v.files[name] = append([]byte(nil), data...)
	return len(data), nil
}

// Remove deletes name if present.
func (v *MemVolume) Remove(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.mounted {
		return ErrNotMounted
	}
	delete(v.files, name)
	return nil
}

// Exists reports whether name is stored.
func (v *MemVolume) Exists(name string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.mounted {
		return false, ErrNotMounted
	}
	_, ok := v.files[name]
	return ok, nil
}

// Put stores a file directly, mounting the volume if needed.
func (v *MemVolume) Put(name string, data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.mounted = true
	v.files[name] = append([]byte(nil), data...)
}
