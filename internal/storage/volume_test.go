package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestDirVolume_MountIsIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "flash")
	vol := NewDirVolume(root)

	for i := 0; i < 3; i++ {
		if err := vol.Mount(); err != nil {
			t.Fatalf("Mount() #%d error = %v", i, err)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("root not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("root should be a directory")
	}
}

func TestDirVolume_RequiresMount(t *testing.T) {
	vol := NewDirVolume(t.TempDir())

	if _, err := vol.ReadFile("config.json"); !errors.Is(err, ErrNotMounted) {
		t.Errorf("ReadFile() before Mount error = %v, want ErrNotMounted", err)
	}
	if _, err := vol.WriteFile("config.json", []byte("{}")); !errors.Is(err, ErrNotMounted) {
		t.Errorf("WriteFile() before Mount error = %v, want ErrNotMounted", err)
	}
}

func TestDirVolume_WriteReadRemove(t *testing.T) {
	vol := NewDirVolume(t.TempDir())
	if err := vol.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	n, err := vol.WriteFile("config.json", []byte(`{"ssid":"Home"}`))
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if n != len(`{"ssid":"Home"}`) {
		t.Errorf("WriteFile() wrote %d bytes", n)
	}

	exists, err := vol.Exists("config.json")
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true, nil", exists, err)
	}

	data, err := vol.ReadFile("config.json")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"ssid":"Home"}` {
		t.Errorf("ReadFile() = %s", data)
	}

	if _, err := os.Stat(filepath.Join(vol.Root, "config.json.tmp")); !errors.Is(err, fs.ErrNotExist) {
		t.Error("temporary file should not survive a successful write")
	}

	if err := vol.Remove("config.json"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := vol.Remove("config.json"); err != nil {
		t.Errorf("second Remove() error = %v, want nil", err)
	}
	if _, err := vol.ReadFile("config.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile() after Remove error = %v, want not-exist", err)
	}
}

func TestDirVolume_Format(t *testing.T) {
	vol := NewDirVolume(t.TempDir())
	if err := vol.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if _, err := vol.WriteFile("config.json", []byte("{}")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := vol.Format(); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if err := vol.Mount(); err != nil {
		t.Fatalf("Mount() after Format error = %v", err)
	}

	exists, err := vol.Exists("config.json")
	if err != nil || exists {
		t.Errorf("Exists() after Format = %v, %v; want false, nil", exists, err)
	}
}

func TestMemVolume_FailMountOnce(t *testing.T) {
	vol := NewMemVolume()
	vol.FailMountOnce = true

	if err := vol.Mount(); err == nil {
		t.Fatal("first Mount() should fail")
	}
	if err := vol.Mount(); err != nil {
		t.Fatalf("second Mount() error = %v", err)
	}
	if vol.MountCalls != 2 {
		t.Errorf("MountCalls = %d, want 2", vol.MountCalls)
	}
}
