package storage

import (
	"testing"
	"time"
)

func TestPrefs_RecordBoot(t *testing.T) {
	prefs := NewPrefs(NewMemVolume())

	for want := 1; want <= 3; want++ {
		rec, err := prefs.RecordBoot()
		if err != nil {
			t.Fatalf("RecordBoot() error = %v", err)
		}
		if rec.BootCount != want {
			t.Errorf("BootCount = %d, want %d", rec.BootCount, want)
		}
	}
}

func TestPrefs_RecordConnection(t *testing.T) {
	prefs := NewPrefs(NewMemVolume())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := prefs.RecordBoot(); err != nil {
		t.Fatalf("RecordBoot() error = %v", err)
	}
	if err := prefs.RecordConnection("Home", "192.168.1.50", at); err != nil {
		t.Fatalf("RecordConnection() error = %v", err)
	}

	rec, err := prefs.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.BootCount != 1 {
		t.Errorf("BootCount = %d, want 1", rec.BootCount)
	}
	if rec.LastIP != "192.168.1.50" || rec.LastSSID != "Home" {
		t.Errorf("rec = %+v", rec)
	}
	if !rec.LastConnected.Equal(at) {
		t.Errorf("LastConnected = %v, want %v", rec.LastConnected, at)
	}
}

func TestPrefs_CorruptFileRestartsCounter(t *testing.T) {
	vol := NewMemVolume()
	vol.Put(PrefsFile, []byte("boot_count: [not a number"))
	prefs := NewPrefs(vol)

	if _, err := prefs.Load(); err == nil {
		t.Fatal("Load() of corrupt prefs should fail")
	}

	rec, err := prefs.RecordBoot()
	if err != nil {
		t.Fatalf("RecordBoot() error = %v", err)
	}
	if rec.BootCount != 1 {
		t.Errorf("BootCount = %d, want 1", rec.BootCount)
	}
}

func TestPrefs_EraseIsIdempotent(t *testing.T) {
	vol := NewMemVolume()
	prefs := NewPrefs(vol)

	if _, err := prefs.RecordBoot(); err != nil {
		t.Fatalf("RecordBoot() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := prefs.Erase(); err != nil {
			t.Fatalf("Erase() #%d error = %v", i, err)
		}
	}

	exists, _ := vol.Exists(PrefsFile)
	if exists {
		t.Error("prefs file should be gone after Erase()")
	}
}
