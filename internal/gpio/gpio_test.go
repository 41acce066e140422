package gpio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSysfsInput_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "value")

	tests := []struct {
		content string
		want    Level
		wantErr bool
	}{
		{"0\n", Low, false},
		{"1\n", High, false},
		{"x\n", High, true},
	}

	for _, tt := range tests {
		if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
			t.Fatal(err)
		}
		in := &SysfsInput{Path: path}
		got, err := in.Read()
		if (err != nil) != tt.wantErr {
			t.Errorf("Read() with %q error = %v, wantErr %v", tt.content, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Read() with %q = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestSysfsInput_MissingReadsHigh(t *testing.T) {
	in := &SysfsInput{Path: filepath.Join(t.TempDir(), "missing")}

	got, err := in.Read()
	if err == nil {
		t.Error("Read() of a missing line should return an error")
	}
	if got != High {
		t.Errorf("Read() = %v, want high", got)
	}
}

func TestNewSysfsInput(t *testing.T) {
	if got := NewSysfsInput(17).Path; got != "/sys/class/gpio/gpio17/value" {
		t.Errorf("Path = %q", got)
	}
}

func TestFileTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reset")
	trig := NewFileTrigger(path)

	if got, _ := trig.Read(); got != High {
		t.Errorf("Read() without file = %v, want high", got)
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if got, _ := trig.Read(); got != Low {
		t.Errorf("Read() with file = %v, want low", got)
	}
}

func TestButton(t *testing.T) {
	var b Button

	if got, _ := b.Read(); got != High {
		t.Errorf("idle Read() = %v, want high", got)
	}
	b.Press()
	if got, _ := b.Read(); got != Low {
		t.Errorf("pressed Read() = %v, want low", got)
	}
	b.Release()
	if got, _ := b.Read(); got != High {
		t.Errorf("released Read() = %v, want high", got)
	}
	if got, _ := (None{}).Read(); got != High {
		t.Errorf("None.Read() = %v, want high", got)
	}
}
