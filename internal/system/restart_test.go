package system

import "testing"

func TestNewRestarter(t *testing.T) {
	tests := []struct {
		mode    string
		want    string
		wantErr bool
	}{
		{"", "*system.ExecRestarter", false},
		{ModeExec, "*system.ExecRestarter", false},
		{ModeExit, "*system.ExitRestarter", false},
		{"reboot", "", true},
	}

	for _, tt := range tests {
		r, err := NewRestarter(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewRestarter(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if got := typeName(r); got != tt.want {
			t.Errorf("NewRestarter(%q) = %s, want %s", tt.mode, got, tt.want)
		}
	}
}

func typeName(r Restarter) string {
	switch r.(type) {
	case *ExecRestarter:
		return "*system.ExecRestarter"
	case *ExitRestarter:
		return "*system.ExitRestarter"
	default:
		return "unknown"
	}
}

func TestExitRestarter(t *testing.T) {
	code := -1
	r := &ExitRestarter{Exit: func(c int) { code = c }}

	if err := r.Restart("test"); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if code != RestartExitCode {
		t.Errorf("exit code = %d, want %d", code, RestartExitCode)
	}
}

func TestRecordingRestarter(t *testing.T) {
	r := &RecordingRestarter{}
	_ = r.Restart("provisioned")
	_ = r.Restart("factory reset")

	if r.Count() != 2 || r.Reasons[1] != "factory reset" {
		t.Errorf("Reasons = %v", r.Reasons)
	}
}
