package discovery

import "testing"

func TestDevice_String(t *testing.T) {
	device := &Device{
		Name:     "Kitchen",
		Hostname: "thermabridge-3f2a.local.",
		IP:       "192.168.1.23",
		Port:     80,
	}

	expected := "ThermaBridge Kitchen (thermabridge-3f2a.local.) at 192.168.1.23:80"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{"standard HTTP port", &Device{IP: "192.168.1.23", Port: 80}, "http://192.168.1.23:80"},
		{"custom port", &Device{IP: "10.0.0.5", Port: 8080}, "http://10.0.0.5:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.expected {
				t.Errorf("Device.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	var empty Device
	if got := empty.GetMetadata("version"); got != "" {
		t.Errorf("GetMetadata() on nil metadata = %q, want empty", got)
	}

	d := &Device{Metadata: map[string]string{"version": "v1.0"}}
	if got := d.GetMetadata("version"); got != "v1.0" {
		t.Errorf("GetMetadata(version) = %q, want v1.0", got)
	}
}
