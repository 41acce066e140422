// Package client is thermactl's HTTP client for a ThermaBridge device.
//
// It covers both device surfaces: the provisioning portal reachable on the
// device's own access point (Status, Config, Provision) and the diagnostics
// server on the home network (Status, Health, Config, Info, WatchEvents).
//
// Reads are retried with exponential backoff when the failure is transient.
// Failures come back as *DeviceError with a category; Troubleshooting turns
// one into operator tips for a ui failure box.
//
//	c := client.NewClient("192.168.4.1", client.DefaultPort)
//	ack, err := c.Provision(ctx, client.Credentials{SSID: "Home", PSK: "secret"})
//	if err != nil {
//	    printer.PrintError("Provisioning failed", err, client.Troubleshooting(err))
//	}
package client
