package main

import (
	"fmt"
	"time"

	"github.com/muurk/thermabridge/internal/client"
	"github.com/muurk/thermabridge/internal/discovery"
	"github.com/muurk/thermabridge/internal/registry"
)

// target is a resolved device address.
type target struct {
	// Name is the advertised device name, empty when addressed by IP only.
	Name string
	Host string
	Port int
}

func (t target) String() string {
	if t.Name != "" {
		return fmt.Sprintf("%s (%s:%d)", t.Name, t.Host, t.Port)
	}
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// Label is how the target is named in headers.
func (t target) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Host
}

func registryPathOrDefault() (string, error) {
	if registryPath != "" {
		return registryPath, nil
	}
	return registry.DefaultPath()
}

func loadRegistry() (*registry.Registry, string, error) {
	path, err := registryPathOrDefault()
	if err != nil {
		return nil, "", err
	}
	reg, err := registry.Load(path)
	if err != nil {
		return nil, "", err
	}
	return reg, path, nil
}

// resolve turns --device into an address. Registry names and nicknames win
// over hostnames; anything else is used as given.
func resolve(reg *registry.Registry, device string, scan func(time.Duration) ([]*discovery.Device, error)) (target, error) {
	port := devicePort
	if port == 0 {
		port = reg.Preferences.DefaultPort
	}

	if device != "" {
		if name, d, ok := reg.Resolve(device); ok && d.LastIP != "" {
			p := d.Port
			if devicePort != 0 || p == 0 {
				p = port
			}
			return target{Name: name, Host: d.LastIP, Port: p}, nil
		}
		return target{Host: device, Port: port}, nil
	}

	timeout := time.Duration(reg.Preferences.ScanTimeoutSeconds) * time.Second
	fmt.Printf("No device specified, scanning for %s...\n", timeout)
	devices, err := scan(timeout)
	if err != nil {
		return target{}, fmt.Errorf("discovery failed: %w", err)
	}
	observe(reg, devices)

	switch len(devices) {
	case 0:
		return target{}, fmt.Errorf("no devices found. Use --device to specify one")
	case 1:
		d := devices[0]
		fmt.Printf("Found device: %s\n\n", d)
		return target{Name: d.Name, Host: d.IP, Port: d.Port}, nil
	default:
		fmt.Printf("Found %d devices:\n", len(devices))
		for i, d := range devices {
			fmt.Printf("%d. %s (%s)\n", i+1, d.Name, d.IP)
		}
		return target{}, fmt.Errorf("multiple devices found. Use --device to specify which one")
	}
}

func observe(reg *registry.Registry, devices []*discovery.Device) {
	for _, d := range devices {
		if d.Name == "" || d.IP == "" {
			continue
		}
		reg.Observe(d.Name, d.IP, d.Port, d.Version, d.DiscoveredAt)
	}
}

// connect resolves --device and returns a client for it.
func connect() (*client.Client, target, *registry.Registry, string, error) {
	reg, path, err := loadRegistry()
	if err != nil {
		return nil, target{}, nil, "", err
	}
	t, err := resolve(reg, deviceTarget, discovery.ScanForDevices)
	if err != nil {
		return nil, target{}, nil, "", err
	}
	c := client.NewClient(t.Host, t.Port)
	c.SetTimeout(requestTimeout)
	return c, t, reg, path, nil
}

// remember records a successful exchange with t and saves the registry.
// Failures to save are reported but never fail the command.
func remember(reg *registry.Registry, path string, t target, update func(*registry.Device)) {
	if t.Name == "" {
		return
	}
	d := reg.Ensure(t.Name)
	d.LastIP = t.Host
	d.Port = t.Port
	d.LastSeen = time.Now()
	if update != nil {
		update(d)
	}
	if err := reg.Save(path); err != nil {
		fmt.Printf("Warning: could not save device registry: %v\n", err)
	}
}
