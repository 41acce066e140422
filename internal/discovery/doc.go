// Package discovery advertises ThermaBridge devices over mDNS and finds them
// again from an operator's machine.
//
// An operational device publishes an "_http._tcp" service in the "local."
// domain under its device name, with the TXT records
//
//	product=thermabridge
//	version=<build version>
//	path=/status
//
// The product record is what the Scanner filters on; other HTTP services on
// the network are ignored.
//
// # Usage Example
//
//	devices, err := discovery.ScanForDevices(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    fmt.Printf("Found: %s at %s\n", d.Name, d.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
