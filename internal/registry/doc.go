// Package registry stores thermactl's list of known devices in a YAML file
// under the user's configuration directory.
//
// Entries are keyed by the mDNS instance name a device advertises and may
// carry an operator nickname, so `thermactl status kitchen` resolves to the
// last address seen for that device. The file never holds network
// credentials.
package registry
