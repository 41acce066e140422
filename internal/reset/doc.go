// Package reset implements the factory-reset path.
//
// A Monitor samples the active-low reset input once per scheduler tick and
// reports, exactly once per press-hold-release cycle, when the input has
// been held for the configured duration. A Guard couples a Monitor with the
// destructive Action: switch the device to ResettingFactory, show the
// indicator visual, purge every persistent namespace in order, restart.
//
// The action never stops early. Purge failures are logged and the restart
// is still issued; a device that cannot erase its flash must still reboot
// when the operator asks it to.
package reset
