package reset

import "time"

// Guard evaluates the reset monitor and performs the action when it fires.
type Guard struct {
	Monitor *Monitor
	Action  *Action
}

// Poll checks the input at now against hold and performs the reset if the
// threshold was crossed. It reports whether a reset was performed; the
// caller must stop doing anything else when it was.
func (g *Guard) Poll(now time.Time, hold time.Duration) bool {
	if !g.Monitor.Check(now, hold) {
		return false
	}
	g.Action.Perform()
	return true
}
