package phase

import "slices"

// transitions lists, per action, the (phase, status) pairs it may start
// from. Busy sessions are refused before this table is consulted.
var transitions = map[Action]map[Phase][]Status{
	Scan: {
		Idle:     {Ready},
		Scanning: {Done, Cancelled, Failed},
	},
	Infiltrate: {
		Scanning:     {Done},
		Infiltrating: {Cancelled, Failed},
	},
	Analyze: {
		Infiltrating: {Done},
	},
	Exfiltrate: {
		// A cancelled analysis hands over its partial list. NoData is the
		// state an empty exfiltration returns to, so it can be retried.
		Analyzing:    {Done, Cancelled, NoData},
		Exfiltrating: {Cancelled, Failed},
	},
}

func allowed(action Action, phase Phase, status Status) bool {
	return slices.Contains(transitions[action][phase], status)
}
