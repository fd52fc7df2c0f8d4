// SPDX-License-Identifier: EPL-2.0

package engine

type state int32

const (
	stateStopped state = iota
	stateStarting
	stateRunning
	stateStopping
)

func (s state) String() string {
	switch s {
	case stateStopped:
		return "stopped"
	case stateStarting:
		return "starting"
	case stateRunning:
		return "running"
	case stateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
