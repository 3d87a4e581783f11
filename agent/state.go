package agent

import "errors"

var (
	ErrUnexpectedTransition = errors.New("unexpected state transition")
	ErrTerminated           = errors.New("agent terminated")
)

// State is the lifecycle state of the instance.
type State uint8

const (
	Starting State = iota
	Started
	Activated
	ArtifactsUpdating
	Terminated
)

var stateNames = [...]string{
	Starting:          "starting",
	Started:           "started",
	Activated:         "activated",
	ArtifactsUpdating: "artifacts_updating",
	Terminated:        "terminated",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}

	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// next lists the states reachable from each state. Terminated is
// reachable from every state but itself.
var next = map[State][]State{
	Starting:          {Started},
	Started:           {Activated},
	Activated:         {ArtifactsUpdating},
	ArtifactsUpdating: {Activated},
}

func (s State) canTransition(to State) bool {
	if s == Terminated {
		return false
	}
	if to == Terminated {
		return true
	}
	for _, n := range next[s] {
		if n == to {
			return true
		}
	}

	return false
}
