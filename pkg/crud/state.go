package crud

// State is the lifecycle position of a Controller.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StatePreLoading
	StateLoading
	StateRendered
	StateTerminated
)

var stateNames = [...]string{
	StateCreated:     "created",
	StateInitialized: "initialized",
	StatePreLoading:  "pre_loading",
	StateLoading:     "loading",
	StateRendered:    "rendered",
	StateTerminated:  "terminated",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
