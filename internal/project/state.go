package project

// State describes how ready a project is for semantic queries.
type State int

const (
	// StateUninitialized means the marker directory is absent.
	StateUninitialized State = iota
	// StateUnindexed means the marker directory exists but the index
	// cannot serve queries.
	StateUnindexed
	// StateReady means queries can be served.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateUnindexed:
		return "unindexed"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Ready reports whether queries can be served.
func (s State) Ready() bool {
	return s == StateReady
}

// Remediation returns the command that moves the project toward ready,
// or an empty string when none is needed.
func (s State) Remediation() string {
	switch s {
	case StateUninitialized:
		return "cseek-init"
	case StateUnindexed:
		return "cseek-index"
	default:
		return ""
	}
}
