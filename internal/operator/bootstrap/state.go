package bootstrap

// State is the progress of one pod through the bootstrap sequence. It is
// recomputed from the pod log on every run and never persisted.
type State string

const (
	StateObserved        State = "observed"
	StateStabilizing     State = "stabilizing"
	StateAlreadyInjected State = "already-injected"
	StateInjected        State = "injected"
	StateVerified        State = "verified"
	StateUnverified      State = "unverified"
)

