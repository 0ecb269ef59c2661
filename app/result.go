package app

// Result is the signal an iteration (or Init) reports to the frame loop.
type Result int

const (
	// Continue means the loop should run another iteration.
	Continue Result = iota
	// Success means a clean quit was requested; the loop should stop and
	// the process should exit zero.
	Success
	// Failure means a fatal error occurred; the loop should stop and the
	// process should exit non-zero.
	Failure
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}
