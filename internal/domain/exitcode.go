package domain

// ExitCode represents the exit status of the review gate.
type ExitCode int

const (
	// ExitApproved indicates the commit was approved.
	ExitApproved ExitCode = 0
	// ExitBlocked indicates the commit was blocked by a reviewer or the lock.
	ExitBlocked ExitCode = 1
	// ExitError indicates the run failed due to an error.
	ExitError ExitCode = 2
	// ExitInterrupted indicates the run was interrupted by a signal.
	ExitInterrupted ExitCode = 130
)

// Int returns the exit code as an int for use with os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}
