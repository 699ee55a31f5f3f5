package local

// ExecError represents an error from the local execution layer.
type ExecError struct {
	// Op is the operation that failed (e.g., "run", "lookpath")
	Op string

	// Cmd is the binary that was being invoked
	Cmd string

	// Err is the underlying error
	Err error

	// IsTimeout indicates the command was killed by the timeout
	IsTimeout bool
}

func (e *ExecError) Error() string {
	return e.Op + " " + e.Cmd + ": " + e.Err.Error()
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
