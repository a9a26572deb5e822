package cli

// CLIError is a failure that has already been reported to the user in the
// selected output format. Code matches the "code" field of the NDJSON result.
type CLIError struct {
	Code    string
	Message string
	Hint    string
	// Err is the underlying cause, when there is one.
	Err error
}

func (e *CLIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// withCause attaches cause to err when err is a *CLIError.
func withCause(err, cause error) error {
	if ce, ok := err.(*CLIError); ok {
		ce.Err = cause
	}
	return err
}
