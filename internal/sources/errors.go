package sources

import "fmt"

// TransportError means the source could not be reached or its response
// could not be read.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteStatusError means the source answered but reported a non-success
// status.
type RemoteStatusError struct {
	Source  string
	Status  string
	Code    string
	Message string
}

func (e *RemoteStatusError) Error() string {
	msg := fmt.Sprintf("%s: remote status %q", e.Source, e.Status)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}
