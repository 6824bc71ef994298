package sheetsapi

import "fmt"

type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindNetwork
	KindServer
)

// SubmitError classifies a failed write so the UI layer can show an
// actionable message without string-matching on error text.
type SubmitError struct {
	Kind  ErrorKind
	What  string
	cause error
}

func (e *SubmitError) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("Network error: unable to connect to the order system. Please check your connection and try again. (%s)", e.What)
	case KindServer:
		return fmt.Sprintf("Server error: the order system is not responding correctly. Please try again in a few moments. (%s)", e.What)
	default:
		if e.cause != nil {
			return fmt.Sprintf("Failed to %s: %s", e.What, e.cause)
		}
		return fmt.Sprintf("Failed to %s", e.What)
	}
}

func (e *SubmitError) Unwrap() error {
	return e.cause
}

func classifyWriteStatus(what string, status int) *SubmitError {
	// 4xx means the script deployment itself is misbehaving (bad
	// deployment id, auth wall); anything else non-2xx stays generic.
	if status >= 400 && status < 500 {
		return &SubmitError{Kind: KindServer, What: what}
	}
	return &SubmitError{
		Kind:  KindGeneric,
		What:  what,
		cause: fmt.Errorf("http error: status %d", status),
	}
}
