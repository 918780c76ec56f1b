package ipc

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a client invocation can end with.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	InvalidDirection
	InvalidInvertTarget
	DaemonNotRunning
	ConnectionFailure
	IncompleteWrite
	TruncatedMessage
	ReplyTimeout
	MalformedReply
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidDirection:
		return "InvalidDirection"
	case InvalidInvertTarget:
		return "InvalidInvertTarget"
	case DaemonNotRunning:
		return "DaemonNotRunning"
	case ConnectionFailure:
		return "ConnectionFailure"
	case IncompleteWrite:
		return "IncompleteWrite"
	case TruncatedMessage:
		return "TruncatedMessage"
	case ReplyTimeout:
		return "ReplyTimeout"
	case MalformedReply:
		return "MalformedReply"
	default:
		return "Unknown"
	}
}

// Error carries an ErrorKind, a human-readable detail and an optional cause.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// Errorf builds an *Error of the given kind with no cause.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around err.
func Wrap(kind ErrorKind, err error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: K})
// works as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
