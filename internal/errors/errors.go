package errors

import (
	stderrors "errors"
)

type ErrorType string

const (
	ErrorTypeNotARepository        ErrorType = "NOT_A_REPOSITORY"
	ErrorTypeQueryFailed           ErrorType = "QUERY_FAILED"
	ErrorTypeComparisonUnavailable ErrorType = "COMPARISON_UNAVAILABLE"
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotARepository(path string) *Error {
	return &Error{
		Type:    ErrorTypeNotARepository,
		Message: "not inside a repository: " + path,
		Path:    path,
	}
}

func QueryFailed(path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeQueryFailed,
		Message: "version control query failed for " + path,
		Path:    path,
		Err:     err,
	}
}

func ComparisonUnavailable(path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeComparisonUnavailable,
		Message: "comparison content unavailable for " + path,
		Path:    path,
		Err:     err,
	}
}

// IsType reports whether err is (or wraps) an *Error of the given type.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}
