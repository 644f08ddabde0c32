package letters

import (
	"errors"
	"fmt"
)

// ErrorCode classifies fatal failures when reading or validating documents.
type ErrorCode string

const (
	// CodeInput is a missing, unreadable or malformed JSON file.
	CodeInput ErrorCode = "INPUT_ERROR"
	// CodeSchema is a document that parses but lacks required structure.
	CodeSchema ErrorCode = "SCHEMA_ERROR"
)

// Error carries the code, the file it concerns and the underlying cause.
type Error struct {
	Code    ErrorCode
	Path    string
	Message string
	Cause   error
}

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrInput  = &Error{Code: CodeInput, Message: "input error"}
	ErrSchema = &Error{Code: CodeSchema, Message: "schema error"}
)

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func inputError(path, msg string, cause error) error {
	return &Error{Code: CodeInput, Path: path, Message: msg, Cause: cause}
}

func schemaError(path, msg string, cause error) error {
	return &Error{Code: CodeSchema, Path: path, Message: msg, Cause: cause}
}
