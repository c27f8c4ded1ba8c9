package errors

import "errors"

// Error codes shared across the engine. Handlers branch on these to pick a
// status code and a user-facing message.
const (
	CodeInvalidInput = "invalid_input"
	CodeCorpusLoad   = "corpus_load_error"
	CodeEncoding     = "encoding_error"
	CodeMatch        = "match_error"
	CodeLogWrite     = "log_write_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps callers differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
