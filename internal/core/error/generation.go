package errx

import (
	"errors"
	"net/http"
)

// WrapGeneration wraps a text-generation failure (network, timeout, quota)
// with a consistent status code and safe message. Callers must treat these
// as recoverable: the session falls back to a canned reply, never crashes.
func WrapGeneration(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, GenerationErrorMessage)
}

// IsGeneration reports whether err is a wrapped generation failure.
func IsGeneration(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Message == GenerationErrorMessage
}
