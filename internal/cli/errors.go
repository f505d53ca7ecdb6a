package cli

import (
	"fmt"

	"survey-responder/internal/domain"
)

// categorizedError prefixes an error with the category shown to users.
type categorizedError struct {
	category string
	err      error
}

func (e *categorizedError) Error() string {
	return fmt.Sprintf("%s: %v", e.category, e.err)
}

func (e *categorizedError) Unwrap() error {
	return e.err
}

func categorize(err error) error {
	return &categorizedError{category: category(err), err: err}
}

func category(err error) string {
	switch domain.CodeOf(err) {
	case domain.ErrFileNotFound:
		return "File Error"
	case domain.ErrInvalidInput:
		return "Input Error"
	case domain.ErrConnection:
		return "Connection Error"
	default:
		return "Unexpected Error"
	}
}
