package common

import (
	"errors"
	"fmt"
)

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

func NewError(a ...any) error {
	msg := fmt.Sprintln(a...)
	return errors.New(msg)
}

// Combine merges multiple errors into one, skipping nils.
func Combine(errs ...error) error {
	errText := ""
	for _, err := range errs {
		if err != nil {
			if errText != "" {
				errText += ", "
			}
			errText += err.Error()
		}
	}
	if errText != "" {
		return errors.New(errText)
	}
	return nil
}
