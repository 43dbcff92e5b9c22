package core

import (
	"fmt"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// NoArgumentsError is returned when a launcher is called without input.
type NoArgumentsError struct {
	Command string
}

func (e *NoArgumentsError) Error() string {
	return e.Command + ": no input given"
}

// UnknownOptionError is returned for a flag missing from the launcher's
// flag table. No input is processed after it.
type UnknownOptionError struct {
	Option string
}

func (e *UnknownOptionError) Error() string {
	return "unknown option: " + e.Option
}

type InvalidExtensionError struct {
	File string
	Want []string
}

func (e *InvalidExtensionError) Error() string {
	return fmt.Sprintf("%s: invalid extension, expected %s", e.File, strings.Join(e.Want, " or "))
}

type MissingFileError struct {
	File string
}

func (e *MissingFileError) Error() string {
	return e.File + ": no such file"
}

// InvalidNameError is returned for job names the scheduler directive
// syntax rejects (leading digit).
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid job name %q: must not start with a digit", e.Name)
}

// ExitError carries the exit status of the last submission command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("submission exited with status %d", e.Code)
}

// IsFileError reports whether err only concerns a single input and the
// rest of a batch may continue.
func IsFileError(err error) bool {
	switch errors.Cause(err).(type) {
	case *InvalidExtensionError, *MissingFileError, *InvalidNameError:
		return true
	}
	return false
}

func CreateHelpErr() error {
	err := flags.Error{
		Type:    flags.ErrHelp,
		Message: "show help message",
	}
	return &err
}
