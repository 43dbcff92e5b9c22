package core

import (
	"path/filepath"
	"strings"
	"unicode"
)

type Mode int

const (
	ModeSubmit Mode = iota
	ModeDryRun
)

func (m Mode) String() string {
	if m == ModeDryRun {
		return "dry-run"
	}
	return "submit"
}

// JobRequest is built once per input file (or once per directory job)
// and consumed to generate exactly one job script.
type JobRequest struct {
	Name    string
	Program string
	Resources
	InputFiles []string
	AuxFiles   []string
	Mode       Mode
}

// JobName is the basename of path without its extension.
func JobName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func ValidateName(name string) error {
	if len(name) == 0 {
		return &InvalidNameError{Name: name}
	}
	if r := []rune(name)[0]; unicode.IsDigit(r) {
		return &InvalidNameError{Name: name}
	}
	return nil
}

// CheckExtension accepts path when its extension is one of exts,
// compared case-insensitively.
func CheckExtension(path string, exts ...string) error {
	ext := filepath.Ext(path)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return nil
		}
	}
	return &InvalidExtensionError{File: path, Want: exts}
}
