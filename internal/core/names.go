package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned when a component name cannot be used as a file name
var ErrInvalidName = errors.New("invalid component name")

// ValidName reports whether name is a single local path segment,
// safe to join under an output directory.
func ValidName(name string) bool {
	return name != "" && name != "." &&
		filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}

// CheckName returns a wrapped ErrInvalidName when name is not a valid file name
func CheckName(component, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %s '%s'", ErrInvalidName, component, name)
	}
	return nil
}

// InvalidNameWarning reports a component skipped because of its name
func InvalidNameWarning(component, name, path string) Warning {
	return Warn(component, fmt.Sprintf("skipped %s: name '%s' is not a single path segment", path, name))
}
