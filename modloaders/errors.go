package modloaders

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingManifestEntry means the installer archive lacks its
	// install profile or version document.
	ErrMissingManifestEntry = errors.New("installer archive is missing a required entry")

	// ErrMissingMainClass means a processor jar's manifest has no
	// Main-Class header.
	ErrMissingMainClass = errors.New("jar manifest has no Main-Class header")
)

// ProcessorError reports a processor that exited non-zero. The captured
// streams are surfaced verbatim: the processor's own output is the only
// useful diagnostic for a vendor-authored installation step.
type ProcessorError struct {
	MainClass string
	Stdout    string
	Stderr    string
	Err       error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %s failed: %s\nstdout:\n%s\nstderr:\n%s", e.MainClass, e.Err.Error(), e.Stdout, e.Stderr)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}
