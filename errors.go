package blankpng

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Render and Verify is a *StepError
// matching exactly one of these with errors.Is.
var (
	// ErrInvalidConfig is returned for configurations Render cannot honor.
	ErrInvalidConfig = errors.New("blankpng: invalid config")

	// ErrOutOfMemory is returned when the image buffer cannot be allocated.
	ErrOutOfMemory = errors.New("blankpng: out of memory")

	// ErrEncoderInit is returned when the encoder or its metadata cannot
	// be set up.
	ErrEncoderInit = errors.New("blankpng: encoder init failed")

	// ErrFileOpen is returned when the output file cannot be created.
	ErrFileOpen = errors.New("blankpng: cannot open output")

	// ErrEncoding is returned when writing the image fails.
	ErrEncoding = errors.New("blankpng: encoding failed")

	// ErrMismatch is returned by Verify when a file does not hold the
	// configured image.
	ErrMismatch = errors.New("blankpng: image mismatch")
)

// Step identifies where in the write sequence an error happened.
type Step uint8

// Steps, in execution order.
const (
	StepConfig Step = iota
	StepAllocate
	StepEncoderInit
	StepOpen
	StepEncode
	StepThumbnail
	StepVerify
)

// String describes the step the way it appears in error messages.
func (s Step) String() string {
	switch s {
	case StepConfig:
		return "validating configuration"
	case StepAllocate:
		return "allocating memory for image data"
	case StepEncoderInit:
		return "creating encoder"
	case StepOpen:
		return "opening file for writing"
	case StepEncode:
		return "writing image"
	case StepThumbnail:
		return "writing thumbnail"
	case StepVerify:
		return "verifying output"
	default:
		return fmt.Sprintf("Step(%d)", uint8(s))
	}
}

// StepError reports the failing step, its kind and the underlying cause.
type StepError struct {
	Step Step
	Kind error
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("blankpng: %s: %v", e.Step, e.Err)
}

// Unwrap returns both the kind and the cause, so errors.Is matches either.
func (e *StepError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func stepErr(step Step, kind, err error) error {
	return &StepError{Step: step, Kind: kind, Err: err}
}
