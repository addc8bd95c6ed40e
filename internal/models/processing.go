package models

import (
	"fmt"
	"math"
)

// Parameter ranges accepted by the operations.
const (
	MinKernelSize      = 3
	MaxKernelSize      = 31
	MaxMorphKernelSize = 15
	MaxSigma           = 50.0
	MinCutoff          = 1
	MaxCutoff          = 4096
)

// Defaults holds the parameter values used when a caller leaves one out.
type Defaults struct {
	KernelSize      int     `toml:"kernel_size"`
	MorphKernelSize int     `toml:"morph_kernel_size"`
	Sigma           float64 `toml:"sigma"`
	Cutoff          int     `toml:"cutoff"`
	ContrastMin     uint8   `toml:"contrast_min"`
	ContrastMax     uint8   `toml:"contrast_max"`
}

func DefaultParameters() Defaults {
	return Defaults{
		KernelSize:      3,
		MorphKernelSize: 3,
		Sigma:           1.0,
		Cutoff:          30,
		ContrastMin:     0,
		ContrastMax:     255,
	}
}

// Validate checks that every default would itself produce a valid operation.
func (d Defaults) Validate() error {
	checks := []Operation{
		MeanFilter{KernelSize: d.KernelSize},
		Erosion{KernelSize: d.MorphKernelSize},
		GaussianFilter{Sigma: d.Sigma},
		LowPass{Cutoff: d.Cutoff},
		ContrastStretch{Min: d.ContrastMin, Max: d.ContrastMax},
	}
	for _, op := range checks {
		if err := op.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeKernelSize rounds an even size up to the next odd value.
func NormalizeKernelSize(size int) int {
	if size%2 == 0 {
		return size + 1
	}
	return size
}

func validateKernel(size, maxSize int) error {
	normalized := NormalizeKernelSize(size)
	if normalized < MinKernelSize {
		return NewValidationError("kernel_size", size, fmt.Sprintf("must be at least %d", MinKernelSize))
	}
	if normalized > maxSize {
		return NewValidationError("kernel_size", size, fmt.Sprintf("must be at most %d", maxSize))
	}
	return nil
}

func validateSigma(sigma float64) error {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return NewValidationError("sigma", sigma, "must be a positive number")
	}
	if sigma > MaxSigma {
		return NewValidationError("sigma", sigma, fmt.Sprintf("must be at most %g", MaxSigma))
	}
	return nil
}

func validateCutoff(cutoff int) error {
	if cutoff < MinCutoff || cutoff > MaxCutoff {
		return NewValidationError("cutoff", cutoff,
			fmt.Sprintf("must be between %d and %d pixels", MinCutoff, MaxCutoff))
	}
	return nil
}

// ValidationError reports a parameter outside its accepted range
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
}

// NewValidationError creates a new validation error
func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

// Error returns the error message
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("invalid value '%v' for parameter '%s': %s",
		ve.Value, ve.Parameter, ve.Message)
}
