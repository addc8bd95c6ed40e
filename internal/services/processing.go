package services

import (
	"context"
	"fmt"
	"time"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/opencv/conversion"
	"image-workbench/internal/opencv/safe"
	"image-workbench/internal/processing/filters"
	"image-workbench/internal/processing/frequency"
	"image-workbench/internal/processing/intensity"
	"image-workbench/internal/processing/threshold"
)

// Result is the output of one operation.
type Result struct {
	State models.ImageState
	// Detail carries operation-specific facts for the status line, such as
	// the chosen Otsu threshold. Usually empty.
	Detail string
}

// ProcessingService runs a single Operation against an ImageState. It
// holds no image state of its own and is safe for concurrent use.
type ProcessingService struct {
	logger logger.Logger
}

// NewProcessingService creates a new processing service
func NewProcessingService(log logger.Logger) *ProcessingService {
	return &ProcessingService{logger: log}
}

// Apply normalizes and validates op, then runs it on a copy of state.
// The input state is never modified.
func (ps *ProcessingService) Apply(ctx context.Context, state models.ImageState, op models.Operation) (Result, error) {
	if op == nil {
		return Result{}, fmt.Errorf("no operation given")
	}
	if state.IsEmpty() {
		return Result{}, fmt.Errorf("no image to process")
	}

	op = models.Normalize(op)
	if err := op.Validate(); err != nil {
		return Result{}, err
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	startTime := time.Now()

	var (
		result Result
		err    error
	)
	switch o := op.(type) {
	case models.LowPass:
		result.State, err = frequency.LowPass(ctx, state, o.Cutoff)
	case models.HighPass:
		result.State, err = frequency.HighPass(ctx, state, o.Cutoff)
	default:
		result, err = ps.applyMat(ctx, state, op)
	}
	if err != nil {
		return Result{}, err
	}

	ps.logger.Debug("ProcessingService", "operation complete", map[string]interface{}{
		"operation": string(op.Kind()),
		"width":     result.State.Width(),
		"height":    result.State.Height(),
		"duration":  time.Since(startTime).String(),
	})

	return result, nil
}

// Spectrum renders the centred log-magnitude spectrum of state.
func (ps *ProcessingService) Spectrum(ctx context.Context, state models.ImageState) (models.ImageState, error) {
	return frequency.Spectrum(ctx, state)
}

func (ps *ProcessingService) applyMat(ctx context.Context, state models.ImageState, op models.Operation) (Result, error) {
	src, err := conversion.StateToMat(state)
	if err != nil {
		return Result{}, fmt.Errorf("input conversion failed: %w", err)
	}
	defer src.Close()

	var (
		dst    *safe.Mat
		detail string
	)
	switch o := op.(type) {
	case models.MeanFilter:
		dst, err = filters.Mean(ctx, src, o.KernelSize)
	case models.MedianFilter:
		dst, err = filters.Median(ctx, src, o.KernelSize)
	case models.MaxFilter:
		dst, err = filters.Max(ctx, src, o.KernelSize)
	case models.MinFilter:
		dst, err = filters.Min(ctx, src, o.KernelSize)
	case models.GaussianFilter:
		dst, err = filters.Gaussian(ctx, src, o.Sigma)
	case models.Laplacian:
		dst, err = filters.Laplacian(ctx, src)
	case models.Roberts:
		dst, err = filters.Roberts(ctx, src)
	case models.Prewitt:
		dst, err = filters.Prewitt(ctx, src)
	case models.Sobel:
		dst, err = filters.Sobel(ctx, src)
	case models.Erosion:
		dst, err = filters.Erode(ctx, src, o.KernelSize)
	case models.Dilation:
		dst, err = filters.Dilate(ctx, src, o.KernelSize)
	case models.ContrastStretch:
		dst, err = intensity.ContrastStretch(ctx, src, o.Min, o.Max)
	case models.HistogramEqualization:
		dst, err = intensity.Equalize(ctx, src)
	case models.OtsuThreshold:
		var level uint8
		dst, level, err = threshold.Otsu(ctx, src)
		detail = fmt.Sprintf("threshold %d", level)
	default:
		return Result{}, fmt.Errorf("unsupported operation %q", op.Kind())
	}
	if err != nil {
		return Result{}, err
	}
	defer dst.Close()

	out, err := conversion.MatToState(dst)
	if err != nil {
		return Result{}, fmt.Errorf("output conversion failed: %w", err)
	}
	return Result{State: out, Detail: detail}, nil
}
