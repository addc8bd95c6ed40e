package chain

import (
	"context"
	"fmt"

	"image-workbench/internal/models"
)

// Applier applies one operation to whatever image it holds.
type Applier interface {
	Apply(ctx context.Context, op models.Operation) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, op models.Operation) error

func (f ApplierFunc) Apply(ctx context.Context, op models.Operation) error {
	return f(ctx, op)
}

// ProcessingChain is an ordered list of operations run one after another
// against a single Applier.
type ProcessingChain struct {
	steps []models.Operation
}

func NewProcessingChain(steps []models.Operation) *ProcessingChain {
	return &ProcessingChain{
		steps: append([]models.Operation(nil), steps...),
	}
}

// Parse builds a chain from specs such as "median:5" or "otsu".
func Parse(specs []string, defaults models.Defaults) (*ProcessingChain, error) {
	steps := make([]models.Operation, 0, len(specs))
	for i, spec := range specs {
		op, err := models.ParseOperation(spec, defaults)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps = append(steps, op)
	}
	return NewProcessingChain(steps), nil
}

// Execute stops at the first failing step. Steps before it stay applied.
func (pc *ProcessingChain) Execute(ctx context.Context, applier Applier) error {
	for i, step := range pc.steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := applier.Apply(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s) failed: %w", i+1, step.Kind(), err)
		}
	}
	return nil
}

func (pc *ProcessingChain) AddStep(step models.Operation) {
	pc.steps = append(pc.steps, step)
}

func (pc *ProcessingChain) InsertStep(index int, step models.Operation) error {
	if index < 0 || index > len(pc.steps) {
		return fmt.Errorf("index out of range: %d", index)
	}

	pc.steps = append(pc.steps[:index], append([]models.Operation{step}, pc.steps[index:]...)...)
	return nil
}

func (pc *ProcessingChain) RemoveStep(index int) error {
	if index < 0 || index >= len(pc.steps) {
		return fmt.Errorf("index out of range: %d", index)
	}

	pc.steps = append(pc.steps[:index], pc.steps[index+1:]...)
	return nil
}

func (pc *ProcessingChain) StepCount() int {
	return len(pc.steps)
}

func (pc *ProcessingChain) Steps() []models.Operation {
	return append([]models.Operation(nil), pc.steps...)
}

func (pc *ProcessingChain) GetStepNames() []string {
	names := make([]string, len(pc.steps))
	for i, step := range pc.steps {
		names[i] = step.String()
	}
	return names
}
