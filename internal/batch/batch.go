// Package batch runs an operation chain over many files without a window.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/processing/chain"
	"image-workbench/internal/session"

	"github.com/remeh/sizedwaitgroup"
)

// SessionFactory returns a fresh session for one input file.
type SessionFactory func() *session.Session

type Runner struct {
	newSession SessionFactory
	chain      *chain.ProcessingChain
	outDir     string
	// Format forces the output extension, e.g. "png". Empty keeps the
	// input's extension.
	Format string
	jobs   int
	logger logger.Logger
}

// FileResult reports what happened to one input.
type FileResult struct {
	Input    string
	Output   string
	Steps    int
	Duration time.Duration
	Err      error
}

func NewRunner(factory SessionFactory, pc *chain.ProcessingChain, outDir string, jobs int, log logger.Logger) *Runner {
	if jobs < 1 {
		jobs = 1
	}
	return &Runner{
		newSession: factory,
		chain:      pc,
		outDir:     outDir,
		jobs:       jobs,
		logger:     log,
	}
}

// Run processes inputs with at most jobs files in flight. Results keep the
// order of inputs. The returned error joins every per-file failure.
func (r *Runner) Run(ctx context.Context, inputs []string) ([]FileResult, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no input files")
	}
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outputs := r.OutputPaths(inputs)
	results := make([]FileResult, len(inputs))
	swg := sizedwaitgroup.New(r.jobs)

	for i, input := range inputs {
		if err := swg.AddWithContext(ctx); err != nil {
			for j := i; j < len(inputs); j++ {
				results[j] = FileResult{Input: inputs[j], Err: err}
			}
			break
		}
		go func(i int, input string) {
			defer swg.Done()
			results[i] = r.processFile(ctx, input, outputs[i])
		}(i, input)
	}
	swg.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Input, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (r *Runner) processFile(ctx context.Context, input, output string) FileResult {
	start := time.Now()
	result := FileResult{Input: input}

	sess := r.newSession()
	defer sess.Shutdown()

	if _, err := sess.LoadFile(ctx, input); err != nil {
		result.Err = err
		return result
	}

	err := r.chain.Execute(ctx, chain.ApplierFunc(func(ctx context.Context, op models.Operation) error {
		if _, err := sess.Apply(ctx, op); err != nil {
			return err
		}
		result.Steps++
		return nil
	}))
	if err != nil {
		result.Err = err
		return result
	}

	out, err := sess.SaveFile(ctx, output)
	if err != nil {
		result.Err = err
		return result
	}

	result.Output = out.Path
	result.Duration = time.Since(start)

	r.logger.Info("Batch", "file processed", map[string]interface{}{
		"input":    input,
		"output":   result.Output,
		"steps":    result.Steps,
		"duration": result.Duration.String(),
	})
	return result
}

// OutputPath maps an input file to its destination in the output
// directory. A destination equal to the input gets an "_edited" suffix.
func (r *Runner) OutputPath(input string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if r.Format != "" {
		ext = "." + strings.TrimPrefix(r.Format, ".")
	}

	out := filepath.Join(r.outDir, stem+ext)
	if abs(out) == abs(input) {
		out = filepath.Join(r.outDir, stem+"_edited"+ext)
	}
	return out
}

// OutputPaths assigns every input a distinct destination. Inputs that map to
// the same file, such as a/x.png and b/x.png, get "_2", "_3" suffixes in
// input order, and no destination is one of the inputs.
func (r *Runner) OutputPaths(inputs []string) []string {
	taken := make(map[string]bool, 2*len(inputs))
	for _, input := range inputs {
		taken[abs(input)] = true
	}

	outputs := make([]string, len(inputs))
	for i, input := range inputs {
		out := r.OutputPath(input)
		ext := filepath.Ext(out)
		stem := strings.TrimSuffix(out, ext)
		for n := 2; taken[abs(out)]; n++ {
			out = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		taken[abs(out)] = true
		outputs[i] = out
	}
	return outputs
}

func abs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}
	return filepath.Clean(path)
}
