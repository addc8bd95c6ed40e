package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"image-workbench/internal/batch"
	"image-workbench/internal/config"
	"image-workbench/internal/logger"
	"image-workbench/internal/metrics"
	"image-workbench/internal/opencv/memory"
	"image-workbench/internal/opencv/safe"
	"image-workbench/internal/processing/chain"
	"image-workbench/internal/services"
	"image-workbench/internal/session"
	"image-workbench/internal/shutdown"

	"github.com/hako/durafmt"
)

func runBatch(cfg config.Config, opts options, log logger.Logger) int {
	if len(opts.inputs) == 0 {
		fmt.Fprintln(os.Stderr, "batch mode needs at least one input file")
		return 2
	}

	pc, err := chain.Parse(opts.ops, cfg.Defaults)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	memManager := memory.NewManager(log)
	safe.SetDefaultTracker(memManager)
	defer safe.SetDefaultTracker(nil)

	recorder := metrics.NewRecorder()
	recorder.TrackActiveMats(func() int64 { return memManager.GetStats().ActiveMats })
	observer := recorder.Shared()

	imageService := services.NewImageService(cfg.Output.JPEGQuality, cfg.Output.DefaultFormat, log)
	processingService := services.NewProcessingService(log)

	factory := func() *session.Session {
		sess := session.New(cfg.History.Capacity, processingService, imageService, log)
		sess.SetObserver(observer)
		return sess
	}

	jobs := opts.jobs
	if jobs < 1 {
		jobs = cfg.Batch.Jobs
	}
	runner := batch.NewRunner(factory, pc, opts.outDir, jobs, log)
	runner.Format = opts.format

	manager := shutdown.NewManager(log)
	if cfg.Metrics.Addr != "" {
		server, err := recorder.Serve(cfg.Metrics.Addr, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		manager.Register("metrics server", shutdown.Func(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Warning("Batch", "metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
			}
		}))
	}
	manager.Register("memory manager", memManager)
	manager.Listen(nil)
	defer manager.Shutdown()

	log.Info("Batch", "batch started", map[string]interface{}{
		"files": len(opts.inputs),
		"steps": pc.GetStepNames(),
		"jobs":  jobs,
	})

	start := time.Now()
	results, err := runner.Run(manager.Context(), opts.inputs)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", res.Input, res.Err)
			continue
		}
		fmt.Printf("ok   %s -> %s (%d steps, %s)\n", res.Input, res.Output, res.Steps,
			durafmt.ParseShort(res.Duration).String())
	}
	fmt.Printf("%d of %d files processed in %s\n", len(results)-failed, len(results),
		durafmt.ParseShort(time.Since(start)).String())

	if err != nil {
		log.Error("Batch", err, map[string]interface{}{"failed": failed})
		return 1
	}
	return 0
}
