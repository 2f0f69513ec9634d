// Package pipeline filters batches of depth files concurrently.
package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/depthkit/depthkit/logging"
	"github.com/depthkit/depthkit/rimage"
	"github.com/depthkit/depthkit/rimage/speckle"
)

// Job is one depth file to filter.
type Job struct {
	Input  string
	Output string
}

// Result is the outcome of one Job. Filled counts the holes filled after speckle removal.
type Result struct {
	Job      Job
	Format   rimage.PixelFormat
	Width    int
	Height   int
	Stats    speckle.Stats
	Filled   int
	Duration time.Duration
	Err      error
}

// Processor runs speckle filter jobs on a fixed number of workers. Every worker owns its own
// speckle.Filter, so scratch buffers are never shared between goroutines.
type Processor struct {
	cfg        speckle.Config
	workers    int
	fillPasses int
	logger     logging.Logger
}

// NewProcessor returns a processor using cfg for every job. workers <= 0 means one per CPU.
func NewProcessor(cfg speckle.Config, workers int, logger logging.Logger) *Processor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Processor{cfg: cfg, workers: workers, logger: logger}
}

// SetHoleFilling makes every job run passes rounds of rimage.FillHoles over the pixels the
// speckle filter left at the invalid value. 0 turns it off.
func (p *Processor) SetHoleFilling(passes int) {
	p.fillPasses = passes
}

// Workers returns the number of worker goroutines a run may use.
func (p *Processor) Workers() int {
	return p.workers
}

// Run filters every job and returns one result per job, in the order given. A failing job does
// not stop the others; all job errors are combined into the returned error. If ctx is cancelled
// no new jobs are started, the jobs that never ran carry the context error, and the context
// error is returned.
func (p *Processor) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := p.cfg.Validate("speckle"); err != nil {
		return nil, err
	}

	results := make([]Result, len(jobs))
	started := make([]bool, len(jobs))
	for i, job := range jobs {
		results[i].Job = job
	}

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	work := make(chan int)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(work)
		for i := range jobs {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case work <- i:
			}
		}
		return nil
	})

	for worker := 0; worker < workers; worker++ {
		logger := p.logger.Sublogger("worker").WithFields("worker", worker)
		group.Go(func() error {
			filter := speckle.NewFilter()
			for i := range work {
				started[i] = true
				results[i] = p.process(filter, jobs[i], logger)
			}
			return nil
		})
	}

	waitErr := group.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		for i := range results {
			if !started[i] {
				results[i].Err = ctxErr
			}
		}
		return results, ctxErr
	}
	if waitErr != nil {
		return results, waitErr
	}

	var errs error
	for _, res := range results {
		errs = multierr.Append(errs, res.Err)
	}
	return results, errs
}

func (p *Processor) process(filter *speckle.Filter, job Job, logger logging.Logger) (res Result) {
	res.Job = job
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
	}()

	img, err := rimage.ReadDepthFile(job.Input)
	if err != nil {
		res.Err = err
		logger.Errorw("cannot read depth file", "input", job.Input, "error", err)
		return res
	}
	bounds := img.Bounds()
	res.Format = rimage.FormatOf(img)
	res.Width, res.Height = bounds.Dx(), bounds.Dy()

	if res.Format == rimage.PixelFormatGray8 && !p.cfg.FitsEightBits() {
		logger.Warnw("new_val does not fit in 8 bits and will be truncated",
			"input", job.Input, "new_val", p.cfg.NewVal, "truncated", uint8(p.cfg.NewVal))
	}

	if err := filter.Apply(img, p.cfg); err != nil {
		res.Err = errors.Wrapf(err, "cannot filter %q", job.Input)
		logger.Errorw("cannot filter depth file", "input", job.Input, "error", err)
		return res
	}
	res.Stats = filter.Stats()

	if p.fillPasses > 0 {
		if dm, ok := img.(*rimage.DepthMap); ok {
			res.Filled = rimage.FillHoles(dm, rimage.Depth(uint16(p.cfg.NewVal)), p.fillPasses)
		} else {
			logger.Warnw("hole filling needs 16-bit depth, skipping", "input", job.Input, "format", res.Format.String())
		}
	}

	if err := rimage.WriteDepthFile(job.Output, img); err != nil {
		res.Err = err
		logger.Errorw("cannot write depth file", "output", job.Output, "error", err)
		return res
	}

	logger.Debugw("filtered depth file",
		"input", job.Input,
		"output", job.Output,
		"format", res.Format.String(),
		"regions", res.Stats.Regions,
		"speckles", res.Stats.SpeckleRegions,
		"erased", res.Stats.ErasedPixels,
		"filled", res.Filled,
	)
	return res
}
