// Package multi decodes every Aztec symbol in an image by running the single
// symbol pipeline over candidate regions.
package multi

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	aztecgo "github.com/ericlevine/aztecgo"
	"github.com/ericlevine/aztecgo/aztec"
	"github.com/ericlevine/aztecgo/binarizer"
	"github.com/ericlevine/aztecgo/internal/regions"
)

// Finder decodes the symbols in candidate boxes of an image concurrently.
type Finder struct {
	// Reader decodes each candidate. Nil selects aztec.NewReader().
	Reader *aztec.Reader
	// Options applies to every candidate. Nil means defaults.
	Options *aztecgo.Options
	// Workers bounds the number of concurrent decodes. Zero or less selects
	// runtime.NumCPU().
	Workers int
	// Regions tunes the box proposer used by FindAll.
	Regions regions.Options
	// Binarizer tunes the local threshold applied to each candidate.
	Binarizer binarizer.HybridOptions
	// Logger receives per candidate diagnostics. Nil disables logging.
	Logger *slog.Logger
	// Observe, when set, is called once per decoded candidate from the
	// worker goroutine that ran it.
	Observe func(res *aztecgo.Result, err error, elapsed time.Duration)
}

// NewFinder creates a Finder with default settings.
func NewFinder() *Finder {
	return &Finder{
		Workers:   runtime.NumCPU(),
		Regions:   regions.DefaultOptions(),
		Binarizer: binarizer.DefaultHybridOptions(),
	}
}

type outcome struct {
	result *aztecgo.Result
	err    error
}

// Find decodes every box of source. Results keep the order of boxes, with
// failed candidates skipped and points given in source coordinates. When no
// candidate decodes the error wraps aztecgo.ErrNoSymbolFound together with
// every candidate failure.
//
// The context is checked before each candidate is dispatched. Decodes already
// running are not interrupted. Find returns the context error only when some
// candidate was never dispatched.
func (f *Finder) Find(ctx context.Context, source aztecgo.LuminanceSource, boxes []image.Rectangle) ([]*aztecgo.Result, error) {
	logger := f.logger()
	outcomes := make([]outcome, len(boxes))

	workers := f.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(boxes))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = f.decode(source, boxes[i])
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range boxes {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if dispatched < len(boxes) {
		return nil, ctx.Err()
	}

	var results []*aztecgo.Result
	var failures *multierror.Error
	for i, o := range outcomes {
		if o.err != nil {
			logger.Debug("candidate skipped", "index", i, "box", boxes[i].String(),
				"stage", string(aztecgo.StageOf(o.err)), "error", o.err)
			failures = multierror.Append(failures, fmt.Errorf("candidate %d %v: %w", i, boxes[i], o.err))
			continue
		}
		if duplicate(results, o.result) {
			logger.Debug("duplicate candidate dropped", "index", i, "box", boxes[i].String())
			continue
		}
		results = append(results, o.result)
	}

	if len(results) == 0 {
		if err := failures.ErrorOrNil(); err != nil {
			return nil, fmt.Errorf("%w: %w", aztecgo.ErrNoSymbolFound, err)
		}
		return nil, aztecgo.ErrNoSymbolFound
	}
	logger.Debug("candidates decoded", "found", len(results), "failed", len(failures.WrappedErrors()))
	return results, nil
}

// FindAll proposes candidate boxes with the region proposer and decodes them.
// The whole image is used as the only candidate when no region qualifies.
func (f *Finder) FindAll(ctx context.Context, source aztecgo.LuminanceSource) ([]*aztecgo.Result, error) {
	boxes := regions.Propose(source, f.Regions)
	if len(boxes) == 0 {
		f.logger().Debug("no region proposed, using the whole image")
		boxes = []image.Rectangle{image.Rect(0, 0, source.Width(), source.Height())}
	} else {
		f.logger().Debug("regions proposed", "count", len(boxes))
	}
	return f.Find(ctx, source, boxes)
}

func (f *Finder) decode(source aztecgo.LuminanceSource, box image.Rectangle) outcome {
	start := time.Now()
	res, err := f.decodeBox(source, box)
	if f.Observe != nil {
		f.Observe(res, err, time.Since(start))
	}
	return outcome{result: res, err: err}
}

func (f *Finder) decodeBox(source aztecgo.LuminanceSource, box image.Rectangle) (*aztecgo.Result, error) {
	crop, err := source.Crop(box)
	if err != nil {
		return nil, &aztecgo.StageError{Stage: aztecgo.StageLocate, Err: fmt.Errorf("%w: %v", aztecgo.ErrLocate, err)}
	}
	reader := f.Reader
	if reader == nil {
		reader = aztec.NewReader()
	}
	res, err := reader.Decode(aztecgo.NewBinaryBitmap(binarizer.NewHybridWithOptions(crop, f.Binarizer)), f.Options)
	if err != nil {
		return nil, err
	}
	return res.Translate(float64(box.Min.X), float64(box.Min.Y)), nil
}

func (f *Finder) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.Logger
}

// duplicate reports whether res repeats an earlier result: same text, with
// its center inside the earlier symbol's inner half.
func duplicate(results []*aztecgo.Result, res *aztecgo.Result) bool {
	for _, prev := range results {
		if prev.Text != res.Text || len(prev.Points) < 5 || len(res.Points) < 5 {
			continue
		}
		radius := aztecgo.Distance(prev.Points[4], prev.Points[0]) / 2
		if aztecgo.Distance(prev.Points[4], res.Points[4]) < radius {
			return true
		}
	}
	return false
}

var _ aztecgo.MultipleSymbolReader = (*Finder)(nil)
