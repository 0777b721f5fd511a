package main

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lgbarn/gambit/internal/engine"
	"github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/hashing"
	"github.com/lgbarn/gambit/internal/output"
	"github.com/lgbarn/gambit/internal/training"
)

// batchOptions controls analyzeBatch.
type batchOptions struct {
	// Workers is the number of requests kept queued on the engine
	Workers int
	// SkipDuplicates marks repeated positions instead of evaluating them
	SkipDuplicates bool
}

type batchJob struct {
	index     int
	fen       string
	duplicate bool
}

type batchResult struct {
	index int
	rec   output.Record
}

// analyzeBatch evaluates every FEN line of r and writes one record per line
// to w, in input order, closing w at the end. Blank lines and lines starting
// with '#' are skipped. A position that fails to parse or evaluate is reported in
// its record; an unavailable engine stops the batch.
func analyzeBatch(ctx context.Context, svc *training.Service, r io.Reader, w output.RecordWriter, opts batchOptions) (int, error) {
	g, ctx := errgroup.WithContext(ctx)

	jobs := make(chan batchJob)
	results := make(chan batchResult)

	var seen *hashing.DuplicateDetector
	if opts.SkipDuplicates {
		seen = hashing.NewDuplicateDetector(false, 0)
	}

	g.Go(func() error {
		defer close(jobs)
		return loadFENs(ctx, r, seen, jobs)
	})

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return evaluateFENs(ctx, svc, jobs, results)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	var written int
	g.Go(func() error {
		var err error
		written, err = writeRecords(w, results)
		return err
	})

	err := g.Wait()
	return written, err
}

// loadFENs feeds the non-comment lines of r to jobs. When seen is set,
// positions met before are flagged as duplicates.
func loadFENs(ctx context.Context, r io.Reader, seen *hashing.DuplicateDetector, jobs chan<- batchJob) error {
	scanner := bufio.NewScanner(r)
	index := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		job := batchJob{index: index, fen: line}
		if seen != nil {
			if pos, err := engine.ParseFEN(line); err == nil {
				job.duplicate = seen.CheckAndAdd(pos)
			}
		}
		select {
		case jobs <- job:
			index++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func evaluateFENs(ctx context.Context, svc *training.Service, jobs <-chan batchJob, results chan<- batchResult) error {
	for job := range jobs {
		rec := output.Record{FEN: job.fen, Duplicate: true}
		if !job.duplicate {
			var err error
			if rec, err = evaluateFEN(ctx, svc, job.fen); err != nil {
				return err
			}
		}
		select {
		case results <- batchResult{index: job.index, rec: rec}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// evaluateFEN builds the record for one position. Only failures that end
// the batch are returned as errors.
func evaluateFEN(ctx context.Context, svc *training.Service, fen string) (output.Record, error) {
	rec := output.Record{FEN: fen}

	pos, err := engine.ParseFEN(fen)
	if err != nil {
		rec.Error = err.Error()
		return rec, nil
	}

	res, err := svc.GetEvaluation(ctx, pos)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrEngineUnavailable), ctx.Err() != nil:
		return rec, err
	default:
		rec.Error = err.Error()
		return rec, nil
	}

	rec.FEN = engine.ToFEN(pos)
	rec.Depth = res.Depth
	rec.Best = res.BestMove
	rec.PV = res.PV
	if res.MateIn != nil {
		mate := *res.MateIn
		rec.Mate = &mate
	} else {
		cp := res.Evaluation
		rec.CP = &cp
	}
	return rec, nil
}

// writeRecords writes results in index order as they become available.
func writeRecords(w output.RecordWriter, results <-chan batchResult) (int, error) {
	pending := make(map[int]output.Record)
	next := 0
	for res := range results {
		pending[res.index] = res.rec
		for {
			rec, ok := pending[next]
			if !ok {
				break
			}
			if err := w.WriteRecord(rec); err != nil {
				return next, errors.Wrap(err, "writing record")
			}
			delete(pending, next)
			next++
		}
	}
	return next, w.Close()
}
