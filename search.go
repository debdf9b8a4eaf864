package hashclash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/p7r0x7/hashclash/bignum"
	"github.com/rs/zerolog"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var (
	ErrInvalidWidth     = errors.New("hashclash: width must be 0 to 63 bits")
	ErrInvalidBatchSize = errors.New("hashclash: batch size must be positive")
)

// Option configures a Search.
type Option func(*Search) error

// WithWidth sets the bit width d of the masked hash.
func WithWidth(d uint) Option {
	return func(s *Search) error {
		m, err := Mask(d)
		if err != nil {
			return fmt.Errorf("%w: got %d", ErrInvalidWidth, d)
		}
		s.width, s.mask = d, m
		return nil
	}
}

// WithBatchSize sets how many candidates are requested per iteration. It must match the
// evaluator's session.
func WithBatchSize(n int) Option {
	return func(s *Search) error {
		if n <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, n)
		}
		s.batch = n
		return nil
	}
}

// WithMaxIterations bounds the number of batches; 0 means unbounded.
func WithMaxIterations(n uint64) Option {
	return func(s *Search) error {
		s.maxIter = n
		return nil
	}
}

// WithLogger sets the logger receiving per-iteration diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Search) error {
		s.log = l
		return nil
	}
}

// WithStart sets the first candidate.
func WithStart(w bignum.Words) Option {
	return func(s *Search) error {
		s.counter = bignum.New(w)
		return nil
	}
}

// Search drives the evaluate, scan and advance loop.
type Search struct {
	eval    Evaluator
	counter *bignum.Counter
	width   uint
	mask    uint64
	batch   int
	maxIter uint64
	log     zerolog.Logger
	id      string
}

// Outcome summarises a finished Run.
type Outcome struct {
	Found      bool
	Collision  Collision
	Iterations uint64
	Counter    bignum.Words // the offset of the batch that hit, or the next unevaluated offset
}

// NewSearch returns a search over eval starting at zero with DefaultWidth and DefaultBatchSize.
func NewSearch(eval Evaluator, opts ...Option) (*Search, error) {
	if eval == nil {
		return nil, errors.New("hashclash: nil evaluator")
	}
	s := &Search{
		eval:    eval,
		counter: bignum.New(bignum.Words{}),
		width:   DefaultWidth,
		mask:    1<<DefaultWidth - 1,
		batch:   DefaultBatchSize,
		log:     zerolog.Nop(),
		id:      uuid.NewString(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.log = s.log.With().Str("run", s.id).Logger()
	return s, nil
}

// ID identifies this search in log output.
func (s *Search) ID() string { return s.id }

// Counter is the offset of the next batch to evaluate.
func (s *Search) Counter() bignum.Words { return s.counter.Snapshot() }

// Mask is the mask applied to every hash.
func (s *Search) Mask() uint64 { return s.mask }

// Run evaluates batches until one holds a positive output, the evaluator fails, the iteration bound
// is reached, the counter wraps, or ctx is cancelled. A failed iteration leaves the counter where
// it was; a hit leaves it at the offset of the batch that hit.
func (s *Search) Run(ctx context.Context) (Outcome, error) {
	s.log.Debug().Uint("width", s.width).Uint64("mask", s.mask).Int("batch", s.batch).
		Stringer("offset", s.counter).Msg("search started")

	var out Outcome
	for {
		out.Counter = s.counter.Snapshot()
		if s.maxIter > 0 && out.Iterations >= s.maxIter {
			s.log.Debug().Uint64("iterations", out.Iterations).Msg("iteration bound reached")
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		req := ChunkRequest{Start: out.Counter, Mask: s.mask, Size: s.batch}
		res, err := s.eval.Evaluate(req)
		if err != nil {
			var se *StageError
			if !errors.As(err, &se) {
				err = dispatchErr(StageEvaluate, err)
			}
			s.log.Error().Err(err).Stringer("offset", s.counter).Msg("dispatch failed")
			return out, err
		}
		if len(res.Outputs) != s.batch {
			err = dispatchErr(StageEvaluate, fmt.Errorf("evaluator returned %d outputs for a batch of %d",
				len(res.Outputs), s.batch))
			s.log.Error().Err(err).Msg("dispatch failed")
			return out, err
		}

		t := time.Now()
		c, hit := Scan(req.Start, res.Outputs)
		scan := time.Since(t)
		out.Iterations++

		if hit {
			s.log.Info().Int("workgroup", res.WorkGroup).Dur("scan", scan).Dur("compute", res.DeviceTime).
				Uint64("cycles", res.Cycles).Stringer("offset", s.counter).Msg("batch")
			s.log.Info().Int64("hash", c.Hash).Int("index", c.Index).
				Str("offset", humanize.BigComma(c.Offset.Big())).Msg("collision")
			out.Found, out.Collision = true, c
			return out, nil
		}

		s.counter.Increment(uint64(s.batch))
		s.log.Info().Int("workgroup", res.WorkGroup).Dur("scan", scan).Dur("compute", res.DeviceTime).
			Uint64("cycles", res.Cycles).Stringer("offset", s.counter).Msg("batch")
		if s.counter.Overflowed() {
			out.Counter = s.counter.Snapshot()
			s.log.Warn().Uint64("iterations", out.Iterations).Msg("counter wrapped")
			return out, ErrExhausted
		}
	}
}
