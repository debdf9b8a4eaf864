package main

import (
	"context"
	. "fmt"
	"io"
	"time"

	"github.com/p7r0x7/hashclash"
	"github.com/p7r0x7/hashclash/accel"
	"github.com/rs/zerolog"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// sweep times a full search for every width from 1 to widest, opening a fresh session on a device
// from open for each one, and writes one "d seconds" line per width to w.
func sweep(ctx context.Context, w io.Writer, open func() (accel.Device, error), source []byte, batch int,
	widest uint, log zerolog.Logger) error {
	for d := uint(1); d <= widest; d++ {
		dev, err := open()
		if err != nil {
			return err
		}
		sess, err := hashclash.Open(dev, source, batch)
		if err != nil {
			return err
		}
		search, err := hashclash.NewSearch(hashclash.NewDeviceEvaluator(sess),
			hashclash.WithWidth(d), hashclash.WithBatchSize(batch), hashclash.WithLogger(log))
		if err != nil {
			_ = sess.Close()
			return err
		}

		start := time.Now()
		out, err := search.Run(ctx)
		elapsed := time.Since(start)
		_ = sess.Close()
		if err != nil {
			return Errorf("d=%d: %w", d, err)
		}
		log.Debug().Uint("d", d).Uint64("iterations", out.Iterations).Bool("found", out.Found).Msg("sweep")
		Fprintf(w, "%2d  %s\n", d, fmtFloats(elapsed.Seconds()))
	}
	return nil
}
