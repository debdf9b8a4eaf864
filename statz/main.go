package main

import (
	"context"
	. "fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/p7r0x7/hashclash/accel"
	_ "github.com/p7r0x7/hashclash/accel/host"
	"github.com/p7r0x7/hashclash/internal/config"
	"github.com/p7r0x7/hashclash/internal/logger"
	"github.com/p7r0x7/hashclash/kernels"
	. "github.com/spf13/pflag"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var pSweep uint
var pBatch int
var pKernel, pDevice string
var pSkipBench bool

func init() {
	conf := config.New(logger.New(logger.Options{Level: "warn"}))
	UintVar(&pSweep, "sweep", 0, "time the search for every width from 1 to N instead of benchmarking")
	IntVar(&pBatch, "batch", conf.MayInt("BATCH", 1<<16), "candidates per dispatch during a sweep")
	StringVar(&pKernel, "kernel", conf.MayString("KERNEL", "include/hash.cl"), "kernel source used by a sweep")
	StringVar(&pDevice, "device", conf.MayString("DEVICE", ""), "accelerator platform used by a sweep")
	BoolVar(&pSkipBench, "monobit-only", false, "skip throughput benchmarks")
	Parse()
}

func main() {
	log := logger.New(logger.FromEnv(config.New(logger.New(logger.Options{Level: "warn"}))))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if pSweep > 0 {
		source, err := os.ReadFile(pKernel)
		if err != nil {
			log.Fatal().Err(err).Str("kernel", pKernel).Msg("failed to read kernel source")
		}
		Printf("Sweeping d = 1..%d with batches of %d.\n\n", pSweep, pBatch)
		open := func() (accel.Device, error) { return accel.Open(pDevice) }
		if err = sweep(ctx, os.Stdout, open, source, pBatch, pSweep, log); err != nil {
			log.Fatal().Err(err).Msg("sweep failed")
		}
		return
	}

	Printf("Running Statz on %d CPUs!\n\n", runtime.NumCPU())
	t := time.Now()
	for _, name := range kernels.Names() {
		fn, _ := kernels.Lookup(name)
		seq, rnd := monobit(fn, 1)
		Printf("%-9s Monobit test:  sequential %5.3f%%  random %5.3f%%\n", name, seq, rnd)
	}
	Println(" ============================================= ")
	if !pSkipBench {
		for _, name := range kernels.Names() {
			if err := benchAlg(name); err != nil {
				log.Fatal().Err(err).Msg("benchmark failed")
			}
		}
	}
	Printf("Finished in %s on %s/%s.\n", time.Since(t).String(), runtime.GOOS, runtime.GOARCH)
}
