package main

import (
	"context"
	"errors"
	. "fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/p7r0x7/hashclash"
	"github.com/p7r0x7/hashclash/accel"
	_ "github.com/p7r0x7/hashclash/accel/host"
	"github.com/p7r0x7/hashclash/buckets"
	"github.com/p7r0x7/hashclash/internal/config"
	"github.com/p7r0x7/hashclash/internal/logger"
	"github.com/p7r0x7/vainpath"
	. "github.com/spf13/pflag"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

const n = "\n"
const success, failure, invalid = 0, 1, 2

func main() { os.Exit(program(os.Args[1:], os.Stdout, os.Stderr)) }

// help prints a usage menu. To consistently correctly render this menu in most terminal windows,
// its content should be no wider than 80 columns.
func help(w io.Writer, fs *FlagSet) {
	origin, err := os.Executable()
	if err != nil {
		origin = "clash" /* Default binary name */
	} else {
		origin = filepath.Base(origin)
	}
	name := vainpath.Trim(origin, "…", 12)
	spaces := strings.Repeat(" ", utf8.RuneCountInString(name)+3)
	Fprint(w, yell, "Brute-force search for a collision in a truncated hash.", zero, n+n+
		"Usage:"+n+
		"  ", und, name, zero, " [-h]"+n,
		spaces, "[--batch <int>] [--kernel PATH] [--device NAME] [--quiet|no-codes] [d]"+n+n+
			"Options:"+n)
	fs.SetOutput(w)
	fs.PrintDefaults()
	Fprint(w, n+"d is the number of low hash bits kept (0 to ", hashclash.MaxWidth, ", default ",
		hashclash.DefaultWidth, "). Platforms"+n+"available on this build: ",
		strings.Join(accel.Platforms(), ", "), "."+n)
}

// This program is the command-line front end of the search: it opens an accelerator, builds the
// kernel, and advances through candidates until a batch yields a positive masked hash.
func program(args []string, stdout, stderr io.Writer) int {
	prescan(args)
	boot := logger.New(logger.Options{Level: "warn", NoColor: zero == "", Writer: stderr})
	o, fs, err := parse(args, config.New(boot))
	if err != nil {
		Fprint(stderr, yell, err, zero, n)
		return invalid
	}
	if o.noCodes {
		plain()
	}
	if o.help {
		help(stderr, fs)
		return success
	}

	log := logger.New(logger.Options{
		Level:     o.logLevel,
		Format:    o.logFormat,
		Component: "clash",
		NoColor:   o.noCodes,
		Writer:    stderr,
	})
	kernel := o.kernel
	if !o.noCodes {
		kernel = vainpath.Simplify(kernel)
	}

	source, err := os.ReadFile(o.kernel)
	if err != nil {
		log.Error().Err(err).Str("kernel", kernel).Msg("failed to read kernel source")
		return failure
	}

	/* Reserved for duplicate tracking; the search does not populate it. */
	index, err := buckets.New(o.buckets)
	if err != nil {
		log.Error().Err(err).Msg("failed to allocate bucket index")
		return failure
	}
	defer index.Close()

	dev, err := accel.Open(o.device)
	if err != nil {
		log.Error().Err(err).Str("device", o.device).Msg("failed to select a device")
		return failure
	}
	info := dev.Info()
	log.Debug().Str("device", info.Name).Str("platform", info.Platform).Int("units", info.ComputeUnits).
		Strs("features", info.Features).Msg("device selected")

	sess, err := hashclash.Open(dev, source, o.batch)
	if err != nil {
		ev := log.Error().Err(err).Str("kernel", kernel).Str("status", accel.StatusOf(err).String())
		var be *accel.BuildError
		if errors.As(err, &be) {
			ev = ev.Str("build_log", be.Log)
		}
		ev.Msg("setup failed")
		return failure
	}
	defer sess.Close()

	search, err := hashclash.NewSearch(hashclash.NewDeviceEvaluator(sess),
		hashclash.WithWidth(o.width),
		hashclash.WithBatchSize(o.batch),
		hashclash.WithMaxIterations(o.maxIter),
		hashclash.WithLogger(log),
	)
	if err != nil {
		Fprint(stderr, yell, err, zero, n)
		return invalid
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	out, err := search.Run(ctx)
	elapsed := time.Since(start)
	switch {
	case err == nil:
	case errors.Is(err, hashclash.ErrExhausted):
		log.Warn().Uint64("iterations", out.Iterations).Msg("every candidate has been tried")
	case errors.Is(err, context.Canceled):
		log.Warn().Uint64("iterations", out.Iterations).Stringer("offset", out.Counter).Msg("interrupted")
		return failure
	default:
		log.Error().Err(err).Str("status", accel.StatusOf(err).String()).Msg("search failed")
		return failure
	}

	if out.Found {
		Fprint(stdout, yell, "Collision with ", out.Collision.Hash, zero, " at ",
			humanize.BigComma(out.Collision.Offset.Big()), n)
	}
	Fprintf(stdout, "Total time elapsed: %f"+n, elapsed.Seconds())
	return success
}
