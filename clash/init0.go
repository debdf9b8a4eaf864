package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/p7r0x7/hashclash"
	"github.com/p7r0x7/hashclash/buckets"
	"github.com/p7r0x7/hashclash/internal/config"
	"github.com/p7r0x7/hashclash/internal/logger"
	"github.com/rs/zerolog"
	. "github.com/spf13/pflag"
)

var pNoCodesDefault = false
var yell, purp, und, zero = "\033[33m", "\033[35m", "\033[4m", "\033[0m"

var errUsage = errors.New("invalid arguments")

type options struct {
	width     uint
	batch     int
	buckets   int
	kernel    string
	device    string
	maxIter   uint64
	logLevel  string
	logFormat string
	help      bool
	quiet     bool
	noCodes   bool
}

/* Formatting codes are decided before flags are parsed so that the help menu renders correctly. */
func init() { prescan(os.Args[1:]) }

func prescan(args []string) {
	for _, arg := range args {
		switch arg {
		case "--quiet", "--quiet=true", "--no-codes", "--no-codes=true":
			plain()
		}
	}
}

func plain() { yell, purp, und, zero = "", "", "", "" }

// parse reads flags and the optional bit width from args. Defaults come from HASHCLASH_*
// variables through conf.
func parse(args []string, conf config.Conf) (options, *FlagSet, error) {
	var o options
	fs := NewFlagSet("clash", ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVarP(&o.help, "help", "h", false,
		purp+"print this help menu"+zero+n)

	fs.IntVar(&o.batch, "batch", conf.MayInt("BATCH", hashclash.DefaultBatchSize),
		purp+"candidates evaluated per dispatch"+zero)

	fs.IntVar(&o.buckets, "buckets", conf.MayInt("BUCKETS", buckets.DefaultCount),
		purp+"size of the reserved bucket index"+zero)

	fs.StringVar(&o.device, "device", conf.MayString("DEVICE", ""),
		purp+"accelerator platform to use"+zero+" (default first available)")

	fs.StringVar(&o.kernel, "kernel", conf.MayString("KERNEL", "include/hash.cl"),
		purp+"path of the kernel source"+zero)

	fs.StringVar(&o.logFormat, "log-format", conf.MayString("LOG_FORMAT", "console"),
		purp+"console or json"+zero)

	fs.StringVar(&o.logLevel, "log-level", conf.MayString("LOG_LEVEL", "info"),
		purp+"trace, debug, info, warn or error"+zero)

	fs.Uint64Var(&o.maxIter, "max-iterations", conf.MayUint("MAX_ITERATIONS", 0),
		purp+"stop after this many batches"+zero+" (0 means never)")

	fs.BoolVar(&o.noCodes, "no-codes", conf.MayBool("NO_CODES", pNoCodesDefault),
		purp+"print to console w/o formatting codes"+zero)

	fs.BoolVar(&o.quiet, "quiet", conf.MayBool("QUIET", false),
		purp+"log only warnings and errors"+zero+" (enables --no-codes)")

	/* Order flags alphabetically except for help, which is hoisted to the top. */
	fs.SortFlags = false
	if err := fs.Parse(args); err != nil {
		return o, fs, fmt.Errorf("%w: %v", errUsage, err)
	}
	if o.help {
		return o, fs, nil
	}

	o.width = hashclash.DefaultWidth
	switch fs.NArg() {
	case 0:
	case 1:
		d, err := parseWidth(fs.Arg(0))
		if err != nil {
			return o, fs, err
		}
		o.width = d
	default:
		return o, fs, fmt.Errorf("%w: expected at most one bit width, got %d arguments", errUsage, fs.NArg())
	}
	if o.batch <= 0 {
		return o, fs, fmt.Errorf("%w: batch size must be positive, got %d", errUsage, o.batch)
	}
	if o.buckets <= 0 {
		return o, fs, fmt.Errorf("%w: bucket count must be positive, got %d", errUsage, o.buckets)
	}

	if o.quiet {
		o.noCodes = true
		if logger.ParseLevel(o.logLevel) < zerolog.WarnLevel {
			o.logLevel = "warn"
		}
	}
	return o, fs, nil
}

// parseWidth accepts a decimal bit width from 0 to hashclash.MaxWidth.
func parseWidth(s string) (uint, error) {
	d, err := strconv.ParseUint(s, 10, 64)
	if err != nil || d > hashclash.MaxWidth {
		return 0, fmt.Errorf("%w: bit width %q is not an integer from 0 to %d", errUsage, s, hashclash.MaxWidth)
	}
	return uint(d), nil
}
