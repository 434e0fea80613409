package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	nb2pdf "github.com/alnah/go-nb2pdf"
	"github.com/alnah/go-nb2pdf/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches a command line and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) > 0 && args[0] == "doctor" {
		return runDoctorCmd(args[1:], env)
	}

	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	if flags.version {
		fmt.Fprintf(env.Stdout, "nb2pdf %s\n", Version)
		return ExitSuccess
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	if env.AdjustProcs {
		setMaxProcs(logger)
	}

	if err := runConvert(ctx, positional, flags, env, logger); err != nil {
		fmt.Fprintln(env.Stderr, errorWithHint(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(logger *log.Logger) {
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debugf(format, args...)
	}))
}

// errorWithHint appends an actionable hint for well-known failures.
func errorWithHint(err error) string {
	msg := err.Error()
	switch {
	case errors.Is(err, nb2pdf.ErrBrowserConnect):
		return msg + hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return msg + hints.ForTimeout()
	case errors.Is(err, nb2pdf.ErrNotebookLoad):
		return msg + hints.ForInvalidNotebook()
	case errors.Is(err, ErrCreateOutputDir):
		return msg + hints.ForOutputDirectory()
	}
	return msg
}
