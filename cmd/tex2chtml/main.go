package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	tex2chtml "github.com/alnah/go-tex2chtml"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches args (including the program name) and returns the
// process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	if isCommand(args[1]) {
		switch args[1] {
		case "version":
			fmt.Fprintf(env.Stdout, "tex2chtml %s\n", Version)
			return ExitSuccess
		case "help":
			return runHelp(args[2:], env)
		case "doctor":
			return runDoctorCmd(args[2:], env)
		}
	}

	return runConvertCmd(args[1:], env)
}

// isCommand reports whether arg names a subcommand rather than an input file.
// A file named like a command is converted with "tex2chtml -- help" or
// "tex2chtml ./help".
func isCommand(arg string) bool {
	switch arg {
	case "version", "help", "doctor":
		return true
	}
	return false
}

// runConvertCmd parses convert flags, typesets the single input file and
// maps the outcome to an exit code.
func runConvertCmd(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, env.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		// parseConvertFlags already printed usage.
		return ExitSuccess
	}
	if err != nil {
		newLogger(env.Stderr, false, false).Error(err)
		printConvertUsage(env.Stderr)
		return ExitUsage
	}
	log := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	if len(positional) != 1 {
		log.Errorf("expected exactly one input file, got %d", len(positional))
		printConvertUsage(env.Stderr)
		return ExitUsage
	}

	setMaxProcs(log)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err = runConvert(ctx, positional[0], flags, env, log)
	if err != nil && !errors.Is(err, tex2chtml.ErrTeX) {
		log.Error(formatError(err))
	}
	return exitCodeFor(err)
}

// setMaxProcs configures GOMAXPROCS for container CPU quotas. The change
// is logged at debug level.
func setMaxProcs(log logrus.FieldLogger) {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))
}
