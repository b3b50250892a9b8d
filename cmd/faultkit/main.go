// faultkit damages files in controlled ways and measures how decoders cope.
//
// Usage:
//
//	faultkit delete  IN OUT --loc 0.5 --size 0.2
//	faultkit mutate  IN OUT --loc 0.5 --size 0.2 [--seed N]
//	faultkit replace IN OUT --start 86 --count 12 --with 000000000000
//	faultkit cmp     A B
//	faultkit hash    [--kind string|fast|float|point] [--] VALUE...
//	faultkit prime   N [--next]
//	faultkit rand    [--seed N] [--] START END
//	faultkit campaign --payload FILE [--config campaign.yaml]
//
// Negative numbers must follow "--", or they are read as flags.
//
// delete, mutate, replace, cmp and campaign also accept --store (file,
// file://DIR, s3://BUCKET/PREFIX or minio://ENDPOINT/BUCKET/PREFIX),
// --log-level and --log-format.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// exitError carries a process exit code without an error message.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func (e exitError) ExitCode() int { return e.code }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return exitError{code: 2}
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		if name == "-h" || name == "--help" || name == "help" {
			printUsage(stdout)
			return nil
		}
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd.run(ctx, rest, stdout, stderr)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `faultkit damages files in controlled ways and measures how decoders cope.

Usage:
  faultkit <command> [flags] [args]

Commands:
`)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
	fmt.Fprint(w, `
Run "faultkit <command> --help" for the flags of a command.
`)
}
