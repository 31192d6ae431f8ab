// Command islgate scores verification results into a trust verdict and
// authenticates exported proof bundles. Exit code 0 means the gate passed,
// 1 means it blocked (or a bundle failed verification).
package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "score":
		return runScore(args[1:])
	case "verify-bundle":
		return runVerifyBundle(args[1:])
	case "history":
		return runHistory(args[1:])
	case "export":
		return runExport(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "islgate: unknown command %q\n\n", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: islgate <command> [flags]

Commands:
  score          compute a trust score and verdict from clause results
  verify-bundle  authenticate a proof bundle against its manifest
  history        show recorded trust scores and the trend
  export         export a signed proof bundle

Run 'islgate <command> -h' for command flags.
`)
}

// newLogger builds the process logger. Verbose lowers the level to Debug.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
