package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/isl-gate/trustcore/pkg/bundle"
	"github.com/isl-gate/trustcore/pkg/report"
)

func runVerifyBundle(args []string) int {
	fs := flag.NewFlagSet("verify-bundle", flag.ExitOnError)
	key := fs.String("key", "", "HMAC secret or ed25519 public key (hex/PEM)")
	keyFile := fs.String("key-file", "", "file containing the key material")
	format := fs.String("format", "text", "output format: text, json, markdown")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: islgate verify-bundle [flags] <bundle-dir-or-archive>")
		return 1
	}
	if !report.ValidFormat(report.Format(*format)) {
		fmt.Fprintf(os.Stderr, "islgate: unknown format %q\n", *format)
		return 1
	}

	credential := *key
	if *keyFile != "" {
		data, err := os.ReadFile(*keyFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "islgate: read key file: %v\n", err)
			return 1
		}
		credential = strings.TrimSpace(string(data))
	}

	verifier := bundle.NewVerifier(bundle.WithLogger(newLogger(*verbose)))
	result, err := verifier.Verify(context.Background(), fs.Arg(0), credential)
	if err != nil {
		// No evidence obtainable: bare error in place of a report.
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}

	out, err := report.RenderBundle(result, report.Format(*format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}
	fmt.Println(out)

	if result.Valid {
		return 0
	}
	return 1
}
