package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/isl-gate/trustcore/pkg/history"
	"github.com/isl-gate/trustcore/pkg/report"
)

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	path := fs.String("path", history.DefaultPath, "history ledger path")
	format := fs.String("format", "text", "output format: text, json")
	limit := fs.Int("limit", 10, "number of entries to show (0 for all)")
	fs.Parse(args)

	ledger, err := history.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}

	h, err := ledger.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}
	trend := history.ComputeTrend(h, 0)

	if report.Format(*format) == report.FormatJSON {
		out, err := report.RenderJSON(struct {
			Entries []history.Entry `json:"entries"`
			Trend   history.Trend   `json:"trend"`
		}{h.Newest(), trend})
		if err != nil {
			fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
			return 1
		}
		fmt.Println(out)
		return 0
	}

	entries := h.Newest()
	if *limit > 0 && len(entries) > *limit {
		entries = entries[:*limit]
	}
	fmt.Printf("Trend: %s (%d entries)\n", trend, len(h.Entries))
	for _, e := range entries {
		line := fmt.Sprintf("%s  score %3d  %-5s  %d pass / %d fail",
			e.Timestamp, e.Score, e.Verdict, e.Counts.Pass, e.Counts.Fail)
		if e.CommitHash != "" {
			line += "  " + e.CommitHash
		}
		fmt.Println(line)
	}
	return 0
}
