package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/isl-gate/trustcore/pkg/clause"
	"github.com/isl-gate/trustcore/pkg/config"
	"github.com/isl-gate/trustcore/pkg/history"
	"github.com/isl-gate/trustcore/pkg/report"
	"github.com/isl-gate/trustcore/pkg/score"
	"github.com/isl-gate/trustcore/pkg/verdict"
)

// rawClause is the upstream engine's loose result shape. Classification
// normalizes it into the closed clause model.
type rawClause struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

func runScore(args []string) int {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	input := fs.String("input", "-", "clause results JSON file ('-' for stdin)")
	configPath := fs.String("config", ".isl-gate/config.yaml", "configuration file")
	weights := fs.String("weights", "", "weight overrides, e.g. preconditions=30,postconditions=25")
	threshold := fs.Int("threshold", -1, "ship threshold override (0-100)")
	format := fs.String("format", "text", "output format: text, json, markdown")
	historyPath := fs.String("history", "", "history ledger path override")
	noHistory := fs.Bool("no-history", false, "do not append this run to the history ledger")
	commit := fs.String("commit", "", "commit hash to record in history")
	strict := fs.Bool("strict", false, "treat WARN as failing")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)

	logger := newLogger(*verbose)
	if !report.ValidFormat(report.Format(*format)) {
		fmt.Fprintf(os.Stderr, "islgate: unknown format %q\n", *format)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}
	if *weights != "" {
		cfg.ApplyWeightOverrides(*weights)
	}
	if *threshold >= 0 && *threshold <= 100 {
		cfg.ShipThreshold = *threshold
	}
	if *historyPath != "" {
		cfg.HistoryPath = *historyPath
	}

	clauses, err := readClauses(*input)
	if err != nil {
		// Could not obtain evidence at all: bare error, no partial report.
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}

	result, err := score.Compute(clauses, cfg.Score)
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}
	decision := verdict.Decide(result.Score, cfg.ShipThreshold, clauses)

	ctx := context.Background()
	ledger, err := history.Open(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}

	var trend history.Trend
	now := time.Now()
	if h, err := ledger.Load(ctx); err == nil && len(h.Entries) > 0 {
		trend = history.ComputeTrend(h, 0)
	}

	trustReport := report.Build(result, decision, cfg.ShipThreshold, trend, now)
	out, err := report.Render(trustReport, report.Format(*format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "islgate: %v\n", err)
		return 1
	}
	fmt.Println(out)

	if !*noHistory {
		entry := trustReport.HistoryEntry(*commit, now)
		if err := ledger.Append(ctx, entry); err != nil {
			// History is advisory; a failed append must not flip the verdict.
			logger.Warn("history append failed", "path", cfg.HistoryPath, "err", err)
		}
	}

	if *strict && decision.Gate == verdict.GateWarn {
		return 1
	}
	return decision.ExitCode()
}

func readClauses(input string) ([]clause.Result, error) {
	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("read clause results: %w", err)
	}

	var raw []rawClause
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse clause results: %w", err)
	}

	clauses := make([]clause.Result, 0, len(raw))
	for _, r := range raw {
		c := clause.Classify(r.ID, r.Category, r.Status, r.Impact)
		c.Description = r.Description
		c.Message = r.Message
		clauses = append(clauses, c)
	}
	return clauses, nil
}
