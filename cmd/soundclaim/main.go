// Command soundclaim scores an uploaded work against a reference corpus and
// prints a per-reference similarity breakdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/soundclaim/soundclaim/analysis"
	"github.com/soundclaim/soundclaim/analysis/config"
	"github.com/soundclaim/soundclaim/analysis/features"
	"github.com/soundclaim/soundclaim/extract"
	"github.com/soundclaim/soundclaim/logging"
	"github.com/soundclaim/soundclaim/storage"
)

func main() {
	// Optional .env for local overrides; absence is fine
	_ = godotenv.Load()

	var (
		corpusDir = flag.String("corpus", envOr("SOUNDCLAIM_CORPUS", "corpus"), "directory of reference corpus JSON files")
		dbPath    = flag.String("db", os.Getenv("SOUNDCLAIM_DB"), "history database path (empty disables persistence)")
		submitter = flag.String("submitter", envOr("SOUNDCLAIM_SUBMITTER", "anonymous"), "submitter identity for history records")
		timeout   = flag.Duration("timeout", 2*time.Minute, "per-analysis timeout")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <submission-file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	if err := run(flag.Arg(0), *corpusDir, *dbPath, *submitter, *timeout); err != nil {
		logging.Error(err, "analysis aborted")
		os.Exit(1)
	}
}

func run(path, corpusDir, dbPath, submitter string, timeout time.Duration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read submission: %w", err)
	}

	corpus, err := analysis.LoadCorpusDir(corpusDir, extract.NormalizeText)
	if err != nil {
		return err
	}

	analyzer, err := analysis.NewAnalyzer(config.DefaultConfig())
	if err != nil {
		return err
	}

	sub := &features.RawSubmission{
		Filename:  filepath.Base(path),
		Data:      data,
		Submitter: submitter,
		Received:  time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := analyzer.Analyze(ctx, sub, corpus)
	if err != nil {
		return err
	}

	render(report)

	if dbPath != "" {
		store, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		record, err := store.SaveReport(submitter, data, report)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved to history as %s\n", record.ID)
	}

	return nil
}

// render prints a per-reference bar chart with risk band labels
func render(report *analysis.ScoreReport) {
	fmt.Printf("%s (%s)\n", report.Submission, report.Modality)
	fmt.Printf("  max %.2f%%  average %.2f%%\n\n", report.MaxSimilarity, report.AverageSimilarity)

	nameWidth := 0
	for _, item := range report.Items {
		nameWidth = max(nameWidth, len(item.Reference))
	}

	for _, item := range report.Items {
		bar := strings.Repeat("#", int(item.Score/2.5))
		fmt.Printf("  %-*s %6.2f%% %-8s %s\n", nameWidth, item.Reference, item.Score, item.Band, bar)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
