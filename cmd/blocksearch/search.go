package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/blocksearch/blocksearch/internal/debug"
	"github.com/blocksearch/blocksearch/internal/search"
	"github.com/blocksearch/blocksearch/internal/searchtypes"
	"github.com/blocksearch/blocksearch/pkg/pathutil"
)

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: blocksearch [options] <pattern>")
	}
	pattern := c.Args().First()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	var session *string
	if c.IsSet("session") {
		s := c.String("session")
		session = &s
	} else if env := os.Getenv("PROBE_SESSION_ID"); env != "" {
		session = &env
	}

	opts := search.Options{
		Pattern:          pattern,
		Paths:            []string{cfg.Project.Root},
		FilesOnly:        c.Bool("files-only"),
		Ignore:           c.StringSlice("ignore"),
		ExcludeFilenames: c.Bool("exclude-filenames"),
		Reranker:         cfg.Search.Reranker,
		FrequencySearch:  !cfg.Search.Exact,
		Exact:            cfg.Search.Exact,
		MaxResults:       cfg.Search.MaxResults,
		MaxBytes:         cfg.Search.MaxBytes,
		MaxTokens:        cfg.Search.MaxTokens,
		AllowTests:       cfg.Search.AllowTests,
		NoMerge:          c.Bool("no-merge"),
		MergeThreshold:   cfg.Search.MergeThreshold,
		DryRun:           c.Bool("dry-run"),
		Session:          session,
	}

	start := time.Now()
	engine := search.NewEngine()
	out, err := engine.Search(c.Context, opts)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out.Results = pathutil.ToRelativeResults(out.Results, cfg.Project.Root)
	return displayResults(out, opts.DryRun, elapsed)
}

// displayResults prints a plain list of results: output formatting beyond
// this (markdown/json/xml, color, clipboard) is out of scope (§6).
func displayResults(out searchtypes.SearchOutput, dryRun bool, elapsed time.Duration) error {
	fmt.Printf("Found %d results in %.1fms\n\n", len(out.Results), float64(elapsed.Microseconds())/1000.0)

	for _, r := range out.Results {
		fmt.Printf("%s:%d-%d (%s)", r.File, r.StartLine, r.EndLine, r.NodeType)
		if r.MatchedByFilename {
			fmt.Printf(" [matched by filename]")
		}
		if debug.RankingFieldsEnabled() {
			fmt.Printf(" rank=%d score=%.4f tfidf=%.4f bm25=%.4f file_match_rank=%d",
				r.Rank, r.Score, r.TFIDFScore, r.BM25Score, r.FileMatchRank)
		}
		fmt.Println()

		if len(r.MatchedKeywords) > 0 {
			fmt.Printf("  keywords: %s\n", strings.Join(r.MatchedKeywords, ", "))
		}

		if !dryRun {
			printCode(r.Code, r.StartLine)
		}
		fmt.Println()
	}

	if len(out.SkippedFiles) > 0 {
		fmt.Printf("skipped %d file(s) due to limits: %s\n", len(out.SkippedFiles), strings.Join(out.SkippedFiles, ", "))
	}
	if out.CachedBlocksSkipped > 0 {
		fmt.Printf("skipped %d block(s) already returned this session\n", out.CachedBlocksSkipped)
	}

	return nil
}

func printCode(code string, startLine int) {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		fmt.Printf("  %4d | %s\n", startLine+i, line)
	}
}
