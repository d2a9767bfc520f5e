package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/blocksearch/blocksearch/internal/config"
)

// loadConfigWithOverrides loads .blocksearch.kdl from the effective root and
// applies the CLI flags that were explicitly set on top of it.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path %q: %w", root, err)
	}
	root = absRoot
	configPath := c.String("config")
	if c.IsSet("root") && configPath == ".blocksearch.kdl" {
		configPath = filepath.Join(root, ".blocksearch.kdl")
	}

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if c.IsSet("root") {
		cfg.Project.Root = root
	}

	if c.IsSet("max-results") {
		cfg.Search.MaxResults = c.Int("max-results")
	}
	if c.IsSet("max-bytes") {
		cfg.Search.MaxBytes = c.Int("max-bytes")
	}
	if c.IsSet("max-tokens") {
		cfg.Search.MaxTokens = c.Int("max-tokens")
	}
	if c.IsSet("reranker") {
		cfg.Search.Reranker = c.String("reranker")
	}
	if c.IsSet("merge-threshold") {
		cfg.Search.MergeThreshold = c.Int("merge-threshold")
	}
	if c.IsSet("allow-tests") {
		cfg.Search.AllowTests = c.Bool("allow-tests")
	}
	if c.IsSet("exact") {
		cfg.Search.Exact = c.Bool("exact")
	}

	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "blocksearch",
		Usage:                  "code-aware block search",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file path", Value: ".blocksearch.kdl"},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root directory (overrides config)"},
			&cli.BoolFlag{Name: "files-only", Usage: "return one result per matching file with empty body"},
			&cli.StringSliceFlag{Name: "ignore", Usage: "additional glob patterns to ignore"},
			&cli.BoolFlag{Name: "exclude-filenames", Usage: "disable filename-based matching"},
			&cli.StringFlag{Name: "reranker", Usage: "hybrid (default), tfidf, bm25, hybrid2"},
			&cli.BoolFlag{Name: "exact", Usage: "verbatim matching, disables stemming/stopwords"},
			&cli.IntFlag{Name: "max-results", Usage: "cap on number of results"},
			&cli.IntFlag{Name: "max-bytes", Usage: "cap on cumulative result bytes"},
			&cli.IntFlag{Name: "max-tokens", Usage: "cap on cumulative estimated tokens"},
			&cli.BoolFlag{Name: "allow-tests", Usage: "include test files"},
			&cli.BoolFlag{Name: "no-merge", Usage: "disable adjacent-block merging"},
			&cli.IntFlag{Name: "merge-threshold", Usage: "override the default block-merge gap threshold"},
			&cli.BoolFlag{Name: "dry-run", Usage: "return file/line data only, elide code"},
			&cli.StringFlag{Name: "session", Usage: "session id for cross-invocation dedup; empty generates one"},
		},
		Action: searchCommand,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "blocksearch: %v\n", err)
		os.Exit(1)
	}
}
