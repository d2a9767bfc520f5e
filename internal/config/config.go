// Package config loads blocksearch's project-level defaults from an
// optional .blocksearch.kdl file, the same per-project-config idea the
// teacher applies to its own .lci.kdl, adapted to this search engine's
// narrower option set.
package config

// Config holds the defaults a project can override without passing CLI
// flags on every invocation.
type Config struct {
	Project Project
	Search  Search
}

// Project names the root being searched.
type Project struct {
	Root string
}

// Search mirrors the subset of internal/search.Options worth pinning per
// project: result shape and ranking defaults.
type Search struct {
	MaxResults     int
	MaxBytes       int
	MaxTokens      int
	Reranker       string
	MergeThreshold int
	AllowTests     bool
	Exact          bool
}

// Default returns the built-in configuration used when no .blocksearch.kdl
// is present.
func Default() *Config {
	return &Config{
		Search: Search{
			MaxResults:     0,
			MaxBytes:       0,
			MaxTokens:      0,
			Reranker:       "hybrid",
			MergeThreshold: 5,
			AllowTests:     false,
			Exact:          false,
		},
	}
}
