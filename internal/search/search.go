// Package search wires the pipeline's leaf packages into the single
// orchestrated call described in §2: file listing, query planning,
// scanning, AST filtering (including the filename-matching union, which
// has no leaf package of its own since it needs both the Hit Map and the
// file list), block extraction, ranking, session-cache filtering, and
// limiting/merging.
package search

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/blocksearch/blocksearch/internal/blocks"
	"github.com/blocksearch/blocksearch/internal/debug"
	"github.com/blocksearch/blocksearch/internal/filelist"
	"github.com/blocksearch/blocksearch/internal/limiter"
	"github.com/blocksearch/blocksearch/internal/queryplan"
	"github.com/blocksearch/blocksearch/internal/rank"
	"github.com/blocksearch/blocksearch/internal/scanner"
	"github.com/blocksearch/blocksearch/internal/searchtypes"
	"github.com/blocksearch/blocksearch/internal/sessioncache"
	"github.com/blocksearch/blocksearch/internal/structure"
)

// Options is the Go expression of the CLI's inputs table (§6). It never
// reads flags or the environment itself; cmd/blocksearch is responsible
// for populating it, including PROBE_SESSION_ID fallback for Session.
type Options struct {
	Pattern string   // required query string
	Paths   []string // candidate roots; only the first is searched

	FilesOnly        bool
	Ignore           []string
	ExcludeFilenames bool

	Reranker        string // "hybrid" (default), "tfidf", "bm25", "hybrid2"
	FrequencySearch bool   // stopword/stem processing; CLI defaults this true unless Exact
	Exact           bool

	MaxResults int
	MaxBytes   int
	MaxTokens  int

	AllowTests     bool
	NoMerge        bool
	MergeThreshold int

	DryRun bool

	// Session controls session-cache use: nil means no caching, a
	// pointer to "" means generate a new id, a pointer to a non-empty
	// string pins that id.
	Session *string
}

// Engine holds the process-wide state that must outlive a single Search
// call: the memoized file list and the structural-parser registry, never
// package-level globals (§9).
type Engine struct {
	files     *filelist.Cache
	registry  *structure.Registry
	extractor *blocks.Extractor
}

// NewEngine builds an Engine with a fresh file list cache and a registry
// covering every language adapter the module ships.
func NewEngine() *Engine {
	registry := structure.NewRegistry()
	return &Engine{
		files:     filelist.New(),
		registry:  registry,
		extractor: blocks.New(registry),
	}
}

// Search runs the full pipeline in §2's data-flow order and returns a
// SearchOutput. Errors returned are QueryParseError or a listing/scan
// FatalError; per-file and per-cache failures are recovered internally
// and only logged via internal/debug.
func (e *Engine) Search(ctx context.Context, opts Options) (searchtypes.SearchOutput, error) {
	root := "."
	if len(opts.Paths) > 0 && opts.Paths[0] != "" {
		root = opts.Paths[0]
	}

	cache := e.openSessionCache(opts)

	debug.Stage("filelist", "root="+root)
	files, err := e.files.List(root, opts.AllowTests, opts.Ignore)
	if err != nil {
		return searchtypes.SearchOutput{}, err
	}

	exactMode := opts.Exact || !opts.FrequencySearch
	debug.Stage("queryplan", opts.Pattern)
	plan, err := queryplan.Parse(opts.Pattern, exactMode)
	if err != nil {
		return searchtypes.SearchOutput{}, err
	}

	patterns := queryplan.BuildPatterns(plan)
	if len(patterns) == 0 {
		return searchtypes.SearchOutput{}, nil
	}

	sc, err := scanner.New(patterns)
	if err != nil {
		return searchtypes.SearchOutput{}, err
	}

	debug.Stage("scanner", "files="+strconv.Itoa(len(files)))
	hits, _, err := sc.Scan(ctx, files)
	if err != nil {
		return searchtypes.SearchOutput{}, err
	}

	filenameTerms := make(map[string]map[int]bool)
	if !opts.ExcludeFilenames {
		compiled := compileFilenamePatterns(patterns)
		for _, f := range files {
			if m := matchFilenameTerms(compiled, filepath.Base(f)); len(m) > 0 {
				filenameTerms[f] = m
			}
		}
	}

	debug.Stage("astfilter", "")
	filtered := e.filterByAST(plan, hits, filenameTerms)

	var cacheSkippedLines int
	if cache != nil {
		cacheSkippedLines = cache.FilterMatchedLines(hits)
	}

	if ctx.Err() != nil {
		return searchtypes.SearchOutput{}, ctx.Err()
	}

	debug.Stage("blocks", "candidates="+strconv.Itoa(len(filtered)))
	allBlocks, fileStats := e.extractAll(ctx, filtered, hits, plan, filenameTerms)
	if ctx.Err() != nil {
		return searchtypes.SearchOutput{}, ctx.Err()
	}

	reranker := rank.Reranker(opts.Reranker)
	if reranker == "" {
		reranker = rank.Hybrid
	}
	debug.Stage("rank", string(reranker))
	rankings := rank.Rank(allBlocks, reranker, fileStats)

	results := make([]searchtypes.Result, 0, len(allBlocks))
	for i := range allBlocks {
		b := allBlocks[i]
		r := rankings[b.ID]
		if r == nil {
			r = &searchtypes.Ranking{BlockID: b.ID}
		}
		results = append(results, searchtypes.Result{Block: b, Ranking: *r})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Rank < results[j].Rank })

	var cachedSkipped int
	if cache != nil {
		results, cachedSkipped = filterCachedResults(cache, results)
	}

	debug.Stage("limiter", "")
	out := limiter.ApplyLimits(results, opts.MaxResults, opts.MaxBytes, opts.MaxTokens)
	out.CachedBlocksSkipped = cachedSkipped + cacheSkippedLines

	if !opts.NoMerge {
		threshold := opts.MergeThreshold
		if threshold <= 0 {
			threshold = limiter.DefaultMergeThreshold
		}
		debug.Stage("merge", "")
		merged, err := limiter.MergeRankedBlocks(out.Results, threshold, readFileLines)
		if err != nil {
			debug.Printf("search: merge failed, returning unmerged results: %v", err)
		} else {
			sort.SliceStable(merged, func(i, j int) bool { return merged[i].Rank < merged[j].Rank })
			out.Results = merged
		}
	}

	if cache != nil {
		toAdd := make([]searchtypes.Block, len(out.Results))
		for i, r := range out.Results {
			toAdd[i] = r.Block
		}
		if err := cache.AddResults(toAdd); err != nil {
			debug.Printf("search: failed to persist session cache: %v", err)
		}
	}

	if opts.FilesOnly {
		out.Results = collapseFilesOnly(out.Results)
	}

	return out, nil
}

func (e *Engine) openSessionCache(opts Options) *sessioncache.Cache {
	var flag string
	switch {
	case opts.Session != nil:
		flag = *opts.Session
	case os.Getenv("PROBE_SESSION_ID") != "":
		flag = os.Getenv("PROBE_SESSION_ID")
	default:
		return nil
	}

	c, _, err := sessioncache.New(flag)
	if err != nil {
		debug.Printf("search: session cache unavailable: %v", err)
		return nil
	}
	return c
}

// filterByAST implements §4.5: union filename-matched term sets into each
// file's matched-term set, evaluate the AST, and drop files (from both hits
// and filenameTerms) that fail. Returns the set of surviving file paths.
func (e *Engine) filterByAST(plan *searchtypes.QueryPlan, hits searchtypes.HitMap, filenameTerms map[string]map[int]bool) map[string]bool {
	candidates := make(map[string]bool)
	for f := range hits {
		candidates[f] = true
	}
	for f := range filenameTerms {
		candidates[f] = true
	}

	filtered := make(map[string]bool, len(candidates))
	for f := range candidates {
		matched := make(map[int]bool)
		if fh, ok := hits[f]; ok {
			for idx := range fh.MatchedTerms() {
				matched[idx] = true
			}
		}
		for idx := range filenameTerms[f] {
			matched[idx] = true
		}
		if plan.AST.Evaluate(matched) {
			filtered[f] = true
		} else {
			delete(hits, f)
			delete(filenameTerms, f)
		}
	}
	return filtered
}

func (e *Engine) extractAll(ctx context.Context, filtered map[string]bool, hits searchtypes.HitMap, plan *searchtypes.QueryPlan, filenameTerms map[string]map[int]bool) ([]searchtypes.Block, map[string]searchtypes.FileStats) {
	ordered := make([]string, 0, len(filtered))
	for f := range filtered {
		ordered = append(ordered, f)
	}
	sort.Strings(ordered)

	var allBlocks []searchtypes.Block
	fileStats := make(map[string]searchtypes.FileStats, len(ordered))

	for _, f := range ordered {
		if ctx.Err() != nil {
			return allBlocks, fileStats
		}
		fh := hits[f]
		if fh == nil {
			fh = searchtypes.NewFileHits()
		}
		fe, err := e.extractor.ExtractFile(f, fh, plan, filenameTerms[f])
		if err != nil {
			debug.Printf("search: skipping %s: %v", f, err)
			continue
		}
		allBlocks = append(allBlocks, fe.Blocks...)
		fileStats[f] = searchtypes.FileStats{UniqueTerms: fe.FileUniqueTerms, TotalMatches: fe.FileTotalMatches}
	}

	return allBlocks, fileStats
}

func filterCachedResults(cache *sessioncache.Cache, results []searchtypes.Result) ([]searchtypes.Result, int) {
	blocksOnly := make([]searchtypes.Block, len(results))
	for i, r := range results {
		blocksOnly[i] = r.Block
	}
	kept, skipped := cache.FilterResults(blocksOnly)

	keepSet := make(map[string]bool, len(kept))
	for _, b := range kept {
		keepSet[b.ID] = true
	}

	filtered := results[:0]
	for _, r := range results {
		if keepSet[r.ID] {
			filtered = append(filtered, r)
		}
	}
	return filtered, skipped
}

// collapseFilesOnly reduces results to the single best-ranked row per file
// with its code body elided, per §6's filesOnly contract. The full pipeline
// still ran; this is a result-shaping step applied after cache insertion so
// the cache still records the actual returned ranges.
func collapseFilesOnly(results []searchtypes.Result) []searchtypes.Result {
	seen := make(map[string]bool, len(results))
	out := make([]searchtypes.Result, 0, len(results))
	for _, r := range results {
		if seen[r.File] {
			continue
		}
		seen[r.File] = true
		r.Code = ""
		r.TokenizedContent = nil
		out = append(out, r)
	}
	return out
}

type filenamePattern struct {
	re    *regexp.Regexp
	terms map[int]bool
}

func compileFilenamePatterns(patterns []searchtypes.StructuredPattern) []filenamePattern {
	out := make([]filenamePattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Source)
		if err != nil {
			continue
		}
		out = append(out, filenamePattern{re: re, terms: p.Terms})
	}
	return out
}

// matchFilenameTerms reports which term indices match against filename,
// the filename-matching half of §4.5.
func matchFilenameTerms(compiled []filenamePattern, filename string) map[int]bool {
	var matched map[int]bool
	for _, fp := range compiled {
		if fp.re.MatchString(filename) {
			if matched == nil {
				matched = make(map[int]bool)
			}
			for idx := range fp.terms {
				matched[idx] = true
			}
		}
	}
	return matched
}

func readFileLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(content), "\n"), nil
}

