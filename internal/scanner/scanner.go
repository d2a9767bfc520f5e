// Package scanner builds one combined regex over the query's structured
// pattern set and streams candidate files to produce a Hit Map.
package scanner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/blocksearch/blocksearch/internal/debug"
	errs "github.com/blocksearch/blocksearch/internal/errors"
	"github.com/blocksearch/blocksearch/internal/searchtypes"
)


// maxLineBytes is the per-line skip threshold (§4.4): a line longer than
// this is skipped, not the whole file. bufio.Scanner's default token buffer
// (64KB) is left untouched so an over-length line doesn't trip ErrTooLong
// and discard every hit already found in the file.
const maxLineBytes = 2000

// Scanner holds the compiled pattern set for one invocation.
type Scanner struct {
	combined *regexp.Regexp
	subs     []*regexp.Regexp // one per StructuredPattern, same order
	patterns []searchtypes.StructuredPattern
	workers  int
}

// New compiles the combined alternation regex plus one regex per individual
// pattern, once per invocation, as §4.4 requires. The combined regex is
// used as a cheap per-line prefilter; the per-pattern regexes determine
// exactly which patterns participated on a matching line. Testing every
// pattern independently against the line (rather than trusting which single
// alternation branch an engine's submatch machinery happened to pick) is
// what gives the "all participating groups recorded, not just the first"
// stability guarantee: two patterns that both match the same line are both
// recorded regardless of alternation precedence.
func New(patterns []searchtypes.StructuredPattern) (*Scanner, error) {
	if len(patterns) == 0 {
		return nil, errs.NewFatalError("no patterns to scan", nil)
	}

	combinedSrc := "(?i)"
	subs := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		if i > 0 {
			combinedSrc += "|"
		}
		combinedSrc += "(" + p.Source + ")"

		sub, err := regexp.Compile("(?i)" + p.Source)
		if err != nil {
			return nil, errs.NewFatalError(fmt.Sprintf("compiling pattern %d", i), err)
		}
		subs[i] = sub
	}

	combined, err := regexp.Compile(combinedSrc)
	if err != nil {
		return nil, errs.NewFatalError("compiling combined scan regex", err)
	}

	return &Scanner{
		combined: combined,
		subs:     subs,
		patterns: patterns,
		workers:  runtime.GOMAXPROCS(0),
	}, nil
}

// Scan streams every file in files, recording a Hit Map entry per file with
// at least one matching line. Files are processed on a bounded worker pool;
// ctx is checked between files for cooperative cancellation (§5).
func (s *Scanner) Scan(ctx context.Context, files []string) (searchtypes.HitMap, []string, error) {
	hitMap := make(searchtypes.HitMap)
	var skipped []string
	var mu sync.Mutex

	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			defer sem.Release(1)

			hits, err := s.scanFile(file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				debug.Printf("scanner: skipping %s: %v", file, err)
				skipped = append(skipped, file)
				return
			}
			if hits != nil && !hits.Empty() {
				hitMap[file] = hits
			}
		}(file)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return searchtypes.NewHitMap(), nil, ctx.Err()
	}

	return hitMap, skipped, nil
}

func (s *Scanner) scanFile(path string) (*searchtypes.FileHits, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIoError(path, err)
	}
	defer f.Close()

	hits := searchtypes.NewFileHits()
	sc := bufio.NewScanner(f)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.ToValidUTF8(sc.Text(), "�")
		if len(line) > maxLineBytes {
			continue
		}
		if !s.combined.MatchString(line) {
			continue
		}
		for i, sub := range s.subs {
			if sub.MatchString(line) {
				for termIdx := range s.patterns[i].Terms {
					hits.Add(termIdx, lineNum)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return hits, errs.NewIoError(path, err)
	}

	return hits, nil
}
