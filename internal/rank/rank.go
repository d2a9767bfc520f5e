// Package rank scores candidate blocks with TF-IDF, BM25, and a combined
// reranker, then assigns a total, deterministic order.
package rank

import (
	"math"
	"sort"

	"github.com/blocksearch/blocksearch/internal/searchtypes"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Reranker names the selector used to combine per-block lexical scores.
type Reranker string

const (
	Hybrid  Reranker = "hybrid"
	TFIDF   Reranker = "tfidf"
	BM25    Reranker = "bm25"
	Hybrid2 Reranker = "hybrid2"
)

// Combined reranker weights, applied to rank-normalized TF-IDF, BM25,
// file_match_rank, and block_unique_terms respectively.
const (
	weightTFIDF           = 0.3
	weightBM25            = 0.4
	weightFileMatchRank   = 0.2
	weightBlockUniqueTerm = 0.1
)

// candidate bundles a block with the per-term frequencies the scoring
// formulas need.
type candidate struct {
	block    *searchtypes.Block
	termFreq map[string]int
	length   int
}

// Rank scores blocks and returns Ranking records keyed by BlockID, with Rank
// assigned 1-based by descending final score; ties break by file path then
// start line for determinism (§5). fileStats carries the file-level
// unique/total term counts the Block Extractor computed per file (§4.6),
// keyed by file path; it is used to derive file_match_rank, the cross-file
// component of the hybrid reranker.
func Rank(blocks []searchtypes.Block, reranker Reranker, fileStats map[string]searchtypes.FileStats) map[string]*searchtypes.Ranking {
	n := len(blocks)
	rankings := make(map[string]*searchtypes.Ranking, n)
	if n == 0 {
		return rankings
	}

	cands := make([]*candidate, n)
	df := make(map[string]int)
	for i := range blocks {
		b := &blocks[i]
		tf := make(map[string]int)
		for _, tok := range b.TokenizedContent {
			tf[tok]++
		}
		for tok := range tf {
			df[tok]++
		}
		cands[i] = &candidate{block: b, termFreq: tf, length: len(b.TokenizedContent)}
		r := &searchtypes.Ranking{BlockID: b.ID}
		if fs, ok := fileStats[b.File]; ok {
			r.FileUniqueTerms = fs.UniqueTerms
			r.FileTotalMatches = fs.TotalMatches
		}
		rankings[b.ID] = r
	}

	avgLen := 0.0
	for _, c := range cands {
		avgLen += float64(c.length)
	}
	avgLen /= float64(n)

	for _, c := range cands {
		r := rankings[c.block.ID]
		r.TFIDFScore = tfidfScore(c, df, n)
		r.BM25Score = bm25Score(c, df, n, avgLen)
	}

	assignRank(cands, rankings, func(c *candidate) float64 { return rankings[c.block.ID].TFIDFScore }, func(r *searchtypes.Ranking, rk int) { r.TFIDFRank = rk })
	assignRank(cands, rankings, func(c *candidate) float64 { return rankings[c.block.ID].BM25Score }, func(r *searchtypes.Ranking, rk int) { r.BM25Rank = rk })
	assignRank(cands, rankings, func(c *candidate) float64 { return float64(rankings[c.block.ID].FileTotalMatches) }, func(r *searchtypes.Ranking, rk int) { r.FileMatchRank = rk })
	blockUniqueRank := make(map[string]int, n)
	assignRank(cands, rankings, func(c *candidate) float64 { return float64(c.block.BlockUniqueTerms) }, func(r *searchtypes.Ranking, rk int) { blockUniqueRank[r.BlockID] = rk })

	for _, c := range cands {
		r := rankings[c.block.ID]
		r.NewScore = combinedScore(r, blockUniqueRank[c.block.ID], reranker, n)
	}

	order := make([]*candidate, n)
	copy(order, cands)
	sort.Slice(order, func(i, j int) bool {
		si, sj := rankings[order[i].block.ID].NewScore, rankings[order[j].block.ID].NewScore
		if si != sj {
			return si > sj
		}
		if order[i].block.File != order[j].block.File {
			return order[i].block.File < order[j].block.File
		}
		return order[i].block.StartLine < order[j].block.StartLine
	})
	for i, c := range order {
		r := rankings[c.block.ID]
		r.Rank = i + 1
		r.Score = r.NewScore
	}

	return rankings
}

func tfidfScore(c *candidate, df map[string]int, n int) float64 {
	score := 0.0
	for term, tf := range c.termFreq {
		idf := math.Log(float64(n+1) / float64(df[term]+1))
		score += (1 + math.Log(float64(tf))) * idf
	}
	return score
}

func bm25Score(c *candidate, df map[string]int, n int, avgLen float64) float64 {
	score := 0.0
	for term, tf := range c.termFreq {
		idf := math.Log((float64(n)-float64(df[term])+0.5)/(float64(df[term])+0.5) + 1)
		denom := float64(tf) + bm25K1*(1-bm25B+bm25B*float64(c.length)/avgLen)
		score += idf * (float64(tf) * (bm25K1 + 1)) / denom
	}
	return score
}

// assignRank calls assign with the 1-based rank for each candidate by
// descending scoreOf, best = rank 1, breaking ties by file path then start
// line. Used for the rank-normalization that the combined reranker needs.
func assignRank(cands []*candidate, rankings map[string]*searchtypes.Ranking, scoreOf func(*candidate) float64, assign func(*searchtypes.Ranking, int)) {
	order := make([]*candidate, len(cands))
	copy(order, cands)
	sort.SliceStable(order, func(i, j int) bool {
		si, sj := scoreOf(order[i]), scoreOf(order[j])
		if si != sj {
			return si > sj
		}
		if order[i].block.File != order[j].block.File {
			return order[i].block.File < order[j].block.File
		}
		return order[i].block.StartLine < order[j].block.StartLine
	})
	for i, c := range order {
		assign(rankings[c.block.ID], i+1)
	}
}

// rankScore normalizes a 1-based rank among n candidates into [0,1], 1 = best.
func rankScore(rk, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 1 - float64(rk-1)/float64(n-1)
}

func combinedScore(r *searchtypes.Ranking, blockUniqueRank int, reranker Reranker, n int) float64 {
	switch reranker {
	case TFIDF:
		return r.TFIDFScore
	case BM25:
		return r.BM25Score
	case Hybrid2:
		return rankScore(r.TFIDFRank, n) + rankScore(r.BM25Rank, n)
	default: // Hybrid
		return weightTFIDF*rankScore(r.TFIDFRank, n) +
			weightBM25*rankScore(r.BM25Rank, n) +
			weightFileMatchRank*rankScore(r.FileMatchRank, n) +
			weightBlockUniqueTerm*rankScore(blockUniqueRank, n)
	}
}
