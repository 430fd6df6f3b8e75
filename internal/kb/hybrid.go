package kb

import (
	"math"
	"sort"
)

// resolveOptions applies defaults and normalizes the weights so they sum to 1.
func resolveOptions(opts SearchOptions) SearchOptions {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.TopK > MaxTopK {
		opts.TopK = MaxTopK
	}
	if !validWeight(opts.VectorWeight) {
		opts.VectorWeight = 0
	}
	if !validWeight(opts.KeywordWeight) {
		opts.KeywordWeight = 0
	}
	if opts.VectorWeight == 0 && opts.KeywordWeight == 0 {
		opts.VectorWeight = DefaultVectorWeight
		opts.KeywordWeight = DefaultKeywordWeight
	}
	// Scale by the larger weight first so the sum cannot overflow.
	top := math.Max(opts.VectorWeight, opts.KeywordWeight)
	v, k := opts.VectorWeight/top, opts.KeywordWeight/top
	opts.VectorWeight = v / (v + k)
	opts.KeywordWeight = k / (v + k)

	if !validWeight(opts.MinScore) {
		opts.MinScore = DefaultMinScore
	}
	if floor := 4 * opts.TopK; opts.CandidateLimit < floor {
		opts.CandidateLimit = floor
	}
	if opts.CandidateLimit < minCandidateLimit {
		opts.CandidateLimit = minCandidateLimit
	}
	return opts
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsNaN(w) && !math.IsInf(w, 0)
}

// vectorScore maps a cosine similarity onto [0,1].
func vectorScore(cos float64) float64 {
	return clamp01((1 + cos) / 2)
}

// normalizeRanks divides every keyword rank by the largest one.
func normalizeRanks(cands []Candidate) map[string]float64 {
	out := make(map[string]float64, len(cands))
	var max float64
	for _, c := range cands {
		if c.Score > max {
			max = c.Score
		}
	}
	for _, c := range cands {
		if max <= 0 || c.Score <= 0 {
			out[c.Chunk.ID] = 0
			continue
		}
		out[c.Chunk.ID] = clamp01(c.Score / max)
	}
	return out
}

// fuse merges both legs by chunk ID. A nil slice means the leg did not run;
// its weight is then handed to the other leg.
func fuse(vector, keyword []Candidate, opts SearchOptions) []ScoredChunk {
	wv, wk := opts.VectorWeight, opts.KeywordWeight
	switch {
	case vector == nil && keyword == nil:
		return []ScoredChunk{}
	case vector == nil:
		wv, wk = 0, 1
	case keyword == nil:
		wv, wk = 1, 0
	}

	merged := make(map[string]*ScoredChunk, len(vector)+len(keyword))
	order := make([]string, 0, len(vector)+len(keyword))
	get := func(c Chunk) *ScoredChunk {
		if sc, ok := merged[c.ID]; ok {
			return sc
		}
		sc := &ScoredChunk{Chunk: c}
		merged[c.ID] = sc
		order = append(order, c.ID)
		return sc
	}

	for _, c := range vector {
		sc := get(c.Chunk)
		if v := vectorScore(c.Score); v > sc.VectorScore {
			sc.VectorScore = v
		}
		addLeg(sc, LegVector)
	}
	ranks := normalizeRanks(keyword)
	for _, c := range keyword {
		sc := get(c.Chunk)
		if k := ranks[c.Chunk.ID]; k > sc.KeywordScore {
			sc.KeywordScore = k
		}
		addLeg(sc, LegKeyword)
	}

	out := make([]ScoredChunk, 0, len(order))
	for _, id := range order {
		sc := merged[id]
		sc.Score = clamp01(wv*sc.VectorScore + wk*sc.KeywordScore)
		if sc.Score < opts.MinScore {
			continue
		}
		out = append(out, *sc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > opts.TopK {
		out = out[:opts.TopK]
	}
	return out
}

func hasLeg(sc *ScoredChunk, leg string) bool {
	for _, l := range sc.MatchedBy {
		if l == leg {
			return true
		}
	}
	return false
}

func addLeg(sc *ScoredChunk, leg string) {
	if !hasLeg(sc, leg) {
		sc.MatchedBy = append(sc.MatchedBy, leg)
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
