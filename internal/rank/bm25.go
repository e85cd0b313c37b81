// Package rank implements BM25 Okapi relevance scoring over indexed sections.
package rank

import (
	"math"
	"sort"

	"github.com/docground/docground/internal/index"
)

// BM25 constants. K1 and B are the standard Okapi defaults for short
// documentation sections; DefaultMinScore is the floor below which a match is
// treated as noise and discarded rather than ranked low.
const (
	DefaultK1       = 1.5
	DefaultB        = 0.75
	DefaultMinScore = 0.5
)

// Scorer computes BM25 Okapi scores. The zero value is not usable; construct
// with NewScorer.
type Scorer struct {
	k1       float64
	b        float64
	minScore float64
}

// NewScorer creates a scorer with the given parameters. Non-positive k1 or b
// fall back to the defaults; minScore may legitimately be zero.
func NewScorer(k1, b, minScore float64) *Scorer {
	if k1 <= 0 {
		k1 = DefaultK1
	}
	if b <= 0 {
		b = DefaultB
	}
	return &Scorer{k1: k1, b: b, minScore: minScore}
}

// NewDefaultScorer creates a scorer with the stock constants.
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultK1, DefaultB, DefaultMinScore)
}

// MinScore returns the configured score floor.
func (s *Scorer) MinScore() float64 {
	return s.minScore
}

// Score computes the BM25 score of one section for the given query tokens.
//
// Query tokens must come from the same tokenizer pipeline as indexing.
// Tokens absent from the section contribute zero; tokens absent from the
// whole corpus (df == 0) are still valid and simply get a high idf.
func (s *Scorer) Score(queryTokens []string, sec *index.Section, docFreq map[string]int, totalSections int, avgLen float64) float64 {
	if totalSections == 0 || avgLen <= 0 {
		return 0
	}

	n := float64(totalSections)
	docLen := float64(sec.TermCount)

	var score float64
	for _, tok := range queryTokens {
		tf := float64(sec.Terms[tok])
		if tf == 0 {
			continue
		}
		df := float64(docFreq[tok])

		idf := math.Log((n-df+0.5)/(df+0.5) + 1.0)
		tfNorm := (tf * (s.k1 + 1)) / (tf + s.k1*(1-s.b+s.b*docLen/avgLen))
		score += idf * tfNorm
	}
	return score
}

// Match pairs a section with its BM25 score.
type Match struct {
	Section *index.Section
	Score   float64
}

// Rank scores every section, drops scores below the floor, and returns the
// top K in descending score order. Ties keep corpus scan order (stable sort).
func (s *Scorer) Rank(queryTokens []string, sections []*index.Section, docFreq map[string]int, avgLen float64, topK int) []Match {
	if len(queryTokens) == 0 || len(sections) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(sections))
	for _, sec := range sections {
		score := s.Score(queryTokens, sec, docFreq, len(sections), avgLen)
		if score < s.minScore {
			continue
		}
		matches = append(matches, Match{Section: sec, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
