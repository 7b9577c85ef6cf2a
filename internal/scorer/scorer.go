// Package scorer defines the external fuzzy-compare ABI the match engine
// consumes (spec.md §6 "Scorer ABI") and provides one concrete
// implementation. The real ssdeep fuzzy_compare primitive is treated as
// a black box by the specification; EdlibScorer is a stand-in similarity
// function over the raw "blocksize:s1:s2" strings, built the way the
// teacher's fuzzy matcher builds similarity scores: via
// github.com/hbollon/go-edlib.
package scorer

import (
	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/ssdc/internal/signature"
)

// Scorer compares two signatures' raw prefixes and returns a similarity
// in 0..100, or -1 if either input is malformed (spec.md §6).
type Scorer interface {
	Compare(a, b *signature.Signature) (int, error)
}

// EdlibScorer scores two raw signature prefixes with Jaro-Winkler
// similarity via go-edlib, scaled to the 0..100 integer range the
// engine expects. Grounded on the teacher's FuzzyMatcher.jaroWinkler.
type EdlibScorer struct{}

// NewEdlibScorer returns the default concrete Scorer.
func NewEdlibScorer() *EdlibScorer {
	return &EdlibScorer{}
}

// Compare implements Scorer. Two signatures with identical blocksize
// and identical s1/s2 score 100. Either raw prefix being empty is
// malformed input under this implementation and scores -1, matching
// the "-1 on malformed input" contract without claiming to model
// CTPH's actual blocksize-alignment rules (those live in the real
// fuzzy_compare, out of scope per spec.md §1).
func (EdlibScorer) Compare(a, b *signature.Signature) (int, error) {
	if a == nil || b == nil || a.Raw == "" || b.Raw == "" {
		return -1, nil
	}
	if a.Raw == b.Raw {
		return 100, nil
	}

	similarity, err := edlib.StringsSimilarity(a.Raw, b.Raw, edlib.JaroWinkler)
	if err != nil {
		return -1, nil
	}

	score := int(similarity * 100)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
