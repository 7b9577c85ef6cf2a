package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/ssdc/internal/signature"
)

// exactScorer scores 100 for identical Raw, else a fixed score, never
// rejecting. Used so match-engine tests are independent of any
// particular similarity algorithm's numeric output.
type exactScorer struct {
	fixed int
}

func (s exactScorer) Compare(a, b *signature.Signature) (int, error) {
	if a.Raw == b.Raw {
		return 100, nil
	}
	return s.fixed, nil
}

func sig(id signature.ID, s1, s2, matchFile string) *signature.Signature {
	return &signature.Signature{
		ID:        id,
		S1:        s1,
		S2:        s2,
		Raw:       "3:" + s1 + ":" + s2,
		MatchFile: matchFile,
	}
}

func TestEngine_TrivialIdentity(t *testing.T) {
	e := New(Config{Threshold: 0}, exactScorer{fixed: 0}, nil)
	known := sig(1, "abcdefgh", "ijklmnop", "")
	e.Add(known)

	query := sig(2, "abcdefgh", "ijklmnop", "")
	var got []Match
	e.CompareAgainstKnown(query, func(m Match) { got = append(got, m) })

	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Score)
}

func TestEngine_PrettySelfSuppression(t *testing.T) {
	e := New(Config{Threshold: 0, Pretty: true}, exactScorer{fixed: 0}, nil)
	known := sig(1, "abcdefgh", "ijklmnop", "")
	e.Add(known)

	query := sig(1, "abcdefgh", "ijklmnop", "")
	var got []Match
	e.CompareAgainstKnown(query, func(m Match) { got = append(got, m) })

	assert.Empty(t, got, "self-match should be suppressed")
}

func TestEngine_CrossCorpusSelfMatch(t *testing.T) {
	e := New(Config{Threshold: 0, Pretty: true}, exactScorer{fixed: 0}, nil)
	a := sig(1, "abcdefgh", "ijklmnop", "known_a.txt")
	b := sig(2, "abcdefgh", "ijklmnop", "known_b.txt")
	e.Add(a)
	e.Add(b)

	query := sig(1, "abcdefgh", "ijklmnop", "known_a.txt")
	var got []Match
	e.CompareAgainstKnown(query, func(m Match) { got = append(got, m) })

	require.Len(t, got, 1, "expected exactly the cross-corpus peer")
	assert.Equal(t, "known_b.txt", got[0].Candidate.MatchFile)
}

func TestEngine_ThresholdMonotonicity(t *testing.T) {
	lowThresh := New(Config{Threshold: 10}, exactScorer{fixed: 50}, nil)
	highThresh := New(Config{Threshold: 60}, exactScorer{fixed: 50}, nil)

	known := sig(1, "abcdefgh", "ijklmnop", "")
	lowThresh.Add(known)
	highThresh.Add(known)

	query := sig(2, "abcdefgh", "ijklmnop", "")

	var lowMatches, highMatches []Match
	lowThresh.CompareAgainstKnown(query, func(m Match) { lowMatches = append(lowMatches, m) })
	highThresh.CompareAgainstKnown(query, func(m Match) { highMatches = append(highMatches, m) })

	assert.GreaterOrEqual(t, len(lowMatches), len(highMatches), "lower threshold should not produce fewer matches")
	assert.Empty(t, highMatches, "score 50 should not clear threshold 60")
	require.Len(t, lowMatches, 1, "score 50 should clear threshold 10")
}

func TestEngine_ShowAllBypassesThreshold(t *testing.T) {
	e := New(Config{Threshold: 90, DisplayAll: true}, exactScorer{fixed: 1}, nil)
	known := sig(1, "abcdefgh", "ijklmnop", "")
	e.Add(known)

	query := sig(2, "abcdefgh", "ijklmnop", "")
	var got []Match
	e.CompareAgainstKnown(query, func(m Match) { got = append(got, m) })

	require.Len(t, got, 1, "DisplayAll should bypass threshold filtering")
}

func TestEngine_ClusterModeLinksMatches(t *testing.T) {
	e := New(Config{Threshold: 0, Cluster: true}, exactScorer{fixed: 50}, nil)
	a := sig(1, "abcdefgh", "ijklmnop", "")
	e.AddAndCompare(a, nil)
	b := sig(2, "abcdefgh", "ijklmnop", "")
	e.AddAndCompare(b, nil)

	require.Equal(t, 1, e.Cluster().Len(), "want 1 cluster after a linking match")
}

func TestEngine_EmptyComponentsDoNotCrash(t *testing.T) {
	e := New(Config{Threshold: 0}, exactScorer{fixed: 0}, nil)
	known := sig(1, "", "", "")
	e.Add(known)

	query := sig(2, "", "", "")
	e.CompareAgainstKnown(query, func(m Match) {})
}
