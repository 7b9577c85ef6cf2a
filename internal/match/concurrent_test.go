package match

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/ssdc/internal/signature"
)

func TestEngine_CompareManyAgainstKnown(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New(Config{Threshold: 0, Cluster: true}, exactScorer{fixed: 50}, nil)
	known := sig(1, "abcdefgh", "ijklmnop", "")
	e.Add(known)

	queries := make([]*signature.Signature, 0, 20)
	for i := 0; i < 20; i++ {
		queries = append(queries, sig(signature.ID(i+2), "abcdefgh", "ijklmnop", ""))
	}

	var mu sync.Mutex
	var matchCount int
	err := e.CompareManyAgainstKnown(context.Background(), queries, 4, func(m Match) {
		mu.Lock()
		matchCount++
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, len(queries), matchCount)
	assert.Equal(t, 1, e.Cluster().Len(), "every query should join the same cluster as known")
}

func TestEngine_CompareManyAgainstKnown_ZeroConcurrencyIsSerial(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := New(Config{Threshold: 0}, exactScorer{fixed: 50}, nil)
	known := sig(1, "abcdefgh", "ijklmnop", "")
	e.Add(known)

	var got int
	err := e.CompareManyAgainstKnown(context.Background(), []*signature.Signature{
		sig(2, "abcdefgh", "ijklmnop", ""),
	}, 0, func(m Match) { got++ })
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
