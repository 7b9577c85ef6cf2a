package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/ssdc/internal/signature"
)

func TestLink_NewCluster(t *testing.T) {
	m := NewManager()
	m.Link(1, 2)

	require.Equal(t, 1, m.Len())
	refA := m.RefOf(1)
	refB := m.RefOf(2)
	require.True(t, refA.Valid)
	require.True(t, refB.Valid)
	assert.Equal(t, refA.ID, refB.ID)
}

func TestLink_InsertIntoExisting(t *testing.T) {
	m := NewManager()
	m.Link(1, 2)
	m.Link(1, 3)

	require.Equal(t, 1, m.Len())
	ref := m.RefOf(1)
	c := m.clusters[ref.ID]
	_, ok := c.Members()[3]
	assert.True(t, ok, "expected id 3 to be inserted into existing cluster")
}

func TestLink_SameClusterNoOp(t *testing.T) {
	m := NewManager()
	m.Link(1, 2)
	before := m.Len()
	m.Link(1, 2)
	assert.Equal(t, before, m.Len())
}

func TestLink_MergeDifferentClusters(t *testing.T) {
	m := NewManager()
	m.Link(1, 2)
	m.Link(3, 4)
	require.Equal(t, 2, m.Len())

	m.Link(2, 3)
	require.Equal(t, 1, m.Len())

	ref := m.RefOf(1)
	for _, id := range []signature.ID{1, 2, 3, 4} {
		assert.Equal(t, ref.ID, m.RefOf(id).ID, "id %d is not in the surviving cluster", id)
	}
}

func TestLink_UnionBySize(t *testing.T) {
	m := NewManager()
	// Build a 3-member cluster: {1,2,3}.
	m.Link(1, 2)
	m.Link(2, 3)
	// Build a 2-member cluster: {4,5}.
	m.Link(4, 5)

	survivorBefore := m.RefOf(1).ID

	m.Link(1, 4)

	// The larger cluster (size 3) should have absorbed the smaller
	// (size 2): the survivor id must be the original larger cluster's id.
	assert.Equal(t, survivorBefore, m.RefOf(4).ID)
}

func TestCluster_Transitivity(t *testing.T) {
	m := NewManager()
	// a,b then c,d then b,c then e,a — spec.md §8 scenario 6.
	m.Link(1, 2)
	m.Link(3, 4)
	m.Link(2, 3)
	m.Link(5, 1)

	require.Equal(t, 1, m.Len())
	ref := m.RefOf(1)
	for _, id := range []signature.ID{1, 2, 3, 4, 5} {
		assert.Equal(t, ref.ID, m.RefOf(id).ID, "id %d not in the single surviving cluster", id)
	}
}
