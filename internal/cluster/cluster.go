// Package cluster maintains equivalence classes of signatures linked by
// accepted matches. Grounded on original_source/branches/index/match.cpp's
// cluster_add / cluster_join / handle_clustering, reworked per
// spec.md §9's "cyclic ownership" design note: clusters own their
// member ids, and each linked signature's weak signature.ClusterRef
// back-reference is held by this manager, keyed by signature id, rather
// than as a pointer to a Cluster. signature.Signature.Cluster is not
// written here.
package cluster

import "github.com/standardbeagle/ssdc/internal/signature"

// Cluster is a set of signature ids joined by transitively accepted
// matches.
type Cluster struct {
	id      uint64
	members map[signature.ID]struct{}
}

// ID is the cluster's handle, stable for its lifetime (a merge retires
// one of the two ids involved; the survivor's id never changes).
func (c *Cluster) ID() uint64 { return c.id }

// Members returns the cluster's signature ids. The caller must not
// mutate the returned map.
func (c *Cluster) Members() map[signature.ID]struct{} { return c.members }

func (c *Cluster) size() int { return len(c.members) }

// Manager owns the set of live clusters and the back-references from
// signatures into them.
type Manager struct {
	clusters map[uint64]*Cluster
	nextID   uint64

	// refs holds each linked signature's ClusterRef, keyed by
	// signature id, so Link can update a signature's back-reference
	// without the caller threading *signature.Signature pointers
	// through every call. It is the only copy Link maintains.
	refs map[signature.ID]signature.ClusterRef
}

// NewManager returns an empty cluster manager.
func NewManager() *Manager {
	return &Manager{
		clusters: make(map[uint64]*Cluster),
		refs:     make(map[signature.ID]signature.ClusterRef),
	}
}

// RefOf returns the current cluster back-reference for id, or the zero
// value (Valid == false) if id has never been linked.
func (m *Manager) RefOf(id signature.ID) signature.ClusterRef {
	return m.refs[id]
}

// Link merges the clusters containing a and b, per spec.md §4.4:
//   - neither has a cluster: create a new cluster {a, b}.
//   - exactly one has a cluster: insert the other into it.
//   - both have the same cluster: no-op.
//   - both have different clusters: merge the smaller into the larger,
//     updating every moved member's back-reference, then retire the
//     smaller cluster's id from the live set.
//
// Link is infallible given two valid signature ids; it never panics on
// data it is given, only on an internal invariant violation (a
// back-reference naming a cluster id that no longer exists).
func (m *Manager) Link(a, b signature.ID) {
	refA := m.refs[a]
	refB := m.refs[b]

	switch {
	case !refA.Valid && !refB.Valid:
		c := m.newCluster(a, b)
		m.setRef(a, c.id)
		m.setRef(b, c.id)

	case refA.Valid && !refB.Valid:
		m.insertInto(refA.ID, b)

	case !refA.Valid && refB.Valid:
		m.insertInto(refB.ID, a)

	default:
		if refA.ID == refB.ID {
			return
		}
		m.merge(refA.ID, refB.ID)
	}
}

func (m *Manager) newCluster(a, b signature.ID) *Cluster {
	m.nextID++
	c := &Cluster{
		id: m.nextID,
		members: map[signature.ID]struct{}{
			a: {},
			b: {},
		},
	}
	m.clusters[c.id] = c
	return c
}

func (m *Manager) insertInto(clusterID uint64, member signature.ID) {
	c, ok := m.clusters[clusterID]
	if !ok {
		panic("cluster: back-reference names a retired cluster")
	}
	c.members[member] = struct{}{}
	m.setRef(member, clusterID)
}

// merge joins clusters idA and idB, moving the smaller's members into
// the larger (union-by-size), then retires the smaller's id.
func (m *Manager) merge(idA, idB uint64) {
	ca, ok := m.clusters[idA]
	if !ok {
		panic("cluster: back-reference names a retired cluster")
	}
	cb, ok := m.clusters[idB]
	if !ok {
		panic("cluster: back-reference names a retired cluster")
	}

	survivor, retired := ca, cb
	if retired.size() > survivor.size() {
		survivor, retired = retired, survivor
	}

	for member := range retired.members {
		survivor.members[member] = struct{}{}
		m.setRef(member, survivor.id)
	}
	delete(m.clusters, retired.id)
}

func (m *Manager) setRef(id signature.ID, clusterID uint64) {
	m.refs[id] = signature.ClusterRef{Valid: true, ID: clusterID}
}

// AllClusters returns every live cluster, in no particular order
// (spec.md §9 leaves cluster emission order unspecified).
func (m *Manager) AllClusters() []*Cluster {
	out := make([]*Cluster, 0, len(m.clusters))
	for _, c := range m.clusters {
		out = append(out, c)
	}
	return out
}

// Len reports the number of live clusters.
func (m *Manager) Len() int {
	return len(m.clusters)
}
