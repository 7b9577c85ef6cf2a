// Package signature defines the parsed representation of one ingested
// fuzzy-hash signature, derived from the textual form
// "BLOCKSIZE:S1:S2,FILENAME".
package signature

import (
	"strings"
	"sync/atomic"
)

// ID is a monotonically increasing, process-lifetime-unique identifier
// assigned at ingestion time, before any failure-prone parsing step. A
// rejected line still consumes an id, leaving an observable gap.
type ID uint64

// IDAllocator hands out unique, increasing ids. Safe for concurrent use
// (the parser's id-before-parse discipline must hold even if multiple
// corpora are loaded concurrently under the optional extension of
// spec §5).
type IDAllocator struct {
	next atomic.Uint64
}

// Next returns the next unused id. The first id returned is 1; 0 is
// reserved to mean "no id" / zero value.
func (a *IDAllocator) Next() ID {
	return ID(a.next.Add(1))
}

// Identity is the deduplication key spec.md fixes for signatures:
// (raw, match_file). Two signatures with equal Raw but differing
// MatchFile are distinct and both retained.
type Identity struct {
	Raw       string
	MatchFile string
}

// ClusterRef is a weak back-reference from a signature into the cluster
// manager: an index/handle, never a strong pointer, so clusters and
// signatures do not form a reference cycle of owning pointers.
type ClusterRef struct {
	Valid bool
	ID    uint64
}

// Signature is the parsed, immutable (save for Cluster) representation
// of one known or query signature.
type Signature struct {
	ID ID

	Blocksize uint32
	S1        string
	S2        string

	// Raw is the full "blocksize:s1:s2" prefix, passed verbatim to the
	// scorer.
	Raw string

	// Filename is the path/identifier this signature names. Optional.
	Filename string

	// MatchFile identifies the source corpus this signature was loaded
	// from. Optional.
	MatchFile string

	// Cluster is a slot for a weak back-reference into the cluster
	// manager. The zero value (Valid == false) means "no cluster".
	// cluster.Manager does not write this field: it keeps each linked
	// signature's current ClusterRef itself, readable via Manager.RefOf.
	Cluster ClusterRef
}

// Identity returns the (raw, match_file) deduplication key.
func (s *Signature) Identity() Identity {
	return Identity{Raw: s.Raw, MatchFile: s.MatchFile}
}

// HasMatchFile reports whether this signature carries match-file
// provenance (loaded from a specific named corpus).
func (s *Signature) HasMatchFile() bool {
	return s.MatchFile != ""
}

// Serialize reproduces the known-hash line this signature was parsed
// from (or would have been parsed from): "blocksize:s1:s2", followed by
// a quoted, \"-escaped filename field when one is present. Parsing the
// result again yields an equal signature.
func (s *Signature) Serialize() string {
	if s.Filename == "" {
		return s.Raw
	}
	escaped := strings.ReplaceAll(s.Filename, `"`, `\"`)
	return s.Raw + `,"` + escaped + `"`
}

// ShortS1 reports whether S1 is shorter than the 7-byte window length
// the n-gram index uses, and must fall back to the sentinel key.
func (s *Signature) ShortS1() bool {
	return len(s.S1) < WindowLen
}

// ShortS2 reports whether S2 is shorter than the 7-byte window length.
func (s *Signature) ShortS2() bool {
	return len(s.S2) < WindowLen
}

// WindowLen is the fixed n-gram window length the index keys on.
const WindowLen = 7

// SentinelKey is the bucket key used in place of a real window when a
// component is shorter than WindowLen. All short signatures collide in
// this one bucket — spec.md treats this as intentional (preserves
// recall for short signatures rather than ignoring them outright).
const SentinelKey = "AAAAAAA"
