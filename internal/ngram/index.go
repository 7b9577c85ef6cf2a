// Package ngram implements the 7-gram inverted index that turns pairwise
// signature comparison into a sub-quadratic candidate-filtering problem.
// Grounded on original_source/branches/index/match.cpp's add_ngrams /
// add_single_ngram / add_to_index / INDEX lookup path, generalized from
// a fixed 24-bit-address/24-bit-sidekey C struct into a plain Go map
// keyed by the 7-byte window string itself (spec.md §4.6 permits either
// representation; this one needs no base64 decode step).
package ngram

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/standardbeagle/ssdc/internal/signature"
)

// WindowLen is the fixed n-gram window length. Mirrors signature.WindowLen.
const WindowLen = signature.WindowLen

// SentinelKey is the bucket key used for signature components shorter
// than WindowLen. Mirrors signature.SentinelKey.
const SentinelKey = signature.SentinelKey

// defaultShardCount is the number of independent bucket maps New splits
// the index across. Sharding exists only to support the optional
// reader-writer extension of spec.md §5: readers of distinct shards
// never contend with each other, and a single shard's lock is held only
// for the duration of one bucket lookup or insert, not the whole call.
// With shardCount == 1 the index behaves exactly like a single map,
// which is the reference (serial) semantics.
const defaultShardCount = 16

// Index is the 7-gram inverted index: key -> set of signature ids
// sharing that window, plus the signature store needed to resolve ids
// back to *signature.Signature for candidate iteration.
type Index struct {
	shards []shard
	mask   uint64

	// sigMu guards bySignature for the optional reader/writer extension
	// of spec.md §5: many concurrent Candidates/Lookup calls may hold
	// the read lock together; Insert takes the write lock only for the
	// duration of its own map update.
	sigMu sync.RWMutex

	// bySignature resolves a signature id to its Signature, so
	// Candidates can yield *signature.Signature rather than bare ids.
	// Populated by Insert; never removed (signatures live for the
	// process lifetime per spec.md §3).
	bySignature map[signature.ID]*signature.Signature
}

type shard struct {
	mu      sync.RWMutex
	buckets map[string][]signature.ID
}

// New creates an empty index with the default shard count.
func New() *Index {
	return NewWithShards(defaultShardCount)
}

// NewWithShards creates an empty index with a caller-chosen shard count.
// shardCount must be a power of two; 1 disables sharding.
func NewWithShards(shardCount int) *Index {
	if shardCount < 1 {
		shardCount = 1
	}
	idx := &Index{
		shards:      make([]shard, shardCount),
		mask:        uint64(shardCount - 1),
		bySignature: make(map[signature.ID]*signature.Signature),
	}
	for i := range idx.shards {
		idx.shards[i].buckets = make(map[string][]signature.ID)
	}
	return idx
}

func (idx *Index) shardFor(key string) *shard {
	if len(idx.shards) == 1 {
		return &idx.shards[0]
	}
	h := xxhash.Sum64String(key)
	return &idx.shards[h&idx.mask]
}

// windows returns the set of distinct window keys for s: every
// contiguous WindowLen-byte substring, deduplicated, or SentinelKey
// alone if s is shorter than WindowLen.
func windows(s string) []string {
	if len(s) < WindowLen {
		return []string{SentinelKey}
	}
	seen := make(map[string]struct{}, len(s)-WindowLen+1)
	out := make([]string, 0, len(s)-WindowLen+1)
	for i := 0; i+WindowLen <= len(s); i++ {
		w := s[i : i+WindowLen]
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Insert adds sig under every distinct 7-byte window of its s1 and s2,
// and registers it for id-to-Signature resolution. A signature already
// present under a key is not duplicated (bucket set semantics).
func (idx *Index) Insert(sig *signature.Signature) {
	idx.sigMu.Lock()
	idx.bySignature[sig.ID] = sig
	idx.sigMu.Unlock()

	keys := make(map[string]struct{})
	for _, w := range windows(sig.S1) {
		keys[w] = struct{}{}
	}
	for _, w := range windows(sig.S2) {
		keys[w] = struct{}{}
	}
	for key := range keys {
		sh := idx.shardFor(key)
		sh.mu.Lock()
		bucket := sh.buckets[key]
		if !containsID(bucket, sig.ID) {
			sh.buckets[key] = append(bucket, sig.ID)
		}
		sh.mu.Unlock()
	}
}

func containsID(bucket []signature.ID, id signature.ID) bool {
	for _, existing := range bucket {
		if existing == id {
			return true
		}
	}
	return false
}

// Candidates returns every known signature sharing at least one 7-byte
// window with either component of query, each id appearing at most
// once, in window-major then bucket-iteration order (spec.md §4.3).
// The query itself is included if it was previously Inserted.
func (idx *Index) Candidates(query *signature.Signature) []*signature.Signature {
	seen := make(map[signature.ID]struct{})
	var out []*signature.Signature

	idx.sigMu.RLock()
	defer idx.sigMu.RUnlock()

	emit := func(w string) {
		sh := idx.shardFor(w)
		sh.mu.RLock()
		ids := append([]signature.ID(nil), sh.buckets[w]...)
		sh.mu.RUnlock()
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if sig, ok := idx.bySignature[id]; ok {
				out = append(out, sig)
			}
		}
	}

	for _, w := range windows(query.S1) {
		emit(w)
	}
	for _, w := range windows(query.S2) {
		emit(w)
	}
	return out
}

// Lookup resolves an id to its Signature, for callers (e.g. the cluster
// manager) that only carry ids.
func (idx *Index) Lookup(id signature.ID) (*signature.Signature, bool) {
	idx.sigMu.RLock()
	defer idx.sigMu.RUnlock()
	sig, ok := idx.bySignature[id]
	return sig, ok
}

// Len reports the number of distinct signatures inserted.
func (idx *Index) Len() int {
	idx.sigMu.RLock()
	defer idx.sigMu.RUnlock()
	return len(idx.bySignature)
}

// BucketSize reports the number of signatures sharing window key,
// across whichever shard it hashes to. Exposed for tests asserting
// n-gram selectivity (spec.md §8 scenario 4).
func (idx *Index) BucketSize(key string) int {
	sh := idx.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.buckets[key])
}
