// Package match implements the match engine: given a query signature,
// generate candidates via the n-gram index, deduplicate, score against
// the known set, and emit matches above threshold. Grounded on
// original_source/branches/index/match.cpp's match_compare_single_ngram
// and handle_match, restructured around an explicit Engine value per
// spec.md §9's "no process-wide singletons" design note.
package match

import (
	"sync"

	"github.com/standardbeagle/ssdc/internal/cluster"
	ssdcerrors "github.com/standardbeagle/ssdc/internal/errors"
	"github.com/standardbeagle/ssdc/internal/ngram"
	"github.com/standardbeagle/ssdc/internal/scorer"
	"github.com/standardbeagle/ssdc/internal/signature"
)

// Config holds the engine's configured behavior (spec.md §6
// "Configuration").
type Config struct {
	// Threshold is the minimum score (exclusive) to accept a match.
	Threshold int

	// DisplayAll, when true, emits every scored candidate regardless
	// of Threshold.
	DisplayAll bool

	// Pretty suppresses self-matches when the query's (raw, match_file)
	// identity equals the candidate's.
	Pretty bool

	// Cluster, when true, links every accepted match in the cluster
	// manager. The match handler, if non-nil, is still invoked for it.
	Cluster bool
}

// Match is one accepted (or displayed, under DisplayAll) pairing.
type Match struct {
	Query     *signature.Signature
	Candidate *signature.Signature
	Score     int
}

// Handler receives accepted matches in the order spec.md §4.3
// guarantees: window-major, then bucket iteration order, for a single
// query; across queries, invocation order.
type Handler func(m Match)

// Engine ties together the n-gram index, the all-files list, the
// scorer, and (optionally) the cluster manager.
type Engine struct {
	cfg     Config
	index   *ngram.Index
	scorer  scorer.Scorer
	cluster *cluster.Manager

	allFiles []*signature.Signature

	// rejected accumulates ScorerRejectedError values for callers that
	// want to inspect them after a run; the engine itself only logs
	// and continues (spec.md §7).
	rejected []*ssdcerrors.ScorerRejectedError

	// mu guards rejected and cluster linking against the optional
	// concurrent-query extension (CompareManyAgainstKnown): spec.md §5
	// permits many concurrent compare_against_known calls while no add
	// is in flight, but those calls still share this engine's rejected
	// log and cluster manager.
	mu sync.Mutex
}

// New constructs an Engine. clusterMgr may be nil if cfg.Cluster is
// false; New allocates one itself if cfg.Cluster is true and none is
// given.
func New(cfg Config, s scorer.Scorer, clusterMgr *cluster.Manager) *Engine {
	if cfg.Cluster && clusterMgr == nil {
		clusterMgr = cluster.NewManager()
	}
	return &Engine{
		cfg:     cfg,
		index:   ngram.New(),
		scorer:  s,
		cluster: clusterMgr,
	}
}

// Cluster returns the engine's cluster manager (nil if cfg.Cluster is
// false and none was ever attached).
func (e *Engine) Cluster() *cluster.Manager { return e.cluster }

// Index exposes the underlying n-gram index, e.g. for diagnostics.
func (e *Engine) Index() *ngram.Index { return e.index }

// AllFiles returns the all-files list in ingestion order.
func (e *Engine) AllFiles() []*signature.Signature { return e.allFiles }

// Rejected returns every ScorerRejectedError accumulated so far.
func (e *Engine) Rejected() []*ssdcerrors.ScorerRejectedError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rejected
}

// Add inserts sig into the index and the all-files list without
// comparing it against anything. Used by the corpus loader.
func (e *Engine) Add(sig *signature.Signature) {
	e.index.Insert(sig)
	e.allFiles = append(e.allFiles, sig)
}

// CompareAgainstKnown is the primary query operation (spec.md §4.3):
// generate candidates for query via the index, score each, and invoke
// handler for every accepted pair. query is not inserted into the
// index or all-files list.
func (e *Engine) CompareAgainstKnown(query *signature.Signature, handler Handler) {
	e.compare(query, handler)
}

// AddAndCompare is used in pretty/cluster modes: compare query against
// everything already indexed, then insert it, so the all-files
// traversal yields each unordered pair exactly once (spec.md §4.3).
func (e *Engine) AddAndCompare(query *signature.Signature, handler Handler) {
	e.compare(query, handler)
	e.Add(query)
}

func (e *Engine) compare(query *signature.Signature, handler Handler) {
	candidates := e.index.Candidates(query)

	for _, candidate := range candidates {
		if e.cfg.Pretty && query.Identity() == candidate.Identity() {
			continue
		}

		score, err := e.scorer.Compare(query, candidate)
		if err != nil {
			continue
		}
		if score == -1 {
			e.mu.Lock()
			e.rejected = append(e.rejected, ssdcerrors.NewScorerRejectedError(uint64(query.ID), uint64(candidate.ID)))
			e.mu.Unlock()
			continue
		}

		if !e.cfg.DisplayAll && score <= e.cfg.Threshold {
			continue
		}

		m := Match{Query: query, Candidate: candidate, Score: score}

		if e.cfg.Cluster && e.cluster != nil {
			e.mu.Lock()
			e.cluster.Link(query.ID, candidate.ID)
			e.mu.Unlock()
		}
		if handler != nil {
			handler(m)
		}
	}
}
