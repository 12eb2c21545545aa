package merge

import (
	"fmt"

	"scardoc/internal/scardoc"
)

// FoldMode selects how an ordered sequence of documents is reduced.
type FoldMode int

const (
	// FoldPairwise merges each adjacent pair of input documents and keeps
	// only the last merge: the result is Merge(docs[n-2], docs[n-1]).
	// Earlier merges are computed and logged but not carried forward.
	FoldPairwise FoldMode = iota
	// FoldCumulative carries the merged result forward as the next base.
	FoldCumulative
)

func (m FoldMode) String() string {
	switch m {
	case FoldPairwise:
		return "pairwise"
	case FoldCumulative:
		return "cumulative"
	default:
		return fmt.Sprintf("FoldMode(%d)", int(m))
	}
}

// ParseFoldMode converts a configuration value.
func ParseFoldMode(s string) (FoldMode, error) {
	switch s {
	case "", "pairwise":
		return FoldPairwise, nil
	case "cumulative":
		return FoldCumulative, nil
	}
	return FoldPairwise, fmt.Errorf("unknown fold mode %q", s)
}

// Fold reduces docs left to right. No documents give an empty document and a
// single document is returned as a copy.
func (m *Merger) Fold(docs []*scardoc.Document, mode FoldMode) *scardoc.Document {
	doc, _ := m.FoldWithStats(docs, mode)
	return doc
}

// FoldWithStats is Fold plus the counts of the merge or merges that
// contributed to the result.
func (m *Merger) FoldWithStats(docs []*scardoc.Document, mode FoldMode) (*scardoc.Document, Stats) {
	switch len(docs) {
	case 0:
		return &scardoc.Document{}, Stats{}
	case 1:
		doc := docs[0].Clone()
		if doc == nil {
			doc = &scardoc.Document{}
		}
		return doc, Stats{}
	}

	var result *scardoc.Document
	var stats Stats
	for i := 1; i < len(docs); i++ {
		base := docs[i-1]
		if mode == FoldCumulative && result != nil {
			base = result
		}
		var step Stats
		result, step = m.MergeWithStats(base, docs[i])
		m.logger.Info("Merged documents",
			"step", i,
			"mode", mode.String(),
			"functions", result.FunctionCount(),
			"enums", len(result.Enums),
			"globals", len(result.Globals),
		)
		if mode == FoldCumulative {
			stats.Add(step)
		} else {
			stats = step
		}
	}
	return result, stats
}
