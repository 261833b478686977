package fs

import (
	"math"
	"sync"

	"github.com/wangjia184/sortedset"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// Feature values are float64 but sorted set scores are integral, so
// values are indexed at fixed-point millis precision. The range lookup
// over-fetches by one milli on each side and the exact float comparison
// happens against the stored metadata.
const scoreScale = 1000

func score(v float64) sortedset.SCORE {
	return sortedset.SCORE(math.Floor(v * scoreScale))
}

// metadataIndex maps each feature name to a sorted set of the blocks
// carrying that feature, ordered by value, so range predicates walk a
// narrow score window instead of every block.
type metadataIndex struct {
	mutex    sync.RWMutex
	features map[string]*sortedset.SortedSet
	byPath   map[string]*types.Metadata
}

func newMetadataIndex() *metadataIndex {
	return &metadataIndex{
		features: make(map[string]*sortedset.SortedSet),
		byPath:   make(map[string]*types.Metadata),
	}
}

func (idx *metadataIndex) insert(metadata *types.Metadata, blockPath string) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.byPath[blockPath] = metadata
	for _, feature := range metadata.Features {
		set, ok := idx.features[feature.Name]
		if !ok {
			set = sortedset.New()
			idx.features[feature.Name] = set
		}
		set.AddOrUpdate(blockPath, score(feature.Value), metadata)
	}
}

func (idx *metadataIndex) size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return len(idx.byPath)
}

// evaluate runs a predicate conjunction: the first predicate selects
// candidates through its feature's sorted set, the full predicate list
// then filters them exactly.
func (idx *metadataIndex) evaluate(predicates []predicate) types.MetaArray {
	if len(predicates) == 0 {
		return nil
	}

	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	var results types.MetaArray
	for _, candidate := range idx.candidates(predicates[0]) {
		metadata := candidate.Value.(*types.Metadata)
		if matchesAll(metadata, predicates) {
			results = append(results, metadata)
		}
	}
	return results
}

func (idx *metadataIndex) candidates(p predicate) []*sortedset.SortedSetNode {
	set, ok := idx.features[p.name]
	if !ok {
		return nil
	}

	min := sortedset.SCORE(math.MinInt64)
	max := sortedset.SCORE(math.MaxInt64)
	target := score(p.value)
	switch p.op {
	case opLess, opLessEqual:
		// Over-fetch one scale step; the exact filter trims it.
		max = target + 1
	case opGreater, opGreaterEqual:
		min = target - 1
	case opEqual:
		min, max = target-1, target+1
	case opNotEqual:
		// Full scan of the feature's set.
	}
	return set.GetByScoreRange(min, max, nil)
}

func matchesAll(metadata *types.Metadata, predicates []predicate) bool {
	for _, p := range predicates {
		feature, ok := metadata.Feature(p.name)
		if !ok || !p.matches(feature.Value) {
			return false
		}
	}
	return true
}
