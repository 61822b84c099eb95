package partitions

import (
	"errors"
	"fmt"
)

var ErrNegativeWeight = errors.New("negative element weight")

// PartitionStrategy defines how elements are assigned to partitions
type PartitionStrategy int

const (
	// BlockPartition splits the sequence into runs of equal length
	BlockPartition PartitionStrategy = iota
	// WeightedPartition splits the sequence into runs of equal total weight
	WeightedPartition
)

func (s PartitionStrategy) String() string {
	switch s {
	case BlockPartition:
		return "block"
	case WeightedPartition:
		return "weighted"
	}
	return fmt.Sprintf("PartitionStrategy(%d)", int(s))
}

// PartitionBuilder constructs a contiguous partition of an ordered element
// sequence
type PartitionBuilder struct {
	NumPartitions int
	Strategy      PartitionStrategy

	// Weights holds one weight per element. Block partitioning only uses its
	// length.
	Weights []int64
}

// BuildPartitions creates a partition layout.
//
// Partition p begins at cut_p, the number of elements whose exclusive weight
// prefix w_i satisfies P*w_i < W*p, where W is the total weight. With unit
// weights this is the block split ceil(N*p/P). When every weight is zero the
// block split is used.
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.NumPartitions < 1 {
		return nil, fmt.Errorf("invalid partition count %d", pb.NumPartitions)
	}
	n := int64(len(pb.Weights))

	var prefix []int64
	if pb.Strategy == WeightedPartition {
		var err error
		if prefix, err = exclusivePrefix(pb.Weights); err != nil {
			return nil, err
		}
	}
	var totalWeight int64
	if prefix != nil {
		totalWeight = prefix[n]
	}

	cuts := make([]int64, pb.NumPartitions+1)
	cuts[pb.NumPartitions] = n
	for p := 1; p < pb.NumPartitions; p++ {
		if totalWeight == 0 {
			cuts[p] = ceilDiv(n*int64(p), int64(pb.NumPartitions))
			continue
		}
		cuts[p] = countBelow(prefix[:n], int64(pb.NumPartitions), totalWeight*int64(p))
	}

	layout := &PartitionLayout{
		Partitions:    make([]Partition, pb.NumPartitions),
		TotalElements: n,
		NumPartitions: pb.NumPartitions,
		TotalWeight:   totalWeight,
	}
	for p := range layout.Partitions {
		part := Partition{
			ID:          p,
			Begin:       cuts[p],
			End:         cuts[p+1],
			NumElements: int(cuts[p+1] - cuts[p]),
		}
		if prefix != nil {
			part.Weight = prefix[part.End] - prefix[part.Begin]
		} else {
			part.Weight = int64(part.NumElements)
		}
		layout.KpartMax = max(layout.KpartMax, part.NumElements)
		layout.Partitions[p] = part
	}
	if prefix == nil {
		layout.TotalWeight = n
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}
	return layout, nil
}

// exclusivePrefix returns w[0..n] with w[i] = sum of weights before element i
func exclusivePrefix(weights []int64) ([]int64, error) {
	prefix := make([]int64, len(weights)+1)
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: element %d has weight %d", ErrNegativeWeight, i, w)
		}
		prefix[i+1] = prefix[i] + w
	}
	return prefix, nil
}

// countBelow counts entries with scale*prefix[i] < bound; prefix is non-decreasing
func countBelow(prefix []int64, scale, bound int64) int64 {
	lo, hi := 0, len(prefix)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if scale*prefix[mid] < bound {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return int64(lo)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
