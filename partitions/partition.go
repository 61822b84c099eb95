package partitions

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/stat"
)

// Partition is the contiguous run of the global element sequence owned by
// one process
type Partition struct {
	// Unique identifier for this partition, equal to the owning rank
	ID int

	// Global element range [Begin, End)
	Begin, End int64

	NumElements int   // End - Begin
	Weight      int64 // Sum of element weights in the range
}

// PartitionLayout manages the complete decomposition of the element sequence
type PartitionLayout struct {
	// All partitions, ordered by ID and by position in the sequence
	Partitions []Partition

	// Global sizing information
	KpartMax      int   // max(NumElements) across all partitions
	TotalElements int64 // Sum of all elements across partitions
	NumPartitions int   // Total number of partitions
	TotalWeight   int64 // Sum of all element weights
}

// GetPartition returns the partition containing element k, or -1
func (pl *PartitionLayout) GetPartition(elementID int64) int {
	if elementID < 0 || elementID >= pl.TotalElements {
		return -1
	}
	// first partition whose range ends past the element
	return sort.Search(pl.NumPartitions, func(p int) bool {
		return pl.Partitions[p].End > elementID
	})
}

// GlobalToLocal maps a global element index to its partition and its index
// within that partition
func (pl *PartitionLayout) GlobalToLocal(elementID int64) (partID int, localIdx int, ok bool) {
	partID = pl.GetPartition(elementID)
	if partID < 0 {
		return -1, -1, false
	}
	return partID, int(elementID - pl.Partitions[partID].Begin), true
}

// ValidateLayout checks that the partitions tile the element sequence
func (pl *PartitionLayout) ValidateLayout() (err error) {
	if len(pl.Partitions) != pl.NumPartitions {
		return fmt.Errorf("layout has %d partitions, expected %d", len(pl.Partitions), pl.NumPartitions)
	}
	var next int64
	actualMax := 0
	for i, p := range pl.Partitions {
		if p.ID != i {
			err = multierr.Append(err, fmt.Errorf("partition %d has ID %d", i, p.ID))
		}
		if p.Begin != next {
			err = multierr.Append(err, fmt.Errorf("partition %d begins at %d, expected %d", i, p.Begin, next))
		}
		if p.End < p.Begin {
			err = multierr.Append(err, fmt.Errorf("partition %d: range [%d, %d) is reversed", i, p.Begin, p.End))
		}
		if int64(p.NumElements) != p.End-p.Begin {
			err = multierr.Append(err, fmt.Errorf("partition %d: NumElements %d != range size %d",
				i, p.NumElements, p.End-p.Begin))
		}
		actualMax = max(actualMax, p.NumElements)
		next = p.End
	}
	if next != pl.TotalElements {
		err = multierr.Append(err, fmt.Errorf("partitions cover %d elements, expected %d", next, pl.TotalElements))
	}
	if actualMax != pl.KpartMax {
		err = multierr.Append(err, fmt.Errorf("computed KpartMax %d != stored KpartMax %d", actualMax, pl.KpartMax))
	}
	return err
}

// PartitionStatistics computes load balance metrics
func (pl *PartitionLayout) PartitionStatistics() PartitionStats {
	stats := PartitionStats{
		NumPartitions: pl.NumPartitions,
		MinElements:   math.MaxInt,
	}
	counts := make([]float64, 0, pl.NumPartitions)
	for _, p := range pl.Partitions {
		stats.MinElements = min(stats.MinElements, p.NumElements)
		stats.MaxElements = max(stats.MaxElements, p.NumElements)
		if p.NumElements == 0 {
			stats.EmptyPartitions++
		}
		counts = append(counts, float64(p.NumElements))
	}
	if len(counts) == 0 {
		stats.MinElements = 0
		return stats
	}
	stats.AvgElements = stat.Mean(counts, nil)
	if len(counts) > 1 {
		stats.StdDevElements = stat.StdDev(counts, nil)
	}
	if stats.AvgElements > 0 {
		stats.Imbalance = float64(stats.MaxElements) / stats.AvgElements
	}
	return stats
}

type PartitionStats struct {
	NumPartitions   int
	MinElements     int
	MaxElements     int
	EmptyPartitions int
	AvgElements     float64
	StdDevElements  float64
	Imbalance       float64 // MaxElements / AvgElements
}

func (s PartitionStats) String() string {
	return fmt.Sprintf("%d partitions, elements min %d max %d avg %.1f (σ %.1f), %d empty, imbalance %.3f",
		s.NumPartitions, s.MinElements, s.MaxElements, s.AvgElements, s.StdDevElements,
		s.EmptyPartitions, s.Imbalance)
}
