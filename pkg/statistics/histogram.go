// Package statistics implements equi-width histograms used to estimate the
// selectivity of a predicate against an integer column without scanning it.
package statistics

import (
	"fmt"
	"math"

	"heapstore/pkg/dberr"
	"heapstore/pkg/primitives"
)

// IntHistogram is an equi-width histogram over the integer range [min,max],
// split into a fixed number of buckets.
type IntHistogram struct {
	min, max int
	width    float64

	lefts, rights []int
	counts        []int
	total         int
}

// NewIntHistogram builds an IntHistogram with the given bucket count over
// [min,max]. Bucket i spans [ceil(min+i*w), ceil(min+(i+1)*w)-1], widened on
// the right to prevent an empty range when buckets exceeds the value range.
func NewIntHistogram(buckets, min, max int) *IntHistogram {
	w := float64(max-min+1) / float64(buckets)

	lefts := make([]int, buckets)
	rights := make([]int, buckets)
	for i := 0; i < buckets; i++ {
		left := int(math.Ceil(float64(min) + float64(i)*w))
		right := int(math.Ceil(float64(min)+float64(i+1)*w)) - 1
		if right < left {
			right = left
		}
		lefts[i] = left
		rights[i] = right
	}

	return &IntHistogram{
		min:    min,
		max:    max,
		width:  w,
		lefts:  lefts,
		rights: rights,
		counts: make([]int, buckets),
	}
}

func (h *IntHistogram) numBuckets() int { return len(h.counts) }

func (h *IntHistogram) bucketIndex(v int) int {
	return int(math.Floor(float64(v-h.min) / h.width))
}

func (h *IntHistogram) bucketWidth(i int) int {
	return h.rights[i] - h.lefts[i] + 1
}

// AddValue records one occurrence of v, which must lie in [min,max].
func (h *IntHistogram) AddValue(v int) error {
	i := h.bucketIndex(v)
	if i < 0 || i >= h.numBuckets() {
		return dberr.NewIllegalArgument("AddValue", fmt.Sprintf("value %d outside histogram range [%d,%d]", v, h.min, h.max))
	}
	h.counts[i]++
	h.total++
	return nil
}

// EstimateSelectivity estimates the fraction of added values satisfying
// `value op v`.
func (h *IntHistogram) EstimateSelectivity(op primitives.Predicate, v int) (float64, error) {
	switch op {
	case primitives.Equals:
		return h.estimateEquals(v), nil
	case primitives.GreaterThan:
		return h.estimateGreaterThan(v), nil
	case primitives.LessThan:
		return h.estimateLessThan(v), nil
	case primitives.NotEqual:
		return 1 - h.estimateEquals(v), nil
	case primitives.LessThanOrEqual:
		return 1 - h.estimateGreaterThan(v), nil
	case primitives.GreaterThanOrEqual:
		return 1 - h.estimateLessThan(v), nil
	default:
		return 0, dberr.NewUnsupportedOperation("EstimateSelectivity", "histogram predicate not supported")
	}
}

func (h *IntHistogram) estimateEquals(v int) float64 {
	if h.total == 0 {
		return 0
	}
	i := h.bucketIndex(v)
	if i < 0 || i >= h.numBuckets() {
		return 0
	}
	return (float64(h.counts[i]) / float64(h.bucketWidth(i))) / float64(h.total)
}

// estimateGreaterThan uses the real bucket-right boundary rather than
// right+1 in the within-bucket term. Together with the (v - left) term of
// estimateLessThan and the 1/width term of estimateEquals, the three
// within-bucket shares add up to the bucket's whole count, so the lt/eq/gt
// sum is 1 (up to floating-point rounding) once any value has been added.
func (h *IntHistogram) estimateGreaterThan(v int) float64 {
	if h.total == 0 {
		return 0
	}
	i := h.bucketIndex(v)
	if i < 0 {
		return 1
	}
	if i >= h.numBuckets() {
		return 0
	}

	within := float64(h.rights[i]-v) * float64(h.counts[i]) / float64(h.bucketWidth(i))
	sum := within
	for j := i + 1; j < h.numBuckets(); j++ {
		sum += float64(h.counts[j])
	}
	return sum / float64(h.total)
}

func (h *IntHistogram) estimateLessThan(v int) float64 {
	if h.total == 0 {
		return 0
	}
	i := h.bucketIndex(v)
	if i < 0 {
		return 0
	}
	if i >= h.numBuckets() {
		return 1
	}

	within := float64(v-h.lefts[i]) * float64(h.counts[i]) / float64(h.bucketWidth(i))
	sum := within
	for j := 0; j < i; j++ {
		sum += float64(h.counts[j])
	}
	return sum / float64(h.total)
}
