package train

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labelsWithCounts builds a label vector with the given per-class counts.
func labelsWithCounts(counts ...int) []int {
	var labels []int
	for class, count := range counts {
		for i := 0; i < count; i++ {
			labels = append(labels, class)
		}
	}
	return labels
}

func TestStratifiedSplit_PreservesProportions(t *testing.T) {
	labels := labelsWithCounts(60, 40)
	rng := rand.New(rand.NewSource(1))

	trainIdx, valIdx := stratifiedSplit(labels, 0.2, rng)

	assert.Len(t, trainIdx, 80)
	assert.Len(t, valIdx, 20)

	valCounts := map[int]int{}
	for _, i := range valIdx {
		valCounts[labels[i]]++
	}
	assert.Equal(t, 12, valCounts[0])
	assert.Equal(t, 8, valCounts[1])
}

func TestStratifiedSplit_DisjointAndComplete(t *testing.T) {
	labels := labelsWithCounts(10, 15, 5)
	rng := rand.New(rand.NewSource(2))

	trainIdx, valIdx := stratifiedSplit(labels, 0.25, rng)

	seen := map[int]int{}
	for _, i := range append(append([]int{}, trainIdx...), valIdx...) {
		seen[i]++
	}
	require.Len(t, seen, len(labels))
	for i, count := range seen {
		assert.Equal(t, 1, count, "row %d", i)
	}
}

func TestStratifiedSplit_TinyDatasetKeepsValidation(t *testing.T) {
	labels := labelsWithCounts(2, 2)
	rng := rand.New(rand.NewSource(3))

	trainIdx, valIdx := stratifiedSplit(labels, 0.1, rng)

	assert.NotEmpty(t, valIdx)
	assert.NotEmpty(t, trainIdx)
}

func TestStratifiedKFold_CoverageAndBalance(t *testing.T) {
	labels := labelsWithCounts(23, 17)
	rng := rand.New(rand.NewSource(4))

	folds, err := stratifiedKFold(labels, 5, rng)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	// Every row held out exactly once.
	seen := map[int]int{}
	for _, fold := range folds {
		for _, i := range fold {
			seen[i]++
		}
	}
	require.Len(t, seen, len(labels))
	for i, count := range seen {
		assert.Equal(t, 1, count, "row %d", i)
	}

	// Per class, fold sizes differ by at most one.
	for class := 0; class < 2; class++ {
		min, max := len(labels), 0
		for _, fold := range folds {
			count := 0
			for _, i := range fold {
				if labels[i] == class {
					count++
				}
			}
			if count < min {
				min = count
			}
			if count > max {
				max = count
			}
		}
		assert.LessOrEqual(t, max-min, 1, "class %d", class)
	}
}

func TestStratifiedKFold_SmallestClassLimits(t *testing.T) {
	labels := labelsWithCounts(10, 3)
	rng := rand.New(rand.NewSource(5))

	_, err := stratifiedKFold(labels, 5, rng)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFoldCount)
	assert.Contains(t, err.Error(), "class 1 has only 3 samples")
}

func TestStratifiedKFold_TooFewFolds(t *testing.T) {
	_, err := stratifiedKFold(labelsWithCounts(5, 5), 1, rand.New(rand.NewSource(6)))
	assert.ErrorIs(t, err, ErrInvalidFoldCount)
}

func TestComplement(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4}, complement([]int{1, 3}, 5))
}

func TestEarlyStopper_StopsAfterPatience(t *testing.T) {
	// Metric improves through epoch 2, then plateaus; with patience 3 the
	// stop fires at epoch 2+3.
	metrics := []float64{0.5, 0.6, 0.7, 0.7, 0.7, 0.7, 0.7}
	stopper := newEarlyStopper(3)

	stoppedAt := -1
	for epoch, m := range metrics {
		if _, stop := stopper.Observe(epoch, m); stop {
			stoppedAt = epoch
			break
		}
	}

	assert.Equal(t, 5, stoppedAt)
	assert.Equal(t, 2, stopper.bestEpoch)
	assert.Equal(t, 0.7, stopper.best)
}

func TestEarlyStopper_StrictImprovementRequired(t *testing.T) {
	stopper := newEarlyStopper(2)

	improved, _ := stopper.Observe(0, 0.5)
	assert.True(t, improved)

	// Equal metric is not an improvement.
	improved, stop := stopper.Observe(1, 0.5)
	assert.False(t, improved)
	assert.False(t, stop)

	_, stop = stopper.Observe(2, 0.5)
	assert.True(t, stop)
	assert.Equal(t, 0, stopper.bestEpoch)
}
