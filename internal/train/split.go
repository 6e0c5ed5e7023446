package train

import (
	"fmt"
	"math/rand"
	"sort"
)

// byClass groups row indices by label, with classes in sorted order for
// deterministic iteration.
func byClass(labels []int) (classes []int, groups map[int][]int) {
	groups = make(map[int][]int)
	for i, y := range labels {
		groups[y] = append(groups[y], i)
	}
	for y := range groups {
		classes = append(classes, y)
	}
	sort.Ints(classes)
	return classes, groups
}

// stratifiedSplit partitions row indices into train and validation subsets,
// holding out close to valFrac of each class so class proportions are
// preserved. The validation subset is non-empty whenever there are at least
// two rows.
func stratifiedSplit(labels []int, valFrac float64, rng *rand.Rand) (trainIdx, valIdx []int) {
	classes, groups := byClass(labels)

	for _, y := range classes {
		idx := groups[y]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nVal := int(float64(len(idx))*valFrac + 0.5)
		if nVal >= len(idx) {
			nVal = len(idx) - 1
		}
		valIdx = append(valIdx, idx[:nVal]...)
		trainIdx = append(trainIdx, idx[nVal:]...)
	}

	// Tiny datasets can round every per-class holdout to zero; take one row
	// from the largest class so the monitored metric is defined.
	if len(valIdx) == 0 && len(trainIdx) > 1 {
		largest := classes[0]
		for _, y := range classes[1:] {
			if len(groups[y]) > len(groups[largest]) {
				largest = y
			}
		}
		for i, idx := range trainIdx {
			if labels[idx] == largest {
				valIdx = append(valIdx, idx)
				trainIdx = append(trainIdx[:i], trainIdx[i+1:]...)
				break
			}
		}
	}

	sort.Ints(trainIdx)
	sort.Ints(valIdx)
	return trainIdx, valIdx
}

// stratifiedKFold partitions all row indices into k disjoint folds, each
// approximating the overall class distribution: per class, fold sizes differ
// by at most one row.
//
// Fails with ErrInvalidFoldCount when k < 2 or k exceeds the sample count of
// the smallest class, since stratification cannot then guarantee every fold a
// representative of every class.
func stratifiedKFold(labels []int, k int, rng *rand.Rand) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", ErrInvalidFoldCount, k)
	}

	classes, groups := byClass(labels)
	for _, y := range classes {
		if len(groups[y]) < k {
			return nil, fmt.Errorf("%w: %d folds but class %d has only %d samples",
				ErrInvalidFoldCount, k, y, len(groups[y]))
		}
	}

	folds := make([][]int, k)
	for _, y := range classes {
		idx := groups[y]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for i, row := range idx {
			folds[i%k] = append(folds[i%k], row)
		}
	}
	for _, fold := range folds {
		sort.Ints(fold)
	}
	return folds, nil
}

// complement returns all indices in [0, n) not present in the sorted subset.
func complement(subset []int, n int) []int {
	in := make(map[int]bool, len(subset))
	for _, i := range subset {
		in[i] = true
	}
	out := make([]int, 0, n-len(subset))
	for i := 0; i < n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}
