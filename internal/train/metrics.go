package train

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Metric names reported by Evaluate.
const (
	MetricROCAUC   = "roc_auc"
	MetricAccuracy = "accuracy"
)

// Evaluate scores class-probability predictions against integer labels.
//
// The preferred metric is ROC-AUC: for two classes, the AUC of the positive
// class probability; for more, the unweighted mean of one-vs-rest AUCs over
// classes with both positive and negative examples. Where AUC is undefined
// (fewer than 2 distinct labels present) it falls back to accuracy.
//
// probs has one row per sample and one column per class; labels[i] is the
// true class of row i.
func Evaluate(probs *mat.Dense, labels []int) (name string, value float64) {
	_, numClasses := probs.Dims()

	present := make(map[int]bool)
	for _, y := range labels {
		present[y] = true
	}
	if len(present) < 2 {
		return MetricAccuracy, accuracy(probs, labels)
	}

	if numClasses == 2 {
		return MetricROCAUC, binaryAUC(mat.Col(nil, 1, probs), labels, 1)
	}

	// Macro one-vs-rest over classes with both positives and negatives.
	var sum float64
	var scored int
	for c := 0; c < numClasses; c++ {
		if !present[c] {
			continue
		}
		sum += binaryAUC(mat.Col(nil, c, probs), labels, c)
		scored++
	}
	if scored == 0 {
		return MetricAccuracy, accuracy(probs, labels)
	}
	return MetricROCAUC, sum / float64(scored)
}

// binaryAUC computes the area under the ROC curve for the given class scores,
// treating labels equal to positive as the positive class.
func binaryAUC(scores []float64, labels []int, positive int) float64 {
	type scored struct {
		score float64
		pos   bool
	}
	rows := make([]scored, len(scores))
	for i, s := range scores {
		rows[i] = scored{score: s, pos: labels[i] == positive}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].score < rows[j].score })

	y := make([]float64, len(rows))
	classes := make([]bool, len(rows))
	for i, r := range rows {
		y[i] = r.score
		classes[i] = r.pos
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

// accuracy is the fraction of rows whose argmax probability matches the
// label.
func accuracy(probs *mat.Dense, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	correct := 0
	for i, y := range labels {
		if floats.MaxIdx(probs.RawRowView(i)) == y {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}
