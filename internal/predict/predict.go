// Package predict implements the inference pipeline: it applies a loaded
// probe to new feature rows in batches, producing per-row class
// probabilities, and optionally scores them against ground-truth labels
// joined by row identifier.
package predict

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/artifact"
	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/report"
	"github.com/tatonetti-lab/Plug/internal/train"
)

// ErrDimensionMismatch is returned when the feature width at predict time
// differs from the width recorded at training time.
var ErrDimensionMismatch = errors.New("feature dimension mismatch")

// Config holds inference options.
type Config struct {
	BatchSize int             // Forward-pass batch size (default: 256)
	Reporter  report.Reporter // Progress/event sink (default: report.Nop)
}

// Predictions holds one probability row per input sample, aligned with IDs.
type Predictions struct {
	IDs   []string
	Probs *mat.Dense // [len(IDs), num_classes]; each row sums to 1
}

// Metrics is the held-out metrics record produced when ground truth is
// available.
type Metrics struct {
	MetricName string  `json:"metric_name"`
	Value      float64 `json:"value"`
	Accuracy   float64 `json:"accuracy"`
	NScored    int     `json:"n_scored"`    // Predictions matched to a label
	NUnmatched int     `json:"n_unmatched"` // Predictions with no label
}

// Run applies the model to x and returns per-row class probabilities.
//
// header must be the metadata record the model was loaded with; its recorded
// input dimension is checked against the feature width, failing with
// ErrDimensionMismatch on disagreement. ids supplies one identifier per row.
func Run(model nn.Module, header *artifact.Header, x *mat.Dense, ids []string, cfg Config) (*Predictions, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	if cfg.Reporter == nil {
		cfg.Reporter = report.Nop{}
	}

	rows, cols := x.Dims()
	if cols != header.InputDim {
		return nil, fmt.Errorf("%w: model was trained on %d features, input has %d",
			ErrDimensionMismatch, header.InputDim, cols)
	}
	if len(ids) != rows {
		return nil, fmt.Errorf("predict: %d feature rows but %d identifiers", rows, len(ids))
	}

	probs := nn.Probabilities(model, x, cfg.BatchSize)
	cfg.Reporter.Eventf("predicted %d rows across %d classes", rows, header.NumClasses)

	return &Predictions{IDs: ids, Probs: probs}, nil
}

// Score joins the predictions against ground-truth labels by identifier and
// computes a held-out metrics record.
//
// Rows without a matching label are excluded from scoring but reported, not
// fatal: partial overlap between predictions and truth is expected variation.
// Returns nil when no rows match.
func (p *Predictions) Score(truth map[string]int, rep report.Reporter) *Metrics {
	if rep == nil {
		rep = report.Nop{}
	}

	_, numClasses := p.Probs.Dims()
	matched := mat.NewDense(len(p.IDs), numClasses, nil)
	var labels []int
	unmatchedPred := 0
	for i, id := range p.IDs {
		label, ok := truth[id]
		if !ok {
			unmatchedPred++
			continue
		}
		matched.SetRow(len(labels), p.Probs.RawRowView(i))
		labels = append(labels, label)
	}

	if unmatchedPred > 0 || len(labels) < len(truth) {
		rep.Eventf("warning: partial label join: %d predictions without labels, %d labels without predictions",
			unmatchedPred, len(truth)-len(labels))
	}
	if len(labels) == 0 {
		rep.Eventf("warning: no predictions matched ground truth, skipping metrics")
		return nil
	}

	scored := matched.Slice(0, len(labels), 0, numClasses).(*mat.Dense)
	name, value := train.Evaluate(scored, labels)

	return &Metrics{
		MetricName: name,
		Value:      value,
		Accuracy:   accuracy(scored, labels),
		NScored:    len(labels),
		NUnmatched: unmatchedPred,
	}
}

// accuracy is the fraction of rows whose argmax probability matches the
// label.
func accuracy(probs *mat.Dense, labels []int) float64 {
	correct := 0
	for i, y := range labels {
		if floats.MaxIdx(probs.RawRowView(i)) == y {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}
