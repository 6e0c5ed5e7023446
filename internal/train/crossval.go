package train

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/factory"
	"github.com/tatonetti-lab/Plug/internal/nn"
)

// Summary aggregates the outcome of one CrossValidate call.
type Summary struct {
	MetricName  string        `json:"metric_name"`  // Metric used for Overall and FoldMetrics
	Overall     float64       `json:"overall"`      // Metric over the pooled out-of-fold predictions
	FoldMetrics []float64     `json:"fold_metrics"` // Per-fold validation metrics
	Elapsed     time.Duration `json:"elapsed"`      // Total wall-clock time
}

// CrossValidate estimates probe performance with stratified k-fold
// cross-validation.
//
// Each of cfg.Splits folds is held out once while a fresh model, instantiated
// from spec via a new factory resolution, trains on the remaining rows; the
// held-out predictions land in the returned out-of-fold matrix at their
// global row indices, so every row receives exactly one prediction. The
// overall metric is computed over the pooled out-of-fold table rather than
// averaged across folds: pooling before scoring is more stable for small
// validation folds.
//
// Fails with ErrInvalidFoldCount when cfg.Splits exceeds the sample count of
// the smallest class.
func CrossValidate(x *mat.Dense, y []int, numClasses int, spec factory.Spec, cfg Config) (*mat.Dense, *Summary, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	start := time.Now()

	n, d := x.Dims()
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: feature matrix has no rows", ErrInsufficientData)
	}
	if len(y) != n {
		return nil, nil, fmt.Errorf("train: %d feature rows but %d labels", n, len(y))
	}
	if err := checkLabels(y, numClasses); err != nil {
		return nil, nil, err
	}

	runID := uuid.NewString()
	cfg.Reporter.Eventf("cross-validate %s: %d samples, %d features, %d classes, %d folds",
		shortID(runID), n, d, numClasses, cfg.Splits)

	rng := rand.New(rand.NewSource(cfg.Seed))
	folds, err := stratifiedKFold(y, cfg.Splits, rng)
	if err != nil {
		return nil, nil, err
	}

	oof := mat.NewDense(n, numClasses, nil)
	foldMetrics := make([]float64, 0, len(folds))

	for fi, fold := range folds {
		cfg.Reporter.Eventf("fold %d/%d: %d train rows, %d validation rows",
			fi+1, len(folds), n-len(fold), len(fold))

		trainIdx := complement(fold, n)

		// A fresh resolution per fold: no parameters or optimizer state may
		// leak across folds.
		model, _, err := factory.Resolve(spec, d, numClasses, len(trainIdx), cfg.Reporter)
		if err != nil {
			return nil, nil, err
		}

		foldRNG := rand.New(rand.NewSource(cfg.Seed + int64(fi) + 1))
		if _, err := fitModel(model, x, y, trainIdx, fold, cfg, foldRNG); err != nil {
			return nil, nil, err
		}

		probs := nn.Probabilities(model, gatherRows(x, fold), cfg.BatchSize)
		for i, row := range fold {
			oof.SetRow(row, probs.RawRowView(i))
		}
		_, foldMetric := Evaluate(probs, gatherLabels(y, fold))
		foldMetrics = append(foldMetrics, foldMetric)
	}

	metricName, overall := Evaluate(oof, y)
	summary := &Summary{
		MetricName:  metricName,
		Overall:     overall,
		FoldMetrics: foldMetrics,
		Elapsed:     time.Since(start),
	}
	cfg.Reporter.Eventf("cross-validation complete: %s=%.4f over %d pooled predictions in %s",
		metricName, overall, n, summary.Elapsed.Round(time.Millisecond))

	return oof, summary, nil
}
