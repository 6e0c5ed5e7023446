// Package train implements the training loop engine and the cross-validation
// orchestrator for probe models.
//
// Fit runs gradient-based optimization over an internal stratified
// train/validation split, monitors a validation metric per epoch, stops early
// when the metric plateaus, and restores the best-observed weights before
// returning. CrossValidate drives Fit once per stratified fold and scores the
// pooled out-of-fold predictions.
package train

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/factory"
	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/optim"
)

// Result is the outcome of one Fit call.
type Result struct {
	Model   nn.Module    // Trained model with best-observed weights restored
	Spec    factory.Spec // Canonical reconstruction recipe for the model
	History History      // One record per completed epoch
	RunID   string       // Unique identifier of this training run
}

// Fit trains a probe on the given features and labels.
//
// x has one row per sample; y holds one class index in [0, numClasses) per
// row. The data is split into stratified train/validation subsets per
// cfg.ValSplit, the model is instantiated from spec via the factory, and
// optimization runs for at most cfg.Epochs epochs with patience-based early
// stopping on the validation metric. The returned model carries the weights
// of the best validation epoch, not the last one.
//
// Fails with ErrInsufficientData when x has no rows and with
// ErrInvalidConfig when a hyperparameter is outside its valid range.
func Fit(x *mat.Dense, y []int, numClasses int, spec factory.Spec, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n, d := x.Dims()
	if n == 0 {
		return nil, fmt.Errorf("%w: feature matrix has no rows", ErrInsufficientData)
	}
	if len(y) != n {
		return nil, fmt.Errorf("train: %d feature rows but %d labels", n, len(y))
	}
	if err := checkLabels(y, numClasses); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	cfg.Reporter.Eventf("fit %s: %d samples, %d features, %d classes", shortID(runID), n, d, numClasses)

	rng := rand.New(rand.NewSource(cfg.Seed))
	trainIdx, valIdx := stratifiedSplit(y, cfg.ValSplit, rng)

	model, canonical, err := factory.Resolve(spec, d, numClasses, len(trainIdx), cfg.Reporter)
	if err != nil {
		return nil, err
	}

	history, err := fitModel(model, x, y, trainIdx, valIdx, cfg, rng)
	if err != nil {
		return nil, err
	}

	return &Result{
		Model:   model,
		Spec:    canonical,
		History: history,
		RunID:   runID,
	}, nil
}

// earlyStopper tracks the best validation metric and decides when training
// should halt.
//
// Improvement must be strict; after patience consecutive epochs without it,
// Observe reports stop. The snapshot of the best epoch is kept by the caller.
type earlyStopper struct {
	patience  int
	best      float64
	bestEpoch int
	wait      int
}

func newEarlyStopper(patience int) *earlyStopper {
	return &earlyStopper{
		patience:  patience,
		best:      math.Inf(-1),
		bestEpoch: -1,
	}
}

// Observe records the metric for one epoch and reports whether it improved
// on the best so far and whether training should stop.
func (e *earlyStopper) Observe(epoch int, metric float64) (improved, stop bool) {
	if metric > e.best {
		e.best = metric
		e.bestEpoch = epoch
		e.wait = 0
		return true, false
	}
	e.wait++
	return false, e.wait >= e.patience
}

// fitModel runs the optimization loop over a fixed train/validation index
// split, returning the per-epoch history. On return the model holds the
// weights of the best validation epoch.
func fitModel(model nn.Module, x *mat.Dense, y []int, trainIdx, valIdx []int, cfg Config, rng *rand.Rand) (History, error) {
	if len(trainIdx) == 0 {
		return nil, fmt.Errorf("%w: no training rows after validation split", ErrInsufficientData)
	}
	if len(valIdx) == 0 {
		// Degenerate single-row dataset; monitor on the training subset so
		// the loop still has a metric to track.
		cfg.Reporter.Eventf("warning: empty validation subset, monitoring on training rows")
		valIdx = trainIdx
	}

	criterion := nn.NewCrossEntropyLoss()
	opt, err := newOptimizer(model, cfg)
	if err != nil {
		return nil, err
	}

	stopper := newEarlyStopper(cfg.Patience)
	var snapshot map[string]*mat.Dense
	var history History

	valX := gatherRows(x, valIdx)
	valY := gatherLabels(y, valIdx)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		start := time.Now()

		rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })

		var lossSum float64
		var batches int
		for begin := 0; begin < len(trainIdx); begin += cfg.BatchSize {
			end := begin + cfg.BatchSize
			if end > len(trainIdx) {
				end = len(trainIdx)
			}
			batchIdx := trainIdx[begin:end]

			loss := criterion.Forward(model.Forward(gatherRows(x, batchIdx)), gatherLabels(y, batchIdx))
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				// A single bad batch should not discard the run; skip the
				// update and keep going.
				cfg.Reporter.Eventf("warning: non-finite loss in epoch %d, skipping batch update", epoch+1)
				continue
			}

			opt.ZeroGrad()
			model.Backward(criterion.Backward())
			opt.Step()

			lossSum += loss
			batches++
		}

		trainLoss := math.NaN()
		if batches > 0 {
			trainLoss = lossSum / float64(batches)
		}

		metricName, valMetric := Evaluate(nn.Probabilities(model, valX, cfg.BatchSize), valY)

		history = append(history, EpochStats{
			Epoch:     epoch,
			TrainLoss: trainLoss,
			ValMetric: valMetric,
			WallTime:  time.Since(start),
		})
		cfg.Reporter.Progress(epoch+1, cfg.Epochs, map[string]float64{
			"loss":     trainLoss,
			metricName: valMetric,
		})

		improved, stop := stopper.Observe(epoch, valMetric)
		if improved {
			snapshot = nn.CloneState(model.StateDict())
		}
		if stop {
			cfg.Reporter.Eventf("early stop at epoch %d: no %s improvement for %d epochs (best %.4f at epoch %d)",
				epoch+1, metricName, cfg.Patience, stopper.best, stopper.bestEpoch+1)
			break
		}
	}

	if snapshot != nil {
		if err := model.LoadStateDict(snapshot); err != nil {
			return nil, fmt.Errorf("train: restoring best weights: %w", err)
		}
		history[stopper.bestEpoch].Restored = true
		cfg.Reporter.Eventf("restored best weights from epoch %d", stopper.bestEpoch+1)
	}

	return history, nil
}

// newOptimizer builds the configured optimizer over the model parameters.
func newOptimizer(model nn.Module, cfg Config) (optim.Optimizer, error) {
	switch cfg.Optimizer {
	case OptimizerAdam:
		return optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.LearningRate}), nil
	case OptimizerSGD:
		return optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: cfg.LearningRate}), nil
	default:
		return nil, fmt.Errorf("train: unknown optimizer %q (want %q or %q)", cfg.Optimizer, OptimizerAdam, OptimizerSGD)
	}
}

// checkLabels verifies every label lies in [0, numClasses).
func checkLabels(y []int, numClasses int) error {
	for i, label := range y {
		if label < 0 || label >= numClasses {
			return fmt.Errorf("train: label %d at row %d outside [0, %d)", label, i, numClasses)
		}
	}
	return nil
}

// gatherRows copies the given rows of x into a new matrix.
func gatherRows(x *mat.Dense, idx []int) *mat.Dense {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, row := range idx {
		out.SetRow(i, x.RawRowView(row))
	}
	return out
}

// gatherLabels copies the given entries of y into a new slice.
func gatherLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, row := range idx {
		out[i] = y[row]
	}
	return out
}

// shortID abbreviates a run UUID for log lines.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
