package train

import (
	"time"
)

// EpochStats is one per-epoch record of a training run.
type EpochStats struct {
	Epoch     int           `json:"epoch"`      // Zero-based epoch index
	TrainLoss float64       `json:"train_loss"` // Mean cross-entropy over finite batches
	ValMetric float64       `json:"val_metric"` // Monitored validation metric
	WallTime  time.Duration `json:"wall_time"`  // Duration of the epoch
	Restored  bool          `json:"restored"`   // True for the epoch whose weights are live in the returned model
}

// History is the append-only sequence of per-epoch records produced by one
// training run.
type History []EpochStats

// BestEpoch returns the index of the record with the highest validation
// metric, or -1 for an empty history. Ties resolve to the earliest epoch,
// matching the strict-improvement rule used during training.
func (h History) BestEpoch() int {
	best := -1
	for i, rec := range h {
		if best == -1 || rec.ValMetric > h[best].ValMetric {
			best = i
		}
	}
	return best
}
