package train

import (
	"fmt"

	"github.com/tatonetti-lab/Plug/internal/report"
)

// Config holds the training hyperparameters for Fit and CrossValidate.
//
// Zero-valued fields are replaced with defaults, so the zero Config is a
// usable configuration.
type Config struct {
	Epochs       int     // Maximum training epochs (default: 100)
	ValSplit     float64 // Fraction of rows held out for validation in Fit (default: 0.2)
	Patience     int     // Epochs without strict improvement before early stop (default: 10)
	LearningRate float64 // Optimizer learning rate (default: 1e-3)
	BatchSize    int     // Mini-batch size (default: 32)
	Optimizer    string  // "adam" (default) or "sgd"
	Splits       int     // Fold count for CrossValidate (default: 5)
	Seed         int64   // Seed for splits and batch shuffling (default: 1)

	Reporter report.Reporter // Progress/event sink (default: report.Nop)
}

// Optimizer names accepted by Config.Optimizer.
const (
	OptimizerAdam = "adam"
	OptimizerSGD  = "sgd"
)

// withDefaults returns a copy of c with defaults filled in for zero-valued
// fields.
func (c Config) withDefaults() Config {
	if c.Epochs == 0 {
		c.Epochs = 100
	}
	if c.ValSplit == 0 {
		c.ValSplit = 0.2
	}
	if c.Patience == 0 {
		c.Patience = 10
	}
	if c.LearningRate == 0 {
		c.LearningRate = 1e-3
	}
	if c.BatchSize == 0 {
		c.BatchSize = 32
	}
	if c.Optimizer == "" {
		c.Optimizer = OptimizerAdam
	}
	if c.Splits == 0 {
		c.Splits = 5
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Reporter == nil {
		c.Reporter = report.Nop{}
	}
	return c
}

// validate rejects hyperparameters outside their valid range. Runs after
// withDefaults, so zero values have already been replaced and only
// explicitly set fields can fail.
func (c Config) validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidConfig, c.Epochs)
	}
	if c.Patience < 1 {
		return fmt.Errorf("%w: patience must be positive, got %d", ErrInvalidConfig, c.Patience)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrInvalidConfig, c.LearningRate)
	}
	if c.ValSplit < 0 || c.ValSplit >= 1 {
		return fmt.Errorf("%w: validation split must be in [0, 1), got %g", ErrInvalidConfig, c.ValSplit)
	}
	return nil
}
