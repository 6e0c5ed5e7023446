package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/parallel"
)

// CrossEntropyLoss computes cross-entropy loss for multi-class classification.
//
// The forward pass uses the log-sum-exp decomposition for numerical
// stability:
//
//	loss = mean_i( logsumexp(logits_i) - logits_i[target_i] )
//
// The backward pass uses the analytic gradient:
//
//	dL/dlogits = (softmax(logits) - one_hot(targets)) / batch_size
//
// Expects raw logits (unnormalized scores) as input, never probabilities.
type CrossEntropyLoss struct {
	probs   *mat.Dense // softmax(logits), cached by Forward
	targets []int
}

// NewCrossEntropyLoss creates a new cross-entropy loss function.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy over the batch.
//
// logits has shape [batch_size, num_classes]; targets holds one class index
// in [0, num_classes) per batch row.
func (c *CrossEntropyLoss) Forward(logits *mat.Dense, targets []int) float64 {
	rows, cols := logits.Dims()
	if len(targets) != rows {
		panic(fmt.Sprintf("nn: cross-entropy batch size mismatch: %d logits rows, %d targets", rows, len(targets)))
	}

	c.probs = Softmax(logits)
	c.targets = targets

	var sum float64
	for i := 0; i < rows; i++ {
		t := targets[i]
		if t < 0 || t >= cols {
			panic(fmt.Sprintf("nn: target %d out of range [0, %d)", t, cols))
		}
		row := logits.RawRowView(i)
		maxv := floats.Max(row)
		var lse float64
		for _, v := range row {
			lse += math.Exp(v - maxv)
		}
		lse = maxv + math.Log(lse)
		sum += lse - row[t]
	}
	return sum / float64(rows)
}

// Backward returns the gradient of the mean loss with respect to the logits.
func (c *CrossEntropyLoss) Backward() *mat.Dense {
	if c.probs == nil {
		panic("nn: CrossEntropyLoss.Backward called before Forward")
	}
	rows, cols := c.probs.Dims()
	grad := mat.NewDense(rows, cols, nil)
	grad.Copy(c.probs)
	inv := 1.0 / float64(rows)
	for i := 0; i < rows; i++ {
		row := grad.RawRowView(i)
		row[c.targets[i]] -= 1.0
		for j := range row {
			row[j] *= inv
		}
	}
	return grad
}

// Softmax applies a numerically stable row-wise softmax to the logits.
//
// Each output row is non-negative and sums to 1. Rows are independent, so
// large batches are processed across workers; training-sized mini-batches
// stay on the calling goroutine.
func Softmax(logits *mat.Dense) *mat.Dense {
	rows, cols := logits.Dims()
	out := mat.NewDense(rows, cols, nil)
	parallel.For(rows, func(i int) {
		in := logits.RawRowView(i)
		o := out.RawRowView(i)
		maxv := floats.Max(in)
		for j, v := range in {
			o[j] = math.Exp(v - maxv)
		}
		total := floats.Sum(o)
		for j := range o {
			o[j] /= total
		}
	}, parallel.DefaultConfig())
	return out
}
