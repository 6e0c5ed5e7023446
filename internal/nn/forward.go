package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Probabilities runs x through the model in mini-batches and returns the
// softmax of the logits, one probability row per input row.
//
// No gradients are tracked; the model is treated as read-only. batchSize <= 0
// processes all rows in a single batch.
func Probabilities(m Module, x *mat.Dense, batchSize int) *mat.Dense {
	rows, _ := x.Dims()
	if batchSize <= 0 || batchSize > rows {
		batchSize = rows
	}

	var out *mat.Dense
	for start := 0; start < rows; start += batchSize {
		end := start + batchSize
		if end > rows {
			end = rows
		}
		batch := x.Slice(start, end, 0, x.RawMatrix().Cols).(*mat.Dense)
		probs := Softmax(m.Forward(batch))

		if out == nil {
			_, classes := probs.Dims()
			out = mat.NewDense(rows, classes, nil)
		}
		for i := start; i < end; i++ {
			out.SetRow(i, probs.RawRowView(i-start))
		}
	}
	return out
}

// NumParams returns the total number of scalar parameters in the model.
func NumParams(m Module) int {
	total := 0
	for _, p := range m.Parameters() {
		r, c := p.Value().Dims()
		total += r * c
	}
	return total
}
