package predict_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/artifact"
	"github.com/tatonetti-lab/Plug/internal/factory"
	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/predict"
)

func testModel(t *testing.T, inputDim, numClasses int) (nn.Module, *artifact.Header) {
	t.Helper()
	spec := factory.Spec{Arch: "linear"}
	model, canonical, err := factory.Resolve(spec, inputDim, numClasses, 0, nil)
	require.NoError(t, err)
	return model, &artifact.Header{
		FormatVersion: artifact.FormatVersion,
		Spec:          canonical,
		InputDim:      inputDim,
		NumClasses:    numClasses,
	}
}

func testFeatures(rows, cols int, seed int64) (*mat.Dense, []string) {
	rng := rand.New(rand.NewSource(seed))
	x := mat.NewDense(rows, cols, nil)
	ids := make([]string, rows)
	for i := 0; i < rows; i++ {
		ids[i] = fmt.Sprintf("s%03d", i)
		for j := 0; j < cols; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
	}
	return x, ids
}

func TestRun_ProbabilitiesSumToOne(t *testing.T) {
	model, header := testModel(t, 4, 3)
	x, ids := testFeatures(25, 4, 1)

	preds, err := predict.Run(model, header, x, ids, predict.Config{BatchSize: 8})
	require.NoError(t, err)

	rows, cols := preds.Probs.Dims()
	require.Equal(t, 25, rows)
	require.Equal(t, 3, cols)
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			v := preds.Probs.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-5, "row %d", i)
	}
}

func TestRun_DimensionMismatch(t *testing.T) {
	model, header := testModel(t, 5, 2)
	x, ids := testFeatures(10, 3, 2)

	_, err := predict.Run(model, header, x, ids, predict.Config{})

	require.Error(t, err)
	assert.ErrorIs(t, err, predict.ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "trained on 5 features, input has 3")
}

func TestRun_IDCountMismatch(t *testing.T) {
	model, header := testModel(t, 4, 2)
	x, _ := testFeatures(10, 4, 3)

	_, err := predict.Run(model, header, x, []string{"only-one"}, predict.Config{})
	require.Error(t, err)
}

func TestScore_FullOverlap(t *testing.T) {
	model, header := testModel(t, 4, 2)
	x, ids := testFeatures(20, 4, 4)

	preds, err := predict.Run(model, header, x, ids, predict.Config{})
	require.NoError(t, err)

	truth := make(map[string]int, len(ids))
	for i, id := range ids {
		truth[id] = i % 2
	}

	metrics := preds.Score(truth, nil)
	require.NotNil(t, metrics)
	assert.Equal(t, 20, metrics.NScored)
	assert.Equal(t, 0, metrics.NUnmatched)
	assert.GreaterOrEqual(t, metrics.Accuracy, 0.0)
	assert.LessOrEqual(t, metrics.Accuracy, 1.0)
}

func TestScore_PartialOverlapDoesNotAbort(t *testing.T) {
	model, header := testModel(t, 4, 2)
	x, ids := testFeatures(20, 4, 5)

	preds, err := predict.Run(model, header, x, ids, predict.Config{})
	require.NoError(t, err)

	// Labels for only half the predictions, plus one label with no
	// prediction at all.
	truth := map[string]int{"unseen": 1}
	for i := 0; i < 10; i++ {
		truth[ids[i]] = i % 2
	}

	metrics := preds.Score(truth, nil)
	require.NotNil(t, metrics)
	assert.Equal(t, 10, metrics.NScored)
	assert.Equal(t, 10, metrics.NUnmatched)
}

func TestScore_NoOverlapReturnsNil(t *testing.T) {
	model, header := testModel(t, 4, 2)
	x, ids := testFeatures(5, 4, 6)

	preds, err := predict.Run(model, header, x, ids, predict.Config{})
	require.NoError(t, err)

	assert.Nil(t, preds.Score(map[string]int{"other": 0}, nil))
}
