package train

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/factory"
)

// eventRecorder captures reporter events for assertions.
type eventRecorder struct {
	events []string
}

func (r *eventRecorder) Progress(step, total int, metrics map[string]float64) {}

func (r *eventRecorder) Eventf(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *eventRecorder) contains(substr string) bool {
	for _, e := range r.events {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestFitModel_NonFiniteBatchLossWarnsAndContinues(t *testing.T) {
	// Row 0 carries infinite features, so every epoch the mini-batch holding
	// it produces a non-finite loss. The update must be skipped with a
	// warning while the remaining batches keep training.
	x := mat.NewDense(12, 2, nil)
	y := make([]int, 12)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 12; i++ {
		y[i] = i % 2
		center := -2.0
		if y[i] == 1 {
			center = 2.0
		}
		x.Set(i, 0, center+rng.NormFloat64()*0.5)
		x.Set(i, 1, center+rng.NormFloat64()*0.5)
	}
	x.Set(0, 0, math.Inf(1))
	x.Set(0, 1, math.Inf(1))

	model, _, err := factory.Resolve(factory.Spec{Arch: "linear"}, 2, 2, 10, nil)
	require.NoError(t, err)

	rec := &eventRecorder{}
	cfg := Config{Epochs: 3, Patience: 10, BatchSize: 4, Reporter: rec}.withDefaults()

	// The infinite row trains; validation rows stay finite.
	trainIdx := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	valIdx := []int{10, 11}

	history, err := fitModel(model, x, y, trainIdx, valIdx, cfg, rng)
	require.NoError(t, err)

	require.Len(t, history, 3)
	for _, epochRec := range history {
		assert.False(t, math.IsNaN(epochRec.TrainLoss), "epoch %d", epochRec.Epoch)
		assert.False(t, math.IsNaN(epochRec.ValMetric), "epoch %d", epochRec.Epoch)
	}
	assert.True(t, rec.contains("non-finite loss"), "expected a non-finite loss warning, got %v", rec.events)

	// The restored weights must themselves be finite: only finite batches
	// contributed updates.
	for name, value := range model.StateDict() {
		for _, v := range value.RawMatrix().Data {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "parameter %s", name)
		}
	}
}
