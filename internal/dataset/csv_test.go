package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/dataset"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_Labeled(t *testing.T) {
	path := writeFile(t, "train.csv",
		"id,f0,f1,label\n"+
			"a,1.5,-2,0\n"+
			"b,0.25,3.5,1\n"+
			"c,0,0.5,2\n")

	table, err := dataset.ReadCSV(path, "id", "label")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, table.IDs)
	assert.Equal(t, []string{"f0", "f1"}, table.FeatureNames)
	assert.True(t, table.HasLabels)
	assert.Equal(t, []int{0, 1, 2}, table.Labels)
	assert.Equal(t, 3, table.NumClasses())
	assert.Equal(t, 1.5, table.Features.At(0, 0))
	assert.Equal(t, 3.5, table.Features.At(1, 1))
}

func TestReadCSV_UnlabeledUsesRowNumbers(t *testing.T) {
	path := writeFile(t, "infer.csv",
		"f0,f1\n"+
			"1,2\n"+
			"3,4\n")

	table, err := dataset.ReadCSV(path, "id", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, table.IDs)
	assert.False(t, table.HasLabels)
	assert.Empty(t, table.Labels)
	assert.Equal(t, []string{"f0", "f1"}, table.FeatureNames)
}

func TestReadCSV_EmptyLabelColKeepsColumnAsFeature(t *testing.T) {
	// With no label column configured, a "label" column is just another
	// feature.
	path := writeFile(t, "infer.csv",
		"id,f0,label\n"+
			"a,1,0\n")

	table, err := dataset.ReadCSV(path, "id", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"f0", "label"}, table.FeatureNames)
	assert.False(t, table.HasLabels)
}

func TestReadCSV_UnnamedColumnStaysFeature(t *testing.T) {
	// An empty label column name must not match a header column with an
	// empty name; the unnamed column is data.
	path := writeFile(t, "infer.csv",
		"id,f0,,f1\n"+
			"a,1,2,3\n")

	table, err := dataset.ReadCSV(path, "id", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"f0", "", "f1"}, table.FeatureNames)
	assert.Equal(t, 2.0, table.Features.At(0, 1))
	assert.False(t, table.HasLabels)
}

func TestReadCSV_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := dataset.ReadCSV(filepath.Join(t.TempDir(), "nope.csv"), "id", "label")
		require.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		path := writeFile(t, "empty.csv", "id,f0,label\n")
		_, err := dataset.ReadCSV(path, "id", "label")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one data row")
	})

	t.Run("no feature columns", func(t *testing.T) {
		path := writeFile(t, "bare.csv", "id,label\na,0\n")
		_, err := dataset.ReadCSV(path, "id", "label")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no feature columns")
	})

	t.Run("non-numeric feature", func(t *testing.T) {
		path := writeFile(t, "bad.csv", "id,f0,label\na,oops,0\n")
		_, err := dataset.ReadCSV(path, "id", "label")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `column "f0"`)
	})

	t.Run("non-integer label", func(t *testing.T) {
		path := writeFile(t, "bad.csv", "id,f0,label\na,1,positive\n")
		_, err := dataset.ReadCSV(path, "id", "label")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `column "label"`)
	})
}

func TestLabelMap(t *testing.T) {
	path := writeFile(t, "train.csv", "id,f0,label\na,1,0\nb,2,1\n")
	table, err := dataset.ReadCSV(path, "id", "label")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"a": 0, "b": 1}, table.LabelMap())
}

func TestLabelMap_UnlabeledIsNil(t *testing.T) {
	path := writeFile(t, "infer.csv", "id,f0\na,1\n")
	table, err := dataset.ReadCSV(path, "id", "")
	require.NoError(t, err)

	assert.Nil(t, table.LabelMap())
}

func TestWritePredictions_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preds.csv")
	ids := []string{"a", "b"}
	probs := mat.NewDense(2, 3, []float64{
		0.5, 0.25, 0.25,
		0.1, 0.2, 0.7,
	})

	require.NoError(t, dataset.WritePredictions(path, ids, probs))

	// Probability columns read back as features against the "id" column.
	table, err := dataset.ReadCSV(path, "id", "")
	require.NoError(t, err)
	assert.Equal(t, ids, table.IDs)
	assert.Equal(t, []string{"prob_0", "prob_1", "prob_2"}, table.FeatureNames)
	assert.Equal(t, 0.25, table.Features.At(0, 1))
	assert.Equal(t, 0.7, table.Features.At(1, 2))
}

func TestWritePredictions_CountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preds.csv")
	probs := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	err := dataset.WritePredictions(path, []string{"a"}, probs)
	require.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	record := map[string]any{"metric_name": "roc_auc", "value": 0.9}

	require.NoError(t, dataset.WriteJSON(path, record))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"metric_name": "roc_auc"`)
	assert.Equal(t, byte('\n'), data[len(data)-1])
}
