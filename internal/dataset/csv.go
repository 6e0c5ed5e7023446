// Package dataset reads feature tables from delimited files and writes
// prediction and metrics records.
//
// The expected input layout is one header row followed by one row per
// sample: an identifier column, numeric feature columns, and optionally an
// integer label column. Any column that is neither the identifier nor the
// label is treated as a feature.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Table is an in-memory feature table.
type Table struct {
	IDs          []string
	FeatureNames []string
	Features     *mat.Dense // [len(IDs), len(FeatureNames)]
	Labels       []int      // Aligned with IDs; empty when HasLabels is false
	HasLabels    bool
}

// ReadCSV loads a feature table from a CSV file.
//
// idCol names the identifier column; when the header has no such column,
// zero-based row numbers are used as identifiers. labelCol names the label
// column and may be empty (or absent from the header) for unlabeled data.
func ReadCSV(path, idCol, labelCol string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset: %s needs a header row and at least one data row", path)
	}

	header := records[0]
	idIdx, labelIdx := -1, -1
	var featureIdx []int
	var featureNames []string
	for i, name := range header {
		// Empty idCol/labelCol mean "no such column"; they must never
		// swallow an unnamed header column, which stays a feature.
		switch {
		case idCol != "" && name == idCol:
			idIdx = i
		case labelCol != "" && name == labelCol:
			labelIdx = i
		default:
			featureIdx = append(featureIdx, i)
			featureNames = append(featureNames, name)
		}
	}
	if len(featureIdx) == 0 {
		return nil, fmt.Errorf("dataset: %s has no feature columns", path)
	}

	rows := records[1:]
	table := &Table{
		IDs:          make([]string, len(rows)),
		FeatureNames: featureNames,
		Features:     mat.NewDense(len(rows), len(featureIdx), nil),
		HasLabels:    labelIdx >= 0,
	}
	if table.HasLabels {
		table.Labels = make([]int, len(rows))
	}

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("dataset: %s row %d has %d columns, header has %d", path, i+2, len(row), len(header))
		}
		if idIdx >= 0 {
			table.IDs[i] = row[idIdx]
		} else {
			table.IDs[i] = strconv.Itoa(i)
		}
		for j, col := range featureIdx {
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s row %d column %q: %w", path, i+2, header[col], err)
			}
			table.Features.Set(i, j, v)
		}
		if table.HasLabels {
			label, err := strconv.Atoi(row[labelIdx])
			if err != nil {
				return nil, fmt.Errorf("dataset: %s row %d column %q: %w", path, i+2, labelCol, err)
			}
			table.Labels[i] = label
		}
	}
	return table, nil
}

// LabelMap returns the table's labels keyed by identifier, for joining
// against predictions.
func (t *Table) LabelMap() map[string]int {
	if !t.HasLabels {
		return nil
	}
	m := make(map[string]int, len(t.IDs))
	for i, id := range t.IDs {
		m[id] = t.Labels[i]
	}
	return m
}

// NumClasses returns one more than the largest label, the class count
// implied by the labels.
func (t *Table) NumClasses() int {
	max := -1
	for _, y := range t.Labels {
		if y > max {
			max = y
		}
	}
	return max + 1
}

// WritePredictions writes one row per sample with an identifier column and
// one probability column per class ("prob_0", "prob_1", ...).
func WritePredictions(path string, ids []string, probs *mat.Dense) error {
	rows, cols := probs.Dims()
	if len(ids) != rows {
		return fmt.Errorf("dataset: %d identifiers but %d probability rows", len(ids), rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, cols+1)
	header = append(header, "id")
	for c := 0; c < cols; c++ {
		header = append(header, fmt.Sprintf("prob_%d", c))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}

	record := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		record[0] = ids[i]
		for c := 0; c < cols; c++ {
			record[c+1] = strconv.FormatFloat(probs.At(i, c), 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("dataset: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	return nil
}

// WriteJSON writes a structured record (e.g. a metrics record or a
// cross-validation summary) as indented JSON.
func WriteJSON(path string, record any) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	return nil
}
