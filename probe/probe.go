// Copyright 2026 The Plug Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package probe is the public API for training, evaluating, persisting, and
// applying small classifier probes over fixed-size feature vectors.
//
// Quick start:
//
//	result, err := probe.Fit(features, labels, 2, probe.Spec{Arch: "mlp"}, probe.Config{
//	    Epochs:   50,
//	    Patience: 5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_, _, err = probe.Save(result.Model, "out/probe", result.Spec, dim, 2, nil, nil)
package probe

import (
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/artifact"
	"github.com/tatonetti-lab/Plug/internal/factory"
	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/predict"
	"github.com/tatonetti-lab/Plug/internal/report"
	"github.com/tatonetti-lab/Plug/internal/train"
)

// Model is an instantiated probe: a composable computation graph with a
// forward pass and trainable parameters. The training and persistence layers
// never inspect architecture internals beyond this contract.
type Model = nn.Module

// Spec is the serializable model specification: a builtin architecture name
// or a symbolic reference to a registered custom builder, plus keyword
// arguments.
type Spec = factory.Spec

// Builder constructs a model from an input width, a class count, and keyword
// arguments.
type Builder = factory.Builder

// Config holds training hyperparameters; zero-valued fields take defaults.
type Config = train.Config

// Result is the outcome of one Fit call.
type Result = train.Result

// History is the per-epoch record sequence of one training run.
type History = train.History

// EpochStats is one per-epoch history record.
type EpochStats = train.EpochStats

// Summary aggregates a cross-validation run.
type Summary = train.Summary

// Header is the artifact metadata record.
type Header = artifact.Header

// Predictions holds per-row class probabilities aligned with identifiers.
type Predictions = predict.Predictions

// Metrics is a held-out metrics record.
type Metrics = predict.Metrics

// Reporter receives progress updates and diagnostic events.
type Reporter = report.Reporter

// Fit trains a probe on the given features and labels.
//
// See the train package for the full contract: stratified validation split,
// early stopping with patience, and best-weights restoration.
func Fit(x *mat.Dense, y []int, numClasses int, spec Spec, cfg Config) (*Result, error) {
	return train.Fit(x, y, numClasses, spec, cfg)
}

// CrossValidate estimates probe performance with stratified k-fold
// cross-validation, returning the out-of-fold probability table and a
// summary scored over the pooled predictions.
func CrossValidate(x *mat.Dense, y []int, numClasses int, spec Spec, cfg Config) (*mat.Dense, *Summary, error) {
	return train.CrossValidate(x, y, numClasses, spec, cfg)
}

// Save persists a trained model as a weights blob plus a metadata record at
// the shared base path.
func Save(model Model, base string, spec Spec, inputDim, numClasses int, meta map[string]string, rep Reporter) (weightsPath, metaPath string, err error) {
	return artifact.Save(model, base, spec, inputDim, numClasses, meta, rep)
}

// Load reconstructs a persisted model and its metadata record from the base
// path.
func Load(base string, rep Reporter) (Model, *Header, error) {
	return artifact.Load(base, rep)
}

// Predict applies a loaded model to new feature rows, returning per-row
// class probabilities.
func Predict(model Model, header *Header, x *mat.Dense, ids []string, batchSize int, rep Reporter) (*Predictions, error) {
	return predict.Run(model, header, x, ids, predict.Config{BatchSize: batchSize, Reporter: rep})
}

// RegisterBuilder registers a custom model builder under a stable symbolic
// name so specifications (and persisted artifacts) can reference it.
//
// The name, not the function, is what artifacts record: loading an artifact
// that references a builder requires the same registration in the loading
// process.
func RegisterBuilder(name string, b Builder) {
	factory.RegisterBuilder(name, b)
}

// NewConsoleReporter returns a reporter rendering a progress bar and event
// lines to w (stderr when w is nil).
func NewConsoleReporter(w io.Writer, description string) Reporter {
	return report.NewConsole(w, description)
}
