// Copyright 2026 The Plug Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package probe

import (
	"github.com/tatonetti-lab/Plug/internal/artifact"
	"github.com/tatonetti-lab/Plug/internal/factory"
	"github.com/tatonetti-lab/Plug/internal/predict"
	"github.com/tatonetti-lab/Plug/internal/train"
)

// Error kinds surfaced by the toolkit. All are fatal to the operation in
// progress; match with errors.Is.
var (
	ErrUnknownArchitecture  = factory.ErrUnknownArchitecture
	ErrUnknownBuilder       = factory.ErrUnknownBuilder
	ErrInvalidModelSpec     = factory.ErrInvalidModelSpec
	ErrInsufficientData     = train.ErrInsufficientData
	ErrInvalidFoldCount     = train.ErrInvalidFoldCount
	ErrInvalidConfig        = train.ErrInvalidConfig
	ErrVersionMismatch      = artifact.ErrVersionMismatch
	ErrReconstructionFailed = artifact.ErrReconstructionFailed
	ErrDimensionMismatch    = predict.ErrDimensionMismatch
)
