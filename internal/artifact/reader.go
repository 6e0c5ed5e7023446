package artifact

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/tatonetti-lab/Plug/internal/factory"
	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/report"
)

// headerPrefixSize is the fixed prefix of the weights blob: magic bytes plus
// a uint32 format version.
const headerPrefixSize = len(MagicBytes) + 4

// Load reconstructs a persisted model from the given base path.
//
// The metadata record is read first and its specification re-resolved
// through the factory, rebuilding an untrained model of the recorded shape;
// the weights blob is then validated against the tensor manifest and loaded
// into the model. The result is numerically identical to the model that was
// saved.
//
// Fails with ErrVersionMismatch on an unrecognized format version and with
// ErrReconstructionFailed when the recorded specification cannot be resolved
// here (e.g. a custom builder not registered in this process).
func Load(base string, rep report.Reporter) (nn.Module, *Header, error) {
	if rep == nil {
		rep = report.Nop{}
	}

	metaPath := MetaPath(base)
	metaJSON, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: failed to read metadata record: %w", err)
	}
	var header Header
	if err := json.Unmarshal(metaJSON, &header); err != nil {
		return nil, nil, fmt.Errorf("artifact: failed to parse metadata record %s: %w", metaPath, err)
	}
	if header.FormatVersion != FormatVersion {
		return nil, nil, fmt.Errorf("%w: metadata records version %d, this build reads version %d",
			ErrVersionMismatch, header.FormatVersion, FormatVersion)
	}

	model, _, err := factory.Resolve(header.Spec, header.InputDim, header.NumClasses, 0, rep)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrReconstructionFailed, err)
	}

	state, err := readWeights(WeightsPath(base), header.Tensors)
	if err != nil {
		return nil, nil, err
	}
	if err := model.LoadStateDict(state); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrReconstructionFailed, err)
	}

	rep.Eventf("loaded artifacts from %s (%d tensors)", base, len(header.Tensors))
	return model, &header, nil
}

// readWeights parses the weights blob into a state dict per the tensor
// manifest.
func readWeights(path string, tensors []TensorMeta) (map[string]*mat.Dense, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: failed to read weights blob: %w", err)
	}
	if len(blob) < headerPrefixSize || string(blob[:len(MagicBytes)]) != MagicBytes {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMagic, path)
	}
	version := binary.LittleEndian.Uint32(blob[len(MagicBytes):headerPrefixSize])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: weights blob records version %d, this build reads version %d",
			ErrVersionMismatch, version, FormatVersion)
	}

	data := blob[headerPrefixSize:]
	state := make(map[string]*mat.Dense, len(tensors))
	for _, tm := range tensors {
		if len(tm.Shape) != 2 {
			return nil, fmt.Errorf("%w: tensor %q has shape %v, want 2 dimensions", ErrCorruptWeights, tm.Name, tm.Shape)
		}
		rows, cols := tm.Shape[0], tm.Shape[1]
		if tm.Offset < 0 || tm.Size != int64(rows*cols*8) || tm.Offset+tm.Size > int64(len(data)) {
			return nil, fmt.Errorf("%w: tensor %q (offset %d, size %d) out of bounds for %d data bytes",
				ErrCorruptWeights, tm.Name, tm.Offset, tm.Size, len(data))
		}

		values := make([]float64, rows*cols)
		if err := binary.Read(bytes.NewReader(data[tm.Offset:tm.Offset+tm.Size]), binary.LittleEndian, values); err != nil {
			return nil, fmt.Errorf("artifact: failed to read tensor %q: %w", tm.Name, err)
		}
		state[tm.Name] = mat.NewDense(rows, cols, values)
	}
	return state, nil
}
