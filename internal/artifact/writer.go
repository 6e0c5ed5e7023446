package artifact

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/tatonetti-lab/Plug/internal/factory"
	"github.com/tatonetti-lab/Plug/internal/nn"
	"github.com/tatonetti-lab/Plug/internal/report"
)

// Save persists a trained model at the given base path.
//
// It writes two linked files: base+".weights" (binary parameter blob) and
// base+".meta.json" (metadata record with the reconstruction recipe, the
// dimensions, the tensor manifest, and any caller-supplied metadata). Both
// files are whole-file replacements, never appended to.
//
// spec must be the canonical specification returned by the factory for this
// model, so that Load can rebuild the exact same shape.
//
// Returns the weights path and the metadata path.
func Save(model nn.Module, base string, spec factory.Spec, inputDim, numClasses int, meta map[string]string, rep report.Reporter) (weightsPath, metaPath string, err error) {
	if rep == nil {
		rep = report.Nop{}
	}
	weightsPath = WeightsPath(base)
	metaPath = MetaPath(base)

	state := model.StateDict()
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		PlugVersion:   toolkitVersion,
		CreatedAt:     time.Now().UTC(),
		Spec:          spec,
		InputDim:      inputDim,
		NumClasses:    numClasses,
		Metadata:      meta,
	}

	var blob bytes.Buffer
	if _, err = blob.WriteString(MagicBytes); err != nil {
		return "", "", fmt.Errorf("artifact: failed to write magic bytes: %w", err)
	}
	if err = binary.Write(&blob, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return "", "", fmt.Errorf("artifact: failed to write version: %w", err)
	}

	var offset int64
	for _, name := range names {
		value := state[name]
		rows, cols := value.Dims()
		size := int64(rows * cols * 8)

		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			Shape:  []int{rows, cols},
			Offset: offset,
			Size:   size,
		})
		offset += size

		for i := 0; i < rows; i++ {
			if err = binary.Write(&blob, binary.LittleEndian, value.RawRowView(i)); err != nil {
				return "", "", fmt.Errorf("artifact: failed to write tensor %q: %w", name, err)
			}
		}
	}

	headerJSON, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("artifact: failed to marshal metadata: %w", err)
	}

	if err = os.WriteFile(metaPath, append(headerJSON, '\n'), 0o644); err != nil {
		return "", "", fmt.Errorf("artifact: failed to write metadata record: %w", err)
	}
	if err = os.WriteFile(weightsPath, blob.Bytes(), 0o644); err != nil {
		return "", "", fmt.Errorf("artifact: failed to write weights blob: %w", err)
	}

	rep.Eventf("saved artifacts to %s and %s (%d tensors, %d bytes of weights)",
		weightsPath, metaPath, len(header.Tensors), offset)
	return weightsPath, metaPath, nil
}
