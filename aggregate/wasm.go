package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cairo-thws/fedt4t/model"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Wasm runs a deployment-provided aggregation rule compiled to a WASI command
// module. The module reads a JSON request on stdin and writes the aggregated
// parameters as JSON to stdout. Everything else about the rule is opaque to
// the orchestrator.
type Wasm struct {
	binary []byte
}

type wasmRequest struct {
	Prior   model.Parameters `json:"prior"`
	Updates []Update         `json:"updates"`
	Weights map[int]float64  `json:"weights"`
}

func NewWasm(path string) (*Wasm, error) {
	binary, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wasm aggregator: %w", err)
	}

	return &Wasm{binary: binary}, nil
}

func (w *Wasm) Aggregate(prior model.Parameters, updates []Update, weights map[int]float64) (model.Parameters, error) {
	ctx := context.Background()

	in, err := json.Marshal(wasmRequest{Prior: prior, Updates: updates, Weights: weights})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal aggregation request: %w", err)
	}

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	var out bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("aggregator").
		WithStdin(bytes.NewReader(in)).
		WithStdout(&out)

	if _, err := r.InstantiateWithConfig(ctx, w.binary, cfg); err != nil {
		return nil, errors.Join(errors.New("wasm aggregator execution failed"), err)
	}

	var params model.Parameters
	if err := json.Unmarshal(out.Bytes(), &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal aggregated parameters: %w", err)
	}
	if !prior.SameShape(params) {
		return nil, fmt.Errorf("wasm aggregator returned parameters with a different shape")
	}

	return params, nil
}
