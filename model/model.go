package model

// Tensor is one flat numeric tensor of the global model. The orchestrator
// never interprets its contents; it only averages position-wise.
type Tensor []float64

// Parameters is the ordered list of tensors making up one model.
type Parameters []Tensor

func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for i, t := range p {
		out[i] = make(Tensor, len(t))
		copy(out[i], t)
	}

	return out
}

// SameShape reports whether other has the same tensor count and per-tensor
// lengths as p.
func (p Parameters) SameShape(other Parameters) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if len(p[i]) != len(other[i]) {
			return false
		}
	}

	return true
}

// Zeros returns parameters with p's shape and all values zero.
func (p Parameters) Zeros() Parameters {
	out := make(Parameters, len(p))
	for i, t := range p {
		out[i] = make(Tensor, len(t))
	}

	return out
}

// Global is one immutable snapshot of the shared model. The aggregation step
// is the single writer: it publishes a new snapshot with Version+1 instead of
// mutating in place, so dispatch readers never observe a partial update.
type Global struct {
	Version    int        `json:"version"`
	Parameters Parameters `json:"parameters"`
}

// Next publishes the successor snapshot carrying params.
func (g Global) Next(params Parameters) Global {
	return Global{
		Version:    g.Version + 1,
		Parameters: params,
	}
}
