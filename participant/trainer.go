package participant

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cairo-thws/fedt4t/model"
)

// Trainer is the opaque local training capability of one participant. The
// orchestrator never sees it; it only receives the returned parameters and
// counts through the dispatch layer.
type Trainer interface {
	Fit(params model.Parameters, config map[string]any) (model.Parameters, int, map[string]float64, error)
	Evaluate(params model.Parameters, config map[string]any) (float64, int, map[string]float64, error)
}

// SGDTrainer fits a logistic model on a synthetic partition by plain
// gradient descent. Partitions are skewed per agent so contributions differ,
// which is what the weighting machinery exists to absorb.
type SGDTrainer struct {
	partition int
	features  int
	examples  [][]float64
	labels    []float64
	epochs    int
	lr        float64
}

func NewSGDTrainer(partition, numExamples, features, epochs int, lr float64, seed int64) *SGDTrainer {
	rng := rand.New(rand.NewSource(seed*7919 + int64(partition)))

	// A hidden per-partition hyperplane; partitions disagree slightly, so the
	// global model has something to average over.
	truth := make([]float64, features)
	for i := range truth {
		truth[i] = rng.NormFloat64() + 0.3*float64(partition%5)
	}

	t := &SGDTrainer{
		partition: partition,
		features:  features,
		examples:  make([][]float64, numExamples),
		labels:    make([]float64, numExamples),
		epochs:    epochs,
		lr:        lr,
	}
	for i := range t.examples {
		x := make([]float64, features)
		var dot float64
		for j := range x {
			x[j] = rng.NormFloat64()
			dot += x[j] * truth[j]
		}
		t.examples[i] = x
		if dot > 0 {
			t.labels[i] = 1
		}
	}

	return t
}

// Shape reports the parameter layout this trainer expects: one weight tensor
// and one bias tensor.
func (t *SGDTrainer) Shape() model.Parameters {
	return model.Parameters{make(model.Tensor, t.features), make(model.Tensor, 1)}
}

func (t *SGDTrainer) Fit(params model.Parameters, _ map[string]any) (model.Parameters, int, map[string]float64, error) {
	w, b, err := t.unpack(params)
	if err != nil {
		return nil, 0, nil, err
	}

	var loss float64
	for epoch := 0; epoch < t.epochs; epoch++ {
		loss = 0
		for i, x := range t.examples {
			p := sigmoid(dot(w, x) + b)
			y := t.labels[i]
			loss += logLoss(p, y)

			grad := p - y
			for j := range w {
				w[j] -= t.lr * grad * x[j]
			}
			b -= t.lr * grad
		}
		loss /= float64(len(t.examples))
	}

	out := model.Parameters{w, model.Tensor{b}}

	return out, len(t.examples), map[string]float64{"loss": loss}, nil
}

func (t *SGDTrainer) Evaluate(params model.Parameters, _ map[string]any) (float64, int, map[string]float64, error) {
	w, b, err := t.unpack(params)
	if err != nil {
		return 0, 0, nil, err
	}

	var loss float64
	var correct int
	for i, x := range t.examples {
		p := sigmoid(dot(w, x) + b)
		y := t.labels[i]
		loss += logLoss(p, y)
		if (p > 0.5) == (y == 1) {
			correct++
		}
	}
	n := len(t.examples)
	loss /= float64(n)
	accuracy := float64(correct) / float64(n)

	return loss, n, map[string]float64{"accuracy": accuracy}, nil
}

func (t *SGDTrainer) unpack(params model.Parameters) (model.Tensor, float64, error) {
	if len(params) != 2 || len(params[0]) != t.features || len(params[1]) != 1 {
		return nil, 0, fmt.Errorf("partition %d: unexpected parameter shape", t.partition)
	}

	w := make(model.Tensor, t.features)
	copy(w, params[0])

	return w, params[1][0], nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}

	return s
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logLoss(p, y float64) float64 {
	const eps = 1e-12
	p = math.Min(math.Max(p, eps), 1-eps)

	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}
