package selection

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/pkg/errors"
)

// Transform maps tournament scores to sampling eligibility.
type Transform uint8

const (
	// TransformUniform ignores scores; every reachable agent is equally
	// likely.
	TransformUniform Transform = iota
	// TransformScore samples proportionally to the min-shifted score plus a
	// positive floor, so every reachable agent keeps nonzero probability even
	// with negative or zero scores.
	TransformScore
)

func (t Transform) String() string {
	switch t {
	case TransformUniform:
		return "uniform"
	case TransformScore:
		return "score"
	default:
		return "unknown"
	}
}

func ParseTransform(s string) (Transform, error) {
	switch s {
	case "uniform", "":
		return TransformUniform, nil
	case "score":
		return TransformScore, nil
	default:
		return 0, fmt.Errorf("unknown selection transform %q", s)
	}
}

// eligibilityFloor keeps low scorers sampleable. Chosen as a fraction of the
// mean shifted score so it scales with the payoff matrix.
const eligibilityFloor = 0.1

// Policy converts tournament state into a per-round training sample and into
// aggregation weights for returned updates.
type Policy struct {
	FractionFit      float64
	FractionEvaluate float64
	Transform        Transform
	// ScoreWeightAlpha blends normalized tournament score into aggregation
	// weights: 0 is pure example-count FedAvg, 1 is pure score.
	ScoreWeightAlpha float64
	Rand             *rand.Rand
}

// SelectFit samples the training subset for a round: without replacement,
// probability proportional to the transformed score, at least one agent even
// when fraction*N < 1. Only reachable agents are eligible; agents whose state
// is still Unknown count as eligible until a dispatch failure proves
// otherwise.
func (p *Policy) SelectFit(agents []agent.Agent) ([]agent.Agent, error) {
	return p.sample(agents, p.FractionFit)
}

// SelectEvaluate samples the evaluation subset, from the same eligible pool
// but independently of the fit sample.
func (p *Policy) SelectEvaluate(agents []agent.Agent) ([]agent.Agent, error) {
	return p.sample(agents, p.FractionEvaluate)
}

func (p *Policy) sample(agents []agent.Agent, fraction float64) ([]agent.Agent, error) {
	eligible := make([]agent.Agent, 0, len(agents))
	for _, a := range agents {
		if a.ConnState != agent.Unreachable {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) == 0 {
		return nil, errors.ErrNoEligibleAgents
	}

	n := int(math.Round(fraction * float64(len(eligible))))
	if n < 1 {
		n = 1
	}
	if n > len(eligible) {
		n = len(eligible)
	}

	weights := p.eligibility(eligible)
	selected := make([]agent.Agent, 0, n)
	for len(selected) < n {
		i := p.draw(weights)
		selected = append(selected, eligible[i])
		// Drawn without replacement.
		eligible = append(eligible[:i], eligible[i+1:]...)
		weights = append(weights[:i], weights[i+1:]...)
	}

	return selected, nil
}

func (p *Policy) eligibility(agents []agent.Agent) []float64 {
	weights := make([]float64, len(agents))
	if p.Transform == TransformUniform {
		for i := range weights {
			weights[i] = 1
		}

		return weights
	}

	minScore := math.Inf(1)
	for _, a := range agents {
		minScore = math.Min(minScore, a.CumulativeScore)
	}
	var mean float64
	for i, a := range agents {
		weights[i] = a.CumulativeScore - minScore
		mean += weights[i]
	}
	mean /= float64(len(agents))

	floor := mean*eligibilityFloor + 1e-9
	for i := range weights {
		weights[i] += floor
	}

	return weights
}

func (p *Policy) draw(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	x := p.Rand.Float64() * total
	for i, w := range weights {
		x -= w
		if x < 0 {
			return i
		}
	}

	return len(weights) - 1
}

// Contribution describes one returned update for weighting purposes.
type Contribution struct {
	AgentID     int
	NumExamples int
	Score       float64
}

// Weights computes aggregation weights over the updates actually returned,
// not the originally selected set, normalized to sum to 1. Example counts
// dominate; ScoreWeightAlpha optionally blends in normalized tournament
// score.
func (p *Policy) Weights(contribs []Contribution) map[int]float64 {
	out := make(map[int]float64, len(contribs))
	if len(contribs) == 0 {
		return out
	}

	var totalExamples, totalScore float64
	minScore := math.Inf(1)
	for _, c := range contribs {
		totalExamples += float64(c.NumExamples)
		minScore = math.Min(minScore, c.Score)
	}
	for _, c := range contribs {
		totalScore += c.Score - minScore + 1
	}

	alpha := p.ScoreWeightAlpha
	for _, c := range contribs {
		byExamples := 1.0 / float64(len(contribs))
		if totalExamples > 0 {
			byExamples = float64(c.NumExamples) / totalExamples
		}
		byScore := (c.Score - minScore + 1) / totalScore
		out[c.AgentID] = (1-alpha)*byExamples + alpha*byScore
	}

	// Guard against floating drift so downstream invariants can rely on the
	// weights summing to 1.
	var sum float64
	for _, w := range out {
		sum += w
	}
	for id := range out {
		out[id] /= sum
	}

	return out
}
