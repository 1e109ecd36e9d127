package selection_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/pkg/errors"
	"github.com/cairo-thws/fedt4t/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agents(n int) []agent.Agent {
	out := make([]agent.Agent, n)
	for i := range out {
		out[i] = agent.Agent{ID: i, ConnState: agent.Reachable}
	}

	return out
}

func TestSelectFitExactCount(t *testing.T) {
	t.Parallel()

	p := &selection.Policy{FractionFit: 0.5, Rand: rand.New(rand.NewSource(1))}

	selected, err := p.SelectFit(agents(10))
	require.NoError(t, err)
	require.Len(t, selected, 5)

	seen := make(map[int]bool)
	for _, a := range selected {
		assert.False(t, seen[a.ID], "agent %d selected twice", a.ID)
		seen[a.ID] = true
	}
}

func TestSelectFitAlwaysAtLeastOne(t *testing.T) {
	t.Parallel()

	p := &selection.Policy{FractionFit: 0.01, Rand: rand.New(rand.NewSource(1))}

	selected, err := p.SelectFit(agents(3))
	require.NoError(t, err)
	assert.Len(t, selected, 1)
}

func TestSelectFitSkipsUnreachable(t *testing.T) {
	t.Parallel()

	all := agents(4)
	all[0].ConnState = agent.Unreachable
	all[2].ConnState = agent.Unreachable

	p := &selection.Policy{FractionFit: 1, Rand: rand.New(rand.NewSource(1))}
	selected, err := p.SelectFit(all)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	for _, a := range selected {
		assert.NotEqual(t, agent.Unreachable, a.ConnState)
	}
}

func TestSelectFitNoEligibleAgents(t *testing.T) {
	t.Parallel()

	all := agents(2)
	all[0].ConnState = agent.Unreachable
	all[1].ConnState = agent.Unreachable

	p := &selection.Policy{FractionFit: 0.5, Rand: rand.New(rand.NewSource(1))}
	_, err := p.SelectFit(all)
	assert.ErrorIs(t, err, errors.ErrNoEligibleAgents)
}

func TestScoreTransformFavorsHighScorers(t *testing.T) {
	t.Parallel()

	all := agents(2)
	all[0].CumulativeScore = 1
	all[1].CumulativeScore = 100

	p := &selection.Policy{
		FractionFit: 0.5,
		Transform:   selection.TransformScore,
		Rand:        rand.New(rand.NewSource(7)),
	}

	counts := make(map[int]int)
	const trials = 2000
	for i := 0; i < trials; i++ {
		selected, err := p.SelectFit(all)
		require.NoError(t, err)
		require.Len(t, selected, 1)
		counts[selected[0].ID]++
	}

	// The low scorer keeps positive probability but should be rare.
	assert.Greater(t, counts[0], 0)
	assert.Greater(t, counts[1], counts[0]*5)
}

func TestUniformTransformIsFair(t *testing.T) {
	t.Parallel()

	all := agents(2)
	all[1].CumulativeScore = 1000

	p := &selection.Policy{FractionFit: 0.5, Rand: rand.New(rand.NewSource(3))}

	counts := make(map[int]int)
	const trials = 2000
	for i := 0; i < trials; i++ {
		selected, err := p.SelectFit(all)
		require.NoError(t, err)
		counts[selected[0].ID]++
	}

	ratio := float64(counts[0]) / float64(trials)
	assert.InDelta(t, 0.5, ratio, 0.05)
}

func TestWeightsSumToOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		alpha    float64
		contribs []selection.Contribution
	}{
		{
			name: "pure fedavg",
			contribs: []selection.Contribution{
				{AgentID: 1, NumExamples: 100},
				{AgentID: 2, NumExamples: 300},
			},
		},
		{
			name:  "score blended",
			alpha: 0.5,
			contribs: []selection.Contribution{
				{AgentID: 1, NumExamples: 10, Score: -4},
				{AgentID: 2, NumExamples: 90, Score: 12},
				{AgentID: 3, NumExamples: 50, Score: 0},
			},
		},
		{
			name: "single responder",
			contribs: []selection.Contribution{
				{AgentID: 7, NumExamples: 42},
			},
		},
		{
			name: "zero example counts",
			contribs: []selection.Contribution{
				{AgentID: 1},
				{AgentID: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &selection.Policy{ScoreWeightAlpha: tt.alpha}
			w := p.Weights(tt.contribs)
			require.Len(t, w, len(tt.contribs))

			var sum float64
			for _, v := range w {
				assert.GreaterOrEqual(t, v, 0.0)
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestWeightsProportionalToExamples(t *testing.T) {
	t.Parallel()

	p := &selection.Policy{}
	w := p.Weights([]selection.Contribution{
		{AgentID: 1, NumExamples: 100},
		{AgentID: 2, NumExamples: 300},
	})

	assert.InDelta(t, 0.25, w[1], 1e-9)
	assert.InDelta(t, 0.75, w[2], 1e-9)
}

func TestWeightsEmpty(t *testing.T) {
	t.Parallel()

	p := &selection.Policy{}
	assert.Empty(t, p.Weights(nil))
}

func TestSingleResponderGetsFullWeight(t *testing.T) {
	t.Parallel()

	p := &selection.Policy{ScoreWeightAlpha: 0.3}
	w := p.Weights([]selection.Contribution{{AgentID: 9, NumExamples: 5, Score: 2}})

	assert.True(t, math.Abs(w[9]-1.0) < 1e-9)
}
