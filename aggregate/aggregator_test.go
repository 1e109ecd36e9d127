package aggregate_test

import (
	"testing"

	"github.com/cairo-thws/fedt4t/aggregate"
	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSingleUpdateIsIdentity(t *testing.T) {
	t.Parallel()

	prior := model.Parameters{{0, 0}, {0}}
	update := model.Parameters{{1.5, -2}, {3}}

	agg := aggregate.NewFedAvg()
	got, err := agg.Aggregate(prior, []aggregate.Update{
		{AgentID: 1, Parameters: update, NumExamples: 10},
	}, map[int]float64{1: 1})

	require.NoError(t, err)
	assert.Equal(t, update, got)
}

func TestAggregateEmptyReturnsPriorUnchanged(t *testing.T) {
	t.Parallel()

	prior := model.Parameters{{4, 2}}

	agg := aggregate.NewFedAvg()
	got, err := agg.Aggregate(prior, nil, nil)

	assert.ErrorIs(t, err, errors.ErrNoUpdates)
	assert.Equal(t, prior, got)
}

func TestAggregateWeightedMean(t *testing.T) {
	t.Parallel()

	prior := model.Parameters{{0}}

	agg := aggregate.NewFedAvg()
	got, err := agg.Aggregate(prior, []aggregate.Update{
		{AgentID: 1, Parameters: model.Parameters{{10}}},
		{AgentID: 2, Parameters: model.Parameters{{20}}},
	}, map[int]float64{1: 0.25, 2: 0.75})

	require.NoError(t, err)
	assert.InDelta(t, 17.5, float64(got[0][0]), 1e-9)
}

func TestAggregateDiscardsShapeMismatch(t *testing.T) {
	t.Parallel()

	prior := model.Parameters{{0, 0}}

	agg := aggregate.NewFedAvg()
	got, err := agg.Aggregate(prior, []aggregate.Update{
		{AgentID: 1, Parameters: model.Parameters{{2, 4}}},
		{AgentID: 2, Parameters: model.Parameters{{1, 2, 3}}}, // wrong shape
	}, map[int]float64{1: 0.5, 2: 0.5})

	// The bad update is dropped, the rest renormalized, and the error
	// identifies the condition without failing the round.
	assert.ErrorIs(t, err, errors.ErrShapeMismatch)
	assert.Equal(t, model.Parameters{{2, 4}}, got)
}

func TestAggregateAllMismatchedKeepsPrior(t *testing.T) {
	t.Parallel()

	prior := model.Parameters{{1, 1}}

	agg := aggregate.NewFedAvg()
	got, err := agg.Aggregate(prior, []aggregate.Update{
		{AgentID: 1, Parameters: model.Parameters{{1}}},
	}, map[int]float64{1: 1})

	assert.ErrorIs(t, err, errors.ErrShapeMismatch)
	assert.Equal(t, prior, got)
}

func TestAggregateUniformFallbackOnZeroWeights(t *testing.T) {
	t.Parallel()

	prior := model.Parameters{{0}}

	agg := aggregate.NewFedAvg()
	got, err := agg.Aggregate(prior, []aggregate.Update{
		{AgentID: 1, Parameters: model.Parameters{{2}}},
		{AgentID: 2, Parameters: model.Parameters{{4}}},
	}, nil)

	require.NoError(t, err)
	assert.InDelta(t, 3, float64(got[0][0]), 1e-9)
}

func TestWeightedMetrics(t *testing.T) {
	t.Parallel()

	got := aggregate.WeightedMetrics([]aggregate.MetricContribution{
		{NumExamples: 100, Metrics: map[string]float64{"accuracy": 0.9}},
		{NumExamples: 300, Metrics: map[string]float64{"accuracy": 0.5}},
	})

	assert.InDelta(t, 0.6, got["accuracy"], 1e-9)
}

func TestWeightedMetricsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, aggregate.WeightedMetrics(nil))
}
