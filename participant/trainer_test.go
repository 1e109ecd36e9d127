package participant_test

import (
	"testing"

	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/participant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSGDTrainerFitReducesLoss(t *testing.T) {
	t.Parallel()

	trainer := participant.NewSGDTrainer(0, 200, 8, 1, 0.1, 42)
	params := trainer.Shape()

	_, _, first, err := trainer.Fit(params.Clone(), nil)
	require.NoError(t, err)

	out, n, _, err := trainer.Fit(params.Clone(), nil)
	require.NoError(t, err)
	assert.Equal(t, 200, n)

	// More epochs from the same start lower the loss further.
	longTrainer := participant.NewSGDTrainer(0, 200, 8, 10, 0.1, 42)
	_, _, long, err := longTrainer.Fit(params.Clone(), nil)
	require.NoError(t, err)
	assert.Less(t, long["loss"], first["loss"])
	assert.True(t, out.SameShape(params))
}

func TestSGDTrainerEvaluate(t *testing.T) {
	t.Parallel()

	trainer := participant.NewSGDTrainer(1, 100, 8, 5, 0.1, 42)
	fitted, _, _, err := trainer.Fit(trainer.Shape(), nil)
	require.NoError(t, err)

	loss, n, metrics, err := trainer.Evaluate(fitted, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Greater(t, loss, 0.0)
	// Trained on its own partition, it should do clearly better than chance.
	assert.Greater(t, metrics["accuracy"], 0.6)
}

func TestSGDTrainerShapeMismatch(t *testing.T) {
	t.Parallel()

	trainer := participant.NewSGDTrainer(0, 50, 8, 1, 0.1, 42)

	_, _, _, err := trainer.Fit(model.Parameters{{1, 2}}, nil)
	assert.Error(t, err)

	_, _, _, evalErr := trainer.Evaluate(model.Parameters{make(model.Tensor, 3), {0}}, nil)
	assert.Error(t, evalErr)
}

func TestSGDTrainerPartitionsDiffer(t *testing.T) {
	t.Parallel()

	a := participant.NewSGDTrainer(0, 100, 8, 3, 0.1, 42)
	b := participant.NewSGDTrainer(1, 100, 8, 3, 0.1, 42)
	params := a.Shape()

	outA, _, _, err := a.Fit(params.Clone(), nil)
	require.NoError(t, err)
	outB, _, _, err := b.Fit(params.Clone(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, outA, outB)
}
