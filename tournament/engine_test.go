package tournament_test

import (
	"context"
	"testing"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/game"
	"github.com/cairo-thws/fedt4t/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, length int, pairing tournament.Pairing, seed int64) *tournament.Engine {
	t.Helper()
	e, err := tournament.NewEngine(game.DefaultMatrix(), length, pairing, seed)
	require.NoError(t, err)

	return e
}

func TestNewEngineRejectsBadInputs(t *testing.T) {
	t.Parallel()

	_, err := tournament.NewEngine(game.PayoffMatrix{T: 1, R: 2, P: 3, S: 4}, 5, tournament.PairRoundRobin, 0)
	assert.ErrorIs(t, err, game.ErrInvalidMatrix)

	_, err = tournament.NewEngine(game.DefaultMatrix(), 0, tournament.PairRoundRobin, 0)
	assert.Error(t, err)
}

func TestMutualCooperationPaysRewardPerTurn(t *testing.T) {
	t.Parallel()

	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(0, "a", game.AlwaysCooperate{}))
	require.NoError(t, reg.Register(1, "b", game.AlwaysCooperate{}))

	const length = 8
	e := newEngine(t, length, tournament.PairRoundRobin, 42)

	matches, err := e.Run(context.Background(), 0, reg)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	matrix := game.DefaultMatrix()
	assert.Equal(t, matrix.R*length, matches[0].PayoffA)
	assert.Equal(t, matrix.R*length, matches[0].PayoffB)
}

func TestMutualDefectionPaysPunishmentPerTurn(t *testing.T) {
	t.Parallel()

	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(0, "a", game.AlwaysDefect{}))
	require.NoError(t, reg.Register(1, "b", game.AlwaysDefect{}))

	const length = 8
	e := newEngine(t, length, tournament.PairRoundRobin, 42)

	matches, err := e.Run(context.Background(), 0, reg)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	matrix := game.DefaultMatrix()
	assert.Equal(t, matrix.P*length, matches[0].PayoffA)
	assert.Equal(t, matrix.P*length, matches[0].PayoffB)
}

func TestDefectorOutscoresCooperator(t *testing.T) {
	t.Parallel()

	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(0, "nice", game.AlwaysCooperate{}))
	require.NoError(t, reg.Register(1, "mean", game.AlwaysDefect{}))
	require.NoError(t, reg.Register(2, "coin", game.Random{}))

	e := newEngine(t, 5, tournament.PairRoundRobin, 1)

	_, err := e.Run(context.Background(), 0, reg)
	require.NoError(t, err)

	nice, err := reg.Get(0)
	require.NoError(t, err)
	mean, err := reg.Get(1)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, mean.CumulativeScore, nice.CumulativeScore)
}

func TestRoundRobinPlaysAllPairs(t *testing.T) {
	t.Parallel()

	reg := agent.NewRegistry()
	for i := 0; i < 5; i++ {
		require.NoError(t, reg.Register(i, "", game.TitForTat{}))
	}

	e := newEngine(t, 3, tournament.PairRoundRobin, 9)
	matches, err := e.Run(context.Background(), 0, reg)
	require.NoError(t, err)

	assert.Len(t, matches, 10) // C(5,2)
}

func TestRandomMatchingOddAgentSitsOut(t *testing.T) {
	t.Parallel()

	reg := agent.NewRegistry()
	for i := 0; i < 5; i++ {
		require.NoError(t, reg.Register(i, "", game.AlwaysDefect{}))
	}

	e := newEngine(t, 4, tournament.PairRandom, 13)
	matches, err := e.Run(context.Background(), 0, reg)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	played := make(map[int]bool)
	for _, m := range matches {
		played[m.AgentA] = true
		played[m.AgentB] = true
	}
	assert.Len(t, played, 4)

	for _, a := range reg.Snapshot() {
		if !played[a.ID] {
			assert.Zero(t, a.CumulativeScore)
			assert.Equal(t, 0, a.LastSeenRound)
		}
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()

	scores := func() []float64 {
		reg := agent.NewRegistry()
		require.NoError(t, reg.Register(0, "", game.Random{}))
		require.NoError(t, reg.Register(1, "", game.Random{}))
		require.NoError(t, reg.Register(2, "", game.TitForTat{}))

		e := newEngine(t, 10, tournament.PairRandom, 42)
		for round := 0; round < 4; round++ {
			_, err := e.Run(context.Background(), round, reg)
			require.NoError(t, err)
		}

		var out []float64
		for _, a := range reg.Snapshot() {
			out = append(out, a.CumulativeScore)
		}

		return out
	}

	assert.Equal(t, scores(), scores())
}
