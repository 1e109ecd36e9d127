package game_test

import (
	"math/rand"
	"testing"

	"github.com/cairo-thws/fedt4t/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyOpenings(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))

	assert.Equal(t, game.Cooperate, game.TitForTat{}.NextMove(nil, nil, rng))
	assert.Equal(t, game.Defect, game.SuspiciousTitForTat{}.NextMove(nil, nil, rng))
	assert.Equal(t, game.Cooperate, game.WinStayLoseShift{}.NextMove(nil, nil, rng))
	assert.Equal(t, game.Cooperate, game.GrimTrigger{}.NextMove(nil, nil, rng))
	assert.Equal(t, game.Defect, game.AlwaysDefect{}.NextMove(nil, nil, rng))
}

func TestTitForTatMirrorsOpponent(t *testing.T) {
	t.Parallel()

	s := game.TitForTat{}
	own := []game.Move{game.Cooperate, game.Cooperate}
	opp := []game.Move{game.Cooperate, game.Defect}

	assert.Equal(t, game.Defect, s.NextMove(own, opp, nil))
}

func TestGrimTriggerNeverForgives(t *testing.T) {
	t.Parallel()

	s := game.GrimTrigger{}
	opp := []game.Move{game.Cooperate, game.Defect, game.Cooperate, game.Cooperate}

	assert.Equal(t, game.Defect, s.NextMove(nil, opp, nil))
}

func TestWinStayLoseShift(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		own  game.Move
		opp  game.Move
		next game.Move
	}{
		{"stay after reward", game.Cooperate, game.Cooperate, game.Cooperate},
		{"stay after temptation", game.Defect, game.Cooperate, game.Defect},
		{"shift after sucker", game.Cooperate, game.Defect, game.Defect},
		{"shift after punishment", game.Defect, game.Defect, game.Cooperate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := game.WinStayLoseShift{}.NextMove([]game.Move{tt.own}, []game.Move{tt.opp}, nil)
			assert.Equal(t, tt.next, got)
		})
	}
}

func TestRandomIsSeedDeterministic(t *testing.T) {
	t.Parallel()

	s := game.Random{}
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		assert.Equal(t, s.NextMove(nil, nil, a), s.NextMove(nil, nil, b))
	}
}

func TestStrategyByName(t *testing.T) {
	t.Parallel()

	for _, s := range game.BuiltinStrategies() {
		got, err := game.StrategyByName(s.Name())
		require.NoError(t, err)
		assert.Equal(t, s.Name(), got.Name())
	}

	_, err := game.StrategyByName("no-such-strategy")
	assert.Error(t, err)
}
