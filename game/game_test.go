package game_test

import (
	"testing"

	"github.com/cairo-thws/fedt4t/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		matrix      game.PayoffMatrix
		expectError bool
	}{
		{
			name:   "canonical matrix",
			matrix: game.DefaultMatrix(),
		},
		{
			name:   "non-canonical but ordered",
			matrix: game.PayoffMatrix{T: 10, R: 4, P: 2, S: -1},
		},
		{
			name:        "reward above temptation",
			matrix:      game.PayoffMatrix{T: 3, R: 5, P: 1, S: 0},
			expectError: true,
		},
		{
			name:        "equal punishment and sucker",
			matrix:      game.PayoffMatrix{T: 5, R: 3, P: 0, S: 0},
			expectError: true,
		},
		{
			name:        "zero matrix",
			matrix:      game.PayoffMatrix{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.matrix.Validate()
			if tt.expectError {
				assert.ErrorIs(t, err, game.ErrInvalidMatrix)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPayoff(t *testing.T) {
	t.Parallel()

	pm := game.PayoffMatrix{T: 7, R: 4, P: 2, S: 1}
	require.NoError(t, pm.Validate())

	tests := []struct {
		name string
		a    game.Move
		b    game.Move
		pa   float64
		pb   float64
	}{
		{"mutual cooperation", game.Cooperate, game.Cooperate, 4, 4},
		{"mutual defection", game.Defect, game.Defect, 2, 2},
		{"a defects", game.Defect, game.Cooperate, 7, 1},
		{"b defects", game.Cooperate, game.Defect, 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pa, pb := pm.Payoff(tt.a, tt.b)
			assert.Equal(t, tt.pa, pa)
			assert.Equal(t, tt.pb, pb)
		})
	}
}
