package model_test

import (
	"testing"

	"github.com/cairo-thws/fedt4t/model"
	"github.com/stretchr/testify/assert"
)

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	p := model.Parameters{{1, 2, 3}, {4}}
	c := p.Clone()
	c[0][0] = 99

	assert.Equal(t, 1.0, float64(p[0][0]))
	assert.Equal(t, 99.0, float64(c[0][0]))
}

func TestSameShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    model.Parameters
		b    model.Parameters
		same bool
	}{
		{
			name: "identical shapes",
			a:    model.Parameters{{1, 2}, {3}},
			b:    model.Parameters{{9, 9}, {9}},
			same: true,
		},
		{
			name: "different tensor count",
			a:    model.Parameters{{1, 2}},
			b:    model.Parameters{{1, 2}, {3}},
			same: false,
		},
		{
			name: "different tensor length",
			a:    model.Parameters{{1, 2}},
			b:    model.Parameters{{1, 2, 3}},
			same: false,
		},
		{
			name: "both empty",
			a:    model.Parameters{},
			b:    model.Parameters{},
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.same, tt.a.SameShape(tt.b))
		})
	}
}

func TestNextIncrementsVersion(t *testing.T) {
	t.Parallel()

	g := model.Global{Version: 3, Parameters: model.Parameters{{1}}}
	next := g.Next(model.Parameters{{2}})

	assert.Equal(t, 4, next.Version)
	assert.Equal(t, 3, g.Version)
	assert.Equal(t, model.Parameters{{2}}, next.Parameters)
}
