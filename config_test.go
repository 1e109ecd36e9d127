package fedt4t_test

import (
	"path/filepath"
	"testing"

	"github.com/cairo-thws/fedt4t"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := fedt4t.DefaultConfig()
	cfg.Agents = []fedt4t.AgentConfig{
		{ID: 0, Name: "alpha", Strategy: "tit-for-tat"},
		{ID: 1, Name: "beta", Strategy: "always-defect"},
	}

	path := filepath.Join(t.TempDir(), "experiment.toml")
	require.NoError(t, fedt4t.SaveConfig(path, cfg))

	loaded, err := fedt4t.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Experiment, loaded.Experiment)
	assert.Equal(t, cfg.Payoff, loaded.Payoff)
	assert.Equal(t, cfg.Agents, loaded.Agents)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := fedt4t.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc   string
		mutate func(*fedt4t.Config)
		err    bool
	}{
		{
			desc:   "defaults are valid",
			mutate: func(*fedt4t.Config) {},
		},
		{
			desc:   "zero rounds",
			mutate: func(c *fedt4t.Config) { c.Experiment.Rounds = 0 },
			err:    true,
		},
		{
			desc:   "fraction above one",
			mutate: func(c *fedt4t.Config) { c.Experiment.FractionFit = 1.5 },
			err:    true,
		},
		{
			desc:   "bad timeout",
			mutate: func(c *fedt4t.Config) { c.Experiment.RoundTimeout = "soon" },
			err:    true,
		},
		{
			desc: "payoff ordering violated",
			mutate: func(c *fedt4t.Config) {
				c.Payoff.Temptation = 1
				c.Payoff.Reward = 5
			},
			err: true,
		},
		{
			desc: "duplicate agent ids",
			mutate: func(c *fedt4t.Config) {
				c.Agents = []fedt4t.AgentConfig{
					{ID: 1, Strategy: "tit-for-tat"},
					{ID: 1, Strategy: "random"},
				}
			},
			err: true,
		},
		{
			desc: "unknown strategy",
			mutate: func(c *fedt4t.Config) {
				c.Agents = []fedt4t.AgentConfig{{ID: 1, Strategy: "psychic"}}
			},
			err: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			cfg := fedt4t.DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
