package cli

import (
	"fmt"
	"strconv"

	"github.com/cairo-thws/fedt4t"
	"github.com/cairo-thws/fedt4t/game"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

const defConfigPath = "experiment.toml"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [init|view]",
		Short: "Experiment configuration",
		Long:  `Create and inspect the experiment configuration file.`,
	}

	var path string

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create experiment config",
		Long:  `Interactively create the experiment configuration file.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			cfg, err := runConfigForm()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			if err := fedt4t.SaveConfig(path, cfg); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logSuccessCmd(*cmd, fmt.Sprintf("Wrote %s", path))
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "View experiment config",
		Long:  `Load, validate and print the experiment configuration file.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			cfg, err := fedt4t.LoadConfig(path)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, cfg)
		},
	}

	cmd.AddCommand(initCmd)
	cmd.AddCommand(viewCmd)

	cmd.PersistentFlags().StringVarP(
		&path,
		"file",
		"f",
		defConfigPath,
		"Experiment config file path",
	)

	return cmd
}

func runConfigForm() (fedt4t.Config, error) {
	cfg := fedt4t.DefaultConfig()

	rounds := strconv.Itoa(cfg.Experiment.Rounds)
	seed := strconv.FormatInt(cfg.Experiment.Seed, 10)
	matchLength := strconv.Itoa(cfg.Experiment.MatchLength)
	fractionFit := strconv.FormatFloat(cfg.Experiment.FractionFit, 'f', -1, 64)
	fractionEval := strconv.FormatFloat(cfg.Experiment.FractionEvaluate, 'f', -1, 64)
	var strategies []string

	strategyOpts := make([]huh.Option[string], 0)
	for _, s := range game.BuiltinStrategies() {
		strategyOpts = append(strategyOpts, huh.NewOption(s.Name(), s.Name()))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Rounds").
				Value(&rounds).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Seed").
				Value(&seed).
				Validate(validateInt),
			huh.NewInput().
				Title("Match length (turns per match)").
				Value(&matchLength).
				Validate(validatePositiveInt),
			huh.NewSelect[string]().
				Title("Pairing").
				Options(
					huh.NewOption("round-robin", "round-robin"),
					huh.NewOption("random", "random"),
				).
				Value(&cfg.Experiment.Pairing),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Fraction of agents trained per round").
				Value(&fractionFit).
				Validate(validateFraction),
			huh.NewInput().
				Title("Fraction of agents evaluated per round").
				Value(&fractionEval).
				Validate(validateFraction),
			huh.NewSelect[string]().
				Title("Selection transform").
				Options(
					huh.NewOption("score-proportional", "score"),
					huh.NewOption("uniform", "uniform"),
				).
				Value(&cfg.Experiment.Transform),
			huh.NewSelect[string]().
				Title("Quorum policy").
				Options(
					huh.NewOption("warn and proceed", "warn"),
					huh.NewOption("retry non-responders once", "retry"),
				).
				Value(&cfg.Experiment.Quorum),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Agent strategies").
				Options(strategyOpts...).
				Value(&strategies),
		),
	)

	if err := form.Run(); err != nil {
		return fedt4t.Config{}, err
	}

	cfg.Experiment.Rounds, _ = strconv.Atoi(rounds)
	cfg.Experiment.Seed, _ = strconv.ParseInt(seed, 10, 64)
	cfg.Experiment.MatchLength, _ = strconv.Atoi(matchLength)
	cfg.Experiment.FractionFit, _ = strconv.ParseFloat(fractionFit, 64)
	cfg.Experiment.FractionEvaluate, _ = strconv.ParseFloat(fractionEval, 64)

	for i, name := range strategies {
		cfg.Agents = append(cfg.Agents, fedt4t.AgentConfig{
			ID:       i,
			Name:     name,
			Strategy: name,
		})
	}

	return cfg, cfg.Validate()
}

func validateInt(s string) error {
	_, err := strconv.Atoi(s)

	return err
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v < 1 {
		return fmt.Errorf("must be positive")
	}

	return nil
}

func validateFraction(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	if v <= 0 || v > 1 {
		return fmt.Errorf("must be in (0, 1]")
	}

	return nil
}
