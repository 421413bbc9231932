package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/bpsim/timing/config"
)

type rootOptions struct {
	configPath string
	envPath    string
	profile    profiler
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bpsim",
		Short: "bpsim simulates branch predictors on a five-stage pipeline.",
		Long: `bpsim simulates branch predictors on a five-stage pipeline. ` +
			`It runs bimodal, correlated, perceptron and TAGE predictors ` +
			`on generated or recorded traces and compares their accuracy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.profile.start()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.profile.stop()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a simulation config JSON file")
	cmd.PersistentFlags().StringVar(&opts.envPath, "env", "",
		"Path to a dotenv file with BPSIM_* overrides")
	cmd.PersistentFlags().StringVar(&opts.profile.cpuPath, "cpuprofile", "",
		"Write a CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.memPath, "memprofile", "",
		"Write a memory profile to file")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newCompareCmd(opts))
	cmd.AddCommand(newGenCmd())

	return cmd
}

// loadConfig builds the simulation config from the defaults, the config
// file and the env file, in that order.
func (o *rootOptions) loadConfig() (*config.SimConfig, error) {
	cfg := config.DefaultSimConfig()

	if o.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	}

	if o.envPath != "" {
		if err := cfg.ApplyEnvFile(o.envPath); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
