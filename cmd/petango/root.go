package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bigwing/petango"
)

type globalFlags struct {
	configPath string
	envFile    string
	debug      bool
	normalized bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "petango",
		Short:         "Query the PetAndGo adoption service",
		Version:       petango.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML config file (default: PETANGO_* environment)")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "log debug output to stderr")
	cmd.PersistentFlags().BoolVar(&flags.normalized, "normalized", false, "print snake_case field names")

	cmd.AddCommand(newSearchCmd(flags))
	cmd.AddCommand(newPetCmd(flags))
	cmd.AddCommand(newServeCmd(flags))

	return cmd
}

// loadClient builds a client from --config or the environment. The registry
// receives the client's metrics.
func loadClient(flags *globalFlags, registry *prometheus.Registry) (*petango.Client, error) {
	logger := newLogger(flags.debug)

	if flags.envFile != "" {
		if err := petango.LoadEnv(flags.envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			logger.Debug("env file not found, using process environment", "file", flags.envFile)
		}
	}

	var (
		cfg *petango.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = petango.LoadConfigFile(flags.configPath)
	} else {
		cfg, err = petango.ConfigFromEnv()
	}
	if err != nil {
		return nil, err
	}

	opts := []petango.Option{petango.WithLogger(logger)}
	if registry != nil {
		opts = append(opts, petango.WithMetricsCollector(petango.NewMetricsCollectorWithRegistry(registry)))
	}

	return petango.NewFromConfig(cfg, opts...)
}

func newLogger(debug bool) petango.Logger {
	if debug {
		return petango.NewSimpleLogger()
	}
	return petango.NewWriterLogger(zerolog.ConsoleWriter{Out: os.Stderr}, zerolog.WarnLevel)
}

func caseStyle(flags *globalFlags) petango.CaseStyle {
	if flags.normalized {
		return petango.CaseNormalized
	}
	return petango.CaseOriginal
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
