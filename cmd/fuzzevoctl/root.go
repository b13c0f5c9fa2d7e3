package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fuzzevo/internal/config"
	"fuzzevo/internal/logging"
	"fuzzevo/internal/storage"
	"fuzzevo/pkg/fuzzevo"
)

type storeFlags struct {
	kind string
	db   string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	cmd.Flags().StringVar(&f.db, "db", "fuzzevo.db", "sqlite database path")
}

func newRootCmd(out io.Writer) *cobra.Command {
	var envFiles []string
	root := &cobra.Command{
		Use:           "fuzzevoctl",
		Short:         "Evolve fuzzy rule-based classifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadDotEnv(envFiles...)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	root.AddCommand(
		newRunCmd(),
		newRunsCmd(),
		newShowCmd(),
		newPlotCmd(),
		newExportCmd(),
		newDeleteCmd(),
		newPartitionCmd(),
	)
	return root
}

// openClient opens and initializes the store named by flags.
func openClient(ctx context.Context, flags storeFlags, opts fuzzevo.Options) (*fuzzevo.Client, error) {
	opts.StoreKind = flags.kind
	opts.DBPath = flags.db
	client, err := fuzzevo.New(opts)
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	return client, nil
}

func newLogger(cmd *cobra.Command, cfg config.Log) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Level,
		Format: cfg.Format,
		Writer: cmd.ErrOrStderr(),
	})
}
