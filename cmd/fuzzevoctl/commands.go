package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fuzzevo/pkg/fuzzevo"
)

func newRunsCmd() *cobra.Command {
	var (
		store storeFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := openClient(cmd.Context(), store, fuzzevo.Options{})
			if err != nil {
				return err
			}
			defer client.Close()

			runs, err := client.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tCREATED\tLOGIC\tTRIALS\tROWS\tMEAN IMPROVEMENT\tMODE FREQ")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.4f\t%.2f\n",
					r.ID,
					humanize.Time(r.CreatedAt),
					r.Config.Logic,
					r.Config.Trials,
					humanize.Comma(int64(r.TrainingRows+r.TestRows)),
					r.Summary.MeanImprovement,
					r.Summary.ModeFrequency,
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 for all)")
	store.register(cmd)
	return cmd
}

func newShowCmd() *cobra.Command {
	var (
		store   storeFlags
		latest  bool
		jsonOut bool
		diag    int
	)
	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a recorded run and its trials",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := runRef(args, latest)
			if err != nil {
				return err
			}
			client, err := openClient(cmd.Context(), store, fuzzevo.Options{})
			if err != nil {
				return err
			}
			defer client.Close()

			detail, err := client.Show(cmd.Context(), ref)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(detail)
			}

			r := detail.Run
			fmt.Fprintf(out, "Run %s\n", r.ID)
			fmt.Fprintf(out, "  created:    %s (%s)\n", r.CreatedAt.Format(time.RFC3339), humanize.Time(r.CreatedAt))
			fmt.Fprintf(out, "  dataset:    %s\n", r.Dataset)
			fmt.Fprintf(out, "  rows:       %s training, %s testing\n", humanize.Comma(int64(r.TrainingRows)), humanize.Comma(int64(r.TestRows)))
			fmt.Fprintf(out, "  logic:      %s\n", r.Config.Logic)
			fmt.Fprintf(out, "  seed:       %d\n", r.Config.Seed)
			fmt.Fprintf(out, "  population: %d (%d elites), %d generations\n", r.Config.Population, r.Config.Elites, r.Config.Generations)
			fmt.Fprintf(out, "  penalty:    %s %g\n", r.Config.Penalty, r.Config.Alpha)
			fmt.Fprintf(out, "  TSS:        %.4f -> %.4f (mean improvement %.4f)\n", r.Summary.MeanTSSBefore, r.Summary.MeanTSSAfter, r.Summary.MeanImprovement)
			fmt.Fprintf(out, "  mode:       %s (frequency %.2f)\n", r.Summary.ModeFingerprint, r.Summary.ModeFrequency)
			fmt.Fprintf(out, "  elapsed:    %s\n", time.Duration(r.Summary.ElapsedMillis)*time.Millisecond)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "\nTRIAL\tSEED\tGENS\tFITNESS\tTSS BEFORE\tTSS AFTER\tRULES\tFINGERPRINT")
			for _, t := range detail.Trials {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%.4f\t%.4f\t%.4f\t%d\t%s\n",
					t.Trial, t.Seed, t.Generations, t.BestFitness, t.TestTSSBefore, t.TestTSSAfter, t.Rules, t.Fingerprint)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if diag < 0 {
				return nil
			}
			gens, err := client.Diagnostics(cmd.Context(), fuzzevo.RunRef{RunID: r.ID}, diag)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTrial %d generations:\n", diag)
			tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "GEN\tBEST\tMEAN\tMIN\tMEAN RULES\tMUTATIONS\tDIVERSITY")
			for _, g := range gens {
				fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%.2f\t%d\t%d\n",
					g.Generation, g.BestFitness, g.MeanFitness, g.MinFitness, g.MeanRules, g.Mutations, g.Diversity)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "show the most recent run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the run as JSON")
	cmd.Flags().IntVar(&diag, "diagnostics", -1, "also print the per-generation diagnostics of this trial")
	store.register(cmd)
	return cmd
}

func newPlotCmd() *cobra.Command {
	var (
		store  storeFlags
		latest bool
		path   string
	)
	cmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "Plot the best fitness per generation of every trial of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := runRef(args, latest)
			if err != nil {
				return err
			}
			client, err := openClient(cmd.Context(), store, fuzzevo.Options{})
			if err != nil {
				return err
			}
			defer client.Close()

			runID, err := client.Plot(cmd.Context(), ref, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s for run %s\n", path, runID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "plot the most recent run")
	cmd.Flags().StringVarP(&path, "out", "o", "fitness.png", "image path; the extension selects the format")
	store.register(cmd)
	return cmd
}

func runRef(args []string, latest bool) (fuzzevo.RunRef, error) {
	switch {
	case len(args) == 1 && latest:
		return fuzzevo.RunRef{}, fmt.Errorf("pass a run id or --latest, not both")
	case len(args) == 1:
		return fuzzevo.RunRef{RunID: args[0]}, nil
	case latest:
		return fuzzevo.RunRef{Latest: true}, nil
	default:
		return fuzzevo.RunRef{}, fmt.Errorf("a run id or --latest is required")
	}
}

func newPartitionCmd() *cobra.Command {
	var (
		sets       int
		begin, end float64
		samples    int
	)
	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Print the memberships of a triangular fuzzy partition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			labels, points, err := fuzzevo.DescribePartition(sets, begin, end, samples)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprint(tw, "x")
			for _, l := range labels {
				fmt.Fprintf(tw, "\t%s", l)
			}
			fmt.Fprintln(tw)
			for _, p := range points {
				fmt.Fprintf(tw, "%.4g", p.X)
				for _, m := range p.Memberships {
					fmt.Fprintf(tw, "\t%.3f", m)
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&sets, "sets", 5, "number of sets")
	cmd.Flags().Float64Var(&begin, "begin", 0, "start of the range")
	cmd.Flags().Float64Var(&end, "end", 1, "end of the range")
	cmd.Flags().IntVar(&samples, "samples", 11, "evenly spaced sample points")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		store  storeFlags
		latest bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Write the records of a run as JSON and CSV files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := runRef(args, latest)
			if err != nil {
				return err
			}
			client, err := openClient(cmd.Context(), store, fuzzevo.Options{})
			if err != nil {
				return err
			}
			defer client.Close()

			dir, err := client.Export(cmd.Context(), ref, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "export the most recent run")
	cmd.Flags().StringVarP(&outDir, "out", "o", "exports", "output directory")
	store.register(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var (
		store  storeFlags
		latest bool
	)
	cmd := &cobra.Command{
		Use:   "delete [run-id]",
		Short: "Delete a recorded run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := runRef(args, latest)
			if err != nil {
				return err
			}
			client, err := openClient(cmd.Context(), store, fuzzevo.Options{})
			if err != nil {
				return err
			}
			defer client.Close()

			runID, err := client.Delete(cmd.Context(), ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted run %s\n", runID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "delete the most recent run")
	store.register(cmd)
	return cmd
}
