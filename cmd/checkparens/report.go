package main

import (
	"fmt"
	"os"

	"github.com/praetorian-inc/checkparens/pkg/store"
	"github.com/praetorian-inc/checkparens/pkg/types"
	"github.com/spf13/cobra"
)

var (
	reportDatastore string
	reportFormat    string
	reportColor     string
	reportInvalid   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from scan results",
	Long:  "Read stored verdicts from a datastore and output a report",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "checkparens.db", "Path to datastore file or postgres:// DSN")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, sarif")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().BoolVar(&reportInvalid, "invalid-only", false, "Only list files with bad structure")
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := validFormat(reportFormat); err != nil {
		return err
	}
	enabled, err := colorEnabled(reportColor, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	st := newStyles(enabled)

	storePath := reportDatastore
	if storePath == ":memory:" {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if !store.IsPostgresDSN(storePath) {
		info, err := os.Stat(storePath)
		if err != nil {
			return fmt.Errorf("datastore not found: %s", storePath)
		}
		if info.IsDir() {
			return fmt.Errorf("datastore is a directory: %s", storePath)
		}
	}

	s, err := store.New(store.Config{
		Path: storePath,
	})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	results, err := s.GetResults()
	if err != nil {
		return fmt.Errorf("retrieving results: %w", err)
	}
	summary := types.Summarize(results)

	if reportInvalid {
		results = invalidOnly(results)
	}

	if reportFormat != "human" {
		return writeResults(cmd.OutOrStdout(), reportFormat, results, st)
	}

	out := cmd.OutOrStdout()
	if summary.Total() == 0 {
		fmt.Fprintf(out, "No results in %s.\n", storePath)
		return nil
	}
	writeHuman(out, results, st)
	fmt.Fprintln(out)
	writeSummary(out, summary, st)
	return nil
}

func invalidOnly(results []*types.Result) []*types.Result {
	var out []*types.Result
	for _, r := range results {
		if !r.Verdict.OK() {
			out = append(out, r)
		}
	}
	return out
}
