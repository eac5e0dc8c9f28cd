package main

import (
	"context"
	"fmt"
	"os"

	"github.com/praetorian-inc/checkparens/pkg/config"
	"github.com/praetorian-inc/checkparens/pkg/enum"
	"github.com/praetorian-inc/checkparens/pkg/scanner"
	"github.com/praetorian-inc/checkparens/pkg/store"
	"github.com/praetorian-inc/checkparens/pkg/types"
	"github.com/spf13/cobra"
)

var (
	scanConfigPath    string
	scanOutputPath    string
	scanOutputFormat  string
	scanGit           bool
	scanRevision      string
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanArchives      bool
	scanIncremental   bool
	scanFail          bool
	scanColor         string
	scanQuiet         bool
	scanVerbose       bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>...",
	Short: "Check every file under one or more targets",
	Long: `Check the bracket structure of files, directories, or git repositories.

Files matched by the root .gitignore or by the exclude patterns of
.checkparens.yaml are skipped, as are binary files and hidden entries.
Verdicts are stored in the output database for later reports.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanConfigPath, "config", "", "Path to config file (default: .checkparens.yaml in the first target)")
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "checkparens.db", "Output database path (:memory: or postgres:// DSN also accepted)")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: human, json, sarif")
	scanCmd.Flags().BoolVar(&scanGit, "git", false, "Treat targets as git repositories (check the tree at --ref)")
	scanCmd.Flags().StringVar(&scanRevision, "ref", "HEAD", "Git revision to check with --git")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 0, "Maximum file size in bytes (0 uses the config value, -1 disables the limit)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().BoolVar(&scanArchives, "archives", false, "Check members of .zip and .7z archives")
	scanCmd.Flags().BoolVar(&scanIncremental, "incremental", false, "Reuse stored verdicts for already-checked blobs")
	scanCmd.Flags().BoolVar(&scanFail, "fail", false, "Exit with status 1 if any file has bad structure")
	scanCmd.Flags().StringVar(&scanColor, "color", "auto", "Color output: auto, always, never")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Suppress the summary")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Log each checked file to stderr")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := validFormat(scanOutputFormat); err != nil {
		return err
	}
	enabled, err := colorEnabled(scanColor, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	st := newStyles(enabled)

	for _, target := range args {
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("target does not exist: %s", target)
		}
	}

	cfg, err := loadScanConfig(args[0])
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.New(store.Config{
		Path: scanOutputPath,
	})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	logger := scanner.DebugLogger(scanner.NoopLogger{})
	if scanVerbose {
		logger = scanner.NewWriterLogger(cmd.ErrOrStderr())
	}
	core, err := scanner.NewCore(scanner.Options{
		Store:       s,
		Incremental: scanIncremental,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating scanner: %w", err)
	}
	defer core.Close()

	enumerator := createEnumerator(args, cfg)
	if err := enumerator.Enumerate(context.Background(), core.Check); err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	results := core.Results()
	if err := writeResults(cmd.OutOrStdout(), scanOutputFormat, results, st); err != nil {
		return err
	}

	summary := types.Summarize(results)
	if !scanQuiet {
		// Keep stdout pure JSON for machine formats
		out := cmd.OutOrStdout()
		if scanOutputFormat != "human" {
			out = cmd.ErrOrStderr()
		}
		writeSummary(out, summary, st)
		if scanIncremental {
			fmt.Fprintf(out, "Reused %d stored verdicts\n", core.Reused())
		}
		fmt.Fprintf(out, "Results stored in: %s\n", st.metadata.Sprint(scanOutputPath))
	}

	if scanFail && summary.Invalid > 0 {
		return errBadStructure
	}
	return nil
}

// loadScanConfig reads the config file and applies flag overrides.
func loadScanConfig(target string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if scanConfigPath != "" {
		cfg, err = config.Load(scanConfigPath)
	} else {
		cfg, err = config.Discover(target)
	}
	if err != nil {
		return nil, err
	}

	if scanIncludeHidden {
		cfg.IncludeHidden = true
	}
	if scanArchives {
		cfg.Archives = true
	}
	switch {
	case scanMaxFileSize < 0:
		cfg.MaxFileSize = 0
	case scanMaxFileSize > 0:
		cfg.MaxFileSize = scanMaxFileSize
	}
	return cfg, nil
}

func createEnumerator(targets []string, cfg *config.Config) enum.Enumerator {
	enumerators := make([]enum.Enumerator, 0, len(targets))
	for _, target := range targets {
		enumConfig := enum.Config{
			Root:           target,
			IncludeHidden:  cfg.IncludeHidden,
			MaxFileSize:    cfg.MaxFileSize,
			FollowSymlinks: false,
			Exclude:        cfg.Exclude,
			Archives:       cfg.Archives,
		}

		if scanGit {
			g := enum.NewGitEnumerator(enumConfig)
			g.Revision = scanRevision
			enumerators = append(enumerators, g)
		} else {
			enumerators = append(enumerators, enum.NewFilesystemEnumerator(enumConfig))
		}
	}

	if len(enumerators) == 1 {
		return enumerators[0]
	}
	return enum.NewCombinedEnumerator(enumerators...)
}
