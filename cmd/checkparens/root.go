package main

import (
	"errors"
	"fmt"

	"github.com/praetorian-inc/checkparens"
	"github.com/spf13/cobra"
)

const usageMessage = "Please supply a file!\nusage: checkparens <filename>\n"

var (
	// errUsage means the root command got the wrong arguments.
	errUsage = errors.New("usage")

	// errBadStructure fails a scan run with --fail after reporting.
	errBadStructure = errors.New("bad structure")
)

var rootCmd = &cobra.Command{
	Use:   "checkparens <filename>",
	Short: "Check that brackets in a file are balanced",
	Long: `checkparens reports whether the round (), square [], triangle <> and curly {}
brackets in a file are closed in proper nesting order.

It prints "ok" for a balanced file and "bad structure" otherwise. Every
bracket character counts, including those inside comments and strings.

Use the scan subcommand to check whole directories or git repositories.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errUsage
		}
		return nil
	},
	RunE:          runCheck,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if cmd == rootCmd {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return err
	})

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	verdict, err := checkparens.CheckFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), verdict.Message())
	return nil
}
