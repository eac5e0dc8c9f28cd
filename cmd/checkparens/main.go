package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/praetorian-inc/checkparens"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return exitStatus(rootCmd.Execute(), stderr)
}

// exitStatus reports err on stderr and maps it to an exit status.
func exitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	var fe *checkparens.FileError
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprint(stderr, usageMessage)
	case errors.Is(err, errBadStructure):
		// Already reported per file.
	case errors.As(err, &fe) && fe.Op == checkparens.OpOpen:
		fmt.Fprintf(stderr, "Error! trying to open the file %s\n", fe.Path)
	case errors.As(err, &fe):
		fmt.Fprintf(stderr, "Error! trying to read the file %s\n", fe.Path)
	default:
		fmt.Fprintf(stderr, "Error: %s\n", err)
	}
	return 1
}
