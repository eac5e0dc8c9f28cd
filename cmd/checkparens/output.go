package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/praetorian-inc/checkparens/pkg/sarif"
	"github.com/praetorian-inc/checkparens/pkg/types"
	"golang.org/x/term"
)

// styles holds color formatters for human output.
type styles struct {
	ok       *color.Color
	bad      *color.Color
	heading  *color.Color
	metadata *color.Color
}

// newStyles creates color formatters.
// enabled=false respects --color never and the NO_COLOR env var.
func newStyles(enabled bool) *styles {
	s := &styles{
		ok:       color.New(color.FgHiGreen),
		bad:      color.New(color.Bold, color.FgHiRed),
		heading:  color.New(color.Bold),
		metadata: color.New(color.FgHiBlue),
	}

	if !enabled {
		s.ok.DisableColor()
		s.bad.DisableColor()
		s.heading.DisableColor()
		s.metadata.DisableColor()
	} else {
		s.ok.EnableColor()
		s.bad.EnableColor()
		s.heading.EnableColor()
		s.metadata.EnableColor()
	}

	return s
}

// colorEnabled resolves a --color mode for output written to w.
func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("unknown color mode: %s", mode)
	}
}

func validFormat(format string) error {
	switch format {
	case "human", "json", "sarif":
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// writeResults renders results to w in the given format.
func writeResults(w io.Writer, format string, results []*types.Result, st *styles) error {
	switch format {
	case "json":
		return writeJSON(w, results)
	case "sarif":
		return writeSARIF(w, results)
	case "human":
		writeHuman(w, results, st)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writeHuman(w io.Writer, results []*types.Result, st *styles) {
	for _, r := range results {
		verdictStyle := st.ok
		if !r.Verdict.OK() {
			verdictStyle = st.bad
		}
		fmt.Fprintf(w, "%s %s\n", verdictStyle.Sprint(r.Verdict.Message()), r.Path)
	}
}

func writeJSON(w io.Writer, results []*types.Result) error {
	if results == nil {
		results = []*types.Result{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func writeSARIF(w io.Writer, results []*types.Result) error {
	report := sarif.NewReport(version)
	report.AddResults(results)

	jsonBytes, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}
	if _, err := w.Write(append(jsonBytes, '\n')); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}
	return nil
}

// writeSummary prints verdict totals.
func writeSummary(w io.Writer, summary types.Summary, st *styles) {
	fmt.Fprintf(w, "%s %d files: %s, %s\n",
		st.heading.Sprint("Checked"),
		summary.Total(),
		st.ok.Sprintf("%d ok", summary.Valid),
		st.bad.Sprintf("%d bad structure", summary.Invalid))
}
