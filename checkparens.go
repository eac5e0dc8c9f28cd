// Package checkparens checks that the brackets in text are balanced.
//
// Four bracket kinds are recognized: round (), square [], triangle <> and
// curly {}. Every occurrence of a bracket glyph is structural; everything
// else is ignored.
//
// # Basic Usage
//
//	verdict, err := checkparens.CheckFile("main.c")
//	if err != nil {
//	    log.Fatal(err) // the file could not be opened or read
//	}
//	fmt.Println(verdict.Message()) // "ok" or "bad structure"
//
// A structural rejection is reported as the Invalid verdict, never as an
// error, so callers can tell a badly nested file from an unreadable one.
package checkparens

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/praetorian-inc/checkparens/pkg/brackets"
)

// Re-export the core types so callers can import just this package.
type (
	// Verdict is the outcome of a check.
	Verdict = brackets.Verdict

	// Kind is one of the four bracket types.
	Kind = brackets.Kind
)

const (
	Valid   = brackets.Valid
	Invalid = brackets.Invalid
)

const (
	Round    = brackets.Round
	Square   = brackets.Square
	Triangle = brackets.Triangle
	Curly    = brackets.Curly
)

// File operations reported by FileError.
const (
	OpOpen = "open"
	OpRead = "read"
)

// FileError reports that a file could not be opened or read. It never
// describes bracket structure.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Check streams r through the matcher.
func Check(r io.Reader) (Verdict, error) {
	return brackets.MatchReader(r)
}

// CheckString checks s.
func CheckString(s string) Verdict {
	return brackets.MatchString(s)
}

// CheckFile streams the file at path through the matcher.
func CheckFile(path string) (Verdict, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FileError{Op: OpOpen, Path: path, Err: err}
	}
	defer f.Close()

	v, err := brackets.MatchReader(bufio.NewReader(f))
	if err != nil {
		return "", &FileError{Op: OpRead, Path: path, Err: err}
	}
	return v, nil
}
