package brackets

import (
	"database/sql/driver"
	"fmt"
)

// Verdict is the outcome of matching a stream.
type Verdict string

const (
	// Valid means every opener was closed by its own kind in nesting order.
	Valid Verdict = "valid"
	// Invalid means a mismatch, a stray closer, or an unterminated opener.
	Invalid Verdict = "invalid"
)

// ParseVerdict converts a stored string back to a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case Valid, Invalid:
		return Verdict(s), nil
	default:
		return "", fmt.Errorf("unknown verdict: %q", s)
	}
}

// OK reports whether the verdict is Valid.
func (v Verdict) OK() bool {
	return v == Valid
}

// Message returns the line printed for the verdict.
func (v Verdict) Message() string {
	if v == Valid {
		return "ok"
	}
	return "bad structure"
}

// Value implements driver.Valuer.
func (v Verdict) Value() (driver.Value, error) {
	return string(v), nil
}

// Scan implements sql.Scanner.
func (v *Verdict) Scan(value interface{}) error {
	var s string
	switch t := value.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return fmt.Errorf("cannot scan type %T into Verdict", value)
	}

	parsed, err := ParseVerdict(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
