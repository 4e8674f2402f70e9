package scoring

import (
	"encoding/json"
	"slices"
	"strings"
)

// Verdict is the categorical output of visual comparison.
type Verdict string

// Visual verdicts, ordered from strongest match to explicit forgery signal.
const (
	VerdictIdentical   Verdict = "identical"
	VerdictSimilar     Verdict = "similar"
	VerdictDifferent   Verdict = "different"
	VerdictCounterfeit Verdict = "counterfeit"
)

var verdicts = []Verdict{
	VerdictIdentical,
	VerdictSimilar,
	VerdictDifferent,
	VerdictCounterfeit,
}

// ParseVerdict validates a string as a known visual verdict.
// Returns ErrInvalidVerdict if the value is not recognized.
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(verdicts, v) {
		return "", ErrInvalidVerdict
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known verdict value.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseVerdict(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
