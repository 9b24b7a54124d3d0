package code

import (
	"strings"
	"unicode"
)

// Verdict classifies observed output against an expected answer.
type Verdict string

const (
	VerdictCorrect      Verdict = "correct"
	VerdictIncorrect    Verdict = "incorrect"
	VerdictNotEvaluated Verdict = "not-evaluated"
)

// RunResult is the single value handed back for one run. At most one of
// Output, ErrorText and TransportError is set; none of them is set when
// Inconclusive is true.
type RunResult struct {
	Token          string  `json:"token,omitempty"`
	Output         string  `json:"output"`
	ErrorText      string  `json:"error_text"`
	TransportError string  `json:"transport_error"`
	Verdict        Verdict `json:"verdict,omitempty"`
	Inconclusive   bool    `json:"inconclusive"`
	Note           string  `json:"note,omitempty"`
	StatusID       int     `json:"status_id,omitempty"`
	Status         string  `json:"status,omitempty"`
}

// Succeeded reports whether the program produced output without an error.
func (r RunResult) Succeeded() bool {
	return r.ErrorText == "" && r.TransportError == "" && !r.Inconclusive
}

// Evaluate classifies a completed outcome. Compile output beats stderr, and
// an error of either kind suppresses the verdict.
func Evaluate(outcome Outcome, expected *string) RunResult {
	res := RunResult{StatusID: outcome.StatusID, Status: outcome.Status}

	switch {
	case nonEmpty(outcome.CompileOutput):
		res.ErrorText = *outcome.CompileOutput
	case nonEmpty(outcome.Stderr):
		res.ErrorText = *outcome.Stderr
	case isFailureStatus(outcome.StatusID):
		res.ErrorText = outcome.Status
		if res.ErrorText == "" {
			res.ErrorText = StatusDescription(outcome.StatusID)
		}
	case outcome.Stdout != nil:
		res.Output = *outcome.Stdout
		if expected != nil {
			if normalize(res.Output) == normalize(*expected) {
				res.Verdict = VerdictCorrect
			} else {
				res.Verdict = VerdictIncorrect
			}
		}
		return res
	default:
		res.Inconclusive = true
	}

	if expected != nil {
		res.Verdict = VerdictNotEvaluated
	}
	return res
}

// normalize drops all whitespace and lower-cases, so "True  True\nFalse"
// compares equal to "true true false".
func normalize(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}
