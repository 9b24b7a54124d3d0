package code_test

import (
	"testing"

	"github.com/gsarma/codetester/internal/code"
)

func strPtr(s string) *string { return &s }

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name     string
		outcome  code.Outcome
		expected *string
		want     code.RunResult
	}{
		{
			name:     "whitespace and case insensitive match",
			outcome:  code.Outcome{Stdout: strPtr("true true false"), StatusID: code.StatusAccepted},
			expected: strPtr("True  True  False"),
			want:     code.RunResult{Output: "true true false", Verdict: code.VerdictCorrect},
		},
		{
			name:     "newline separated output matches",
			outcome:  code.Outcome{Stdout: strPtr("true\ntrue\nfalse\n")},
			expected: strPtr("true true false"),
			want:     code.RunResult{Output: "true\ntrue\nfalse\n", Verdict: code.VerdictCorrect},
		},
		{
			name:     "mismatch is incorrect",
			outcome:  code.Outcome{Stdout: strPtr("true false false")},
			expected: strPtr("true true false"),
			want:     code.RunResult{Output: "true false false", Verdict: code.VerdictIncorrect},
		},
		{
			name:    "no expected result means no verdict",
			outcome: code.Outcome{Stdout: strPtr("4\n")},
			want:    code.RunResult{Output: "4\n"},
		},
		{
			name:     "compile output suppresses verdict",
			outcome:  code.Outcome{CompileOutput: strPtr("syntax error")},
			expected: strPtr("anything"),
			want:     code.RunResult{ErrorText: "syntax error", Verdict: code.VerdictNotEvaluated},
		},
		{
			name:    "compile output wins over stderr",
			outcome: code.Outcome{CompileOutput: strPtr("CS1002: ; expected"), Stderr: strPtr("runtime")},
			want:    code.RunResult{ErrorText: "CS1002: ; expected"},
		},
		{
			name:    "stderr wins over stdout",
			outcome: code.Outcome{Stdout: strPtr("partial"), Stderr: strPtr("ReferenceError: x is not defined")},
			want:    code.RunResult{ErrorText: "ReferenceError: x is not defined"},
		},
		{
			name:    "failure status without error text",
			outcome: code.Outcome{Stdout: strPtr("1\n2\n"), StatusID: code.StatusTimeLimitExceeded, Status: "Time Limit Exceeded"},
			want:    code.RunResult{ErrorText: "Time Limit Exceeded"},
		},
		{
			name:    "empty stderr is ignored",
			outcome: code.Outcome{Stdout: strPtr("ok"), Stderr: strPtr("")},
			want:    code.RunResult{Output: "ok"},
		},
		{
			name:     "nothing observable is inconclusive",
			outcome:  code.Outcome{StatusID: code.StatusProcessing},
			expected: strPtr("x"),
			want:     code.RunResult{Inconclusive: true, Verdict: code.VerdictNotEvaluated},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := code.Evaluate(tc.outcome, tc.expected)
			if got.Output != tc.want.Output {
				t.Errorf("output: want %q, got %q", tc.want.Output, got.Output)
			}
			if got.ErrorText != tc.want.ErrorText {
				t.Errorf("error_text: want %q, got %q", tc.want.ErrorText, got.ErrorText)
			}
			if got.Verdict != tc.want.Verdict {
				t.Errorf("verdict: want %q, got %q", tc.want.Verdict, got.Verdict)
			}
			if got.Inconclusive != tc.want.Inconclusive {
				t.Errorf("inconclusive: want %v, got %v", tc.want.Inconclusive, got.Inconclusive)
			}
			if got.TransportError != "" {
				t.Errorf("evaluate must never set transport_error, got %q", got.TransportError)
			}
			if got.Output != "" && got.ErrorText != "" {
				t.Error("output and error_text must not both be set")
			}
		})
	}
}
