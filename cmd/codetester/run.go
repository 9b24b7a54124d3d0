package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/quiz"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		lang     string
		function string
		args     []string
		expect   string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a source file, optionally calling a function and grading its output",
		Example: `  codetester run hello.js --lang js
  codetester run even.js --lang js --function checkIsEven --arg 2 --arg 4 --arg 7 --expect "true true false"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			spec, err := a.langs.Lookup(lang)
			if err != nil {
				return err
			}
			source, err := readSource(posArgs[0])
			if err != nil {
				return err
			}

			req := code.Request{Source: source, Language: spec}
			if function != "" {
				req.Call = &code.CallSpec{FunctionName: function, TestCaseArguments: args}
				if cmd.Flags().Changed("expect") {
					req.Call.ExpectedResult = &expect
				}
			} else if cmd.Flags().Changed("expect") || len(args) > 0 {
				return fmt.Errorf("--arg and --expect require --function")
			}

			res := a.runner().Run(cmd.Context(), req)
			if err := printResult(cmd.OutOrStdout(), res, asJSON); err != nil {
				return err
			}
			return resultExit(res)
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "js", "language name or alias")
	cmd.Flags().StringVarP(&function, "function", "f", "", "function to call with each --arg")
	cmd.Flags().StringArrayVarP(&args, "arg", "a", nil, "argument expression for one call (repeatable)")
	cmd.Flags().StringVarP(&expect, "expect", "e", "", "expected combined output")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

// readSource reads path, or stdin when path is "-".
func readSource(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(b), nil
}

func printResult(w io.Writer, res code.RunResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	switch {
	case res.TransportError != "":
		fmt.Fprintf(w, "transport error: %s\n", res.TransportError)
	case res.ErrorText != "":
		fmt.Fprintf(w, "error:\n%s\n", res.ErrorText)
	case res.Inconclusive:
		fmt.Fprintf(w, "inconclusive: %s\n", res.Note)
	default:
		fmt.Fprintf(w, "output:\n%s\n", res.Output)
	}
	switch res.Verdict {
	case code.VerdictCorrect:
		fmt.Fprintln(w, quiz.MessageCorrect)
	case code.VerdictIncorrect:
		fmt.Fprintln(w, quiz.MessageIncorrect)
	}
	return nil
}

func resultExit(res code.RunResult) error {
	switch {
	case res.TransportError != "" || res.ErrorText != "":
		return &exitError{code: exitFailed}
	case res.Inconclusive:
		return &exitError{code: exitInconclusive}
	case res.Verdict == code.VerdictIncorrect:
		return &exitError{code: exitIncorrect}
	}
	return nil
}
