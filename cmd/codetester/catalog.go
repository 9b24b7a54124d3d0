package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gsarma/codetester/internal/quiz"
)

func newLanguagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the configured languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tJUDGE ID\tWRAP\tALIASES")
			for _, l := range a.langs.All() {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", l.Name, l.JudgeLanguageID, l.WrapStyle, strings.Join(l.Aliases, ","))
			}
			return tw.Flush()
		},
	}
}

func newQuizCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "List and attempt quizzes",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List quizzes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLANGUAGE\tTITLE")
			for _, q := range a.quizzes.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", q.ID, q.Language, q.Title)
			}
			return tw.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print a quiz prompt and its starter code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.quizzes.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n\n%s\n", q.Title, q.Prompt, q.StarterCode)
			return nil
		},
	}

	var asJSON bool
	attempt := &cobra.Command{
		Use:   "attempt ID FILE",
		Short: "Grade a solution file against a quiz",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[1])
			if err != nil {
				return err
			}
			svc := quiz.NewService(a.quizzes, a.langs, a.runner(), quiz.NewMemoryTracker(), a.log)
			res, err := svc.Attempt(cmd.Context(), uuid.NewString(), args[0], source)
			if err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), res.Result, asJSON); err != nil {
				return err
			}
			return resultExit(res.Result)
		},
	}
	attempt.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	cmd.AddCommand(list, show, attempt)
	return cmd
}
