// Command codetester runs snippets and quizzes against a Judge0 server from
// the terminal.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/config"
	"github.com/gsarma/codetester/internal/logger"
	"github.com/gsarma/codetester/internal/quiz"
)

// exitError carries a process exit code without an error message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

const (
	exitFailed       = 1
	exitIncorrect    = 2
	exitInconclusive = 3
)

func main() {
	err := newRootCmd(os.Stdout, os.Stderr).Execute()
	var ee *exitError
	switch {
	case err == nil:
	case errors.As(err, &ee):
		os.Exit(ee.code)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFailed)
	}
}

// app is the state shared by subcommands, loaded once before any of them run.
type app struct {
	cfg     *config.AppConfig
	log     *zap.Logger
	langs   *code.Catalog
	quizzes *quiz.Catalog
}

func (a *app) runner() *code.Runner {
	return code.NewRunner(code.NewJudge0Provider(a.cfg.Judge0Settings()),
		code.WithPollConfig(a.cfg.PollSettings()),
		code.WithObserver(func(token string, state code.RunState) {
			a.log.Debug("run state", zap.String("token", token), zap.String("state", string(state)))
		}),
	)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	var configPath string

	root := &cobra.Command{
		Use:           "codetester",
		Short:         "Run code snippets and quizzes against a Judge0 server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(configPath, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CODETESTER_CONFIG"), "path to a YAML config file")

	root.AddCommand(newRunCmd(a), newLanguagesCmd(a), newQuizCmd(a))
	return root
}

func (a *app) load(configPath string, stderr io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console", Output: stderr})
	if err != nil {
		return err
	}

	langs := code.DefaultCatalog()
	if cfg.LanguagesFile != "" {
		if langs, err = code.LoadCatalog(cfg.LanguagesFile); err != nil {
			return err
		}
	}
	quizzes := quiz.DefaultCatalog()
	if cfg.QuizzesFile != "" {
		if quizzes, err = quiz.LoadCatalog(cfg.QuizzesFile); err != nil {
			return err
		}
	}

	a.cfg, a.log, a.langs, a.quizzes = cfg, log, langs, quizzes
	return nil
}
