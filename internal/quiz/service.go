package quiz

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/code"
)

const (
	MessageCorrect   = "Correct!"
	MessageIncorrect = "Not Quite..."
)

// Runner executes one templated submission.
type Runner interface {
	Run(ctx context.Context, req code.Request) code.RunResult
}

// Attempt is the graded outcome of one submission.
type Attempt struct {
	QuizID         string         `json:"quiz_id"`
	Result         code.RunResult `json:"result"`
	IncorrectCount int64          `json:"incorrect_count"`
	// Message is empty when the run could not be graded.
	Message string `json:"message,omitempty"`
}

type Service struct {
	quizzes *Catalog
	langs   *code.Catalog
	runner  Runner
	tracker Tracker
	log     *zap.Logger
}

func NewService(quizzes *Catalog, langs *code.Catalog, runner Runner, tracker Tracker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{quizzes: quizzes, langs: langs, runner: runner, tracker: tracker, log: log}
}

func (s *Service) List() []Quiz { return s.quizzes.List() }

func (s *Service) Get(id string) (Quiz, error) { return s.quizzes.Get(id) }

// Attempt grades source against a quiz. Only an incorrect verdict bumps the
// session's counter; errors, transport failures and inconclusive runs do not.
func (s *Service) Attempt(ctx context.Context, sessionID, quizID, source string) (Attempt, error) {
	q, err := s.quizzes.Get(quizID)
	if err != nil {
		return Attempt{}, err
	}
	lang, err := s.langs.Lookup(q.Language)
	if err != nil {
		return Attempt{}, fmt.Errorf("quiz %s: %w", q.ID, err)
	}

	res := s.runner.Run(ctx, code.Request{Source: source, Language: lang, Call: q.CallSpec()})
	out := Attempt{QuizID: q.ID, Result: res}

	switch res.Verdict {
	case code.VerdictCorrect:
		out.Message = MessageCorrect
		out.IncorrectCount, err = s.tracker.Incorrect(ctx, sessionID, q.ID)
	case code.VerdictIncorrect:
		out.Message = MessageIncorrect
		out.IncorrectCount, err = s.tracker.RecordIncorrect(ctx, sessionID, q.ID)
	default:
		out.IncorrectCount, err = s.tracker.Incorrect(ctx, sessionID, q.ID)
	}
	if err != nil {
		// The graded result stands even if the counter is unavailable.
		s.log.Warn("quiz tracker", zap.String("quiz_id", q.ID), zap.String("session_id", sessionID), zap.Error(err))
	}

	s.log.Info("quiz attempt",
		zap.String("quiz_id", q.ID),
		zap.String("session_id", sessionID),
		zap.String("verdict", string(res.Verdict)),
		zap.Int64("incorrect_count", out.IncorrectCount),
	)
	return out, nil
}
