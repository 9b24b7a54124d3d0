package codetester

import (
	"context"
	"fmt"
	"net/http"
)

// QuizService lists and grades quizzes.
type QuizService struct {
	c *Client
}

func (s *QuizService) List(ctx context.Context) ([]Quiz, error) {
	out, err := doRequest[quizList](ctx, s.c, http.MethodGet, "/quizzes", nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return out.Quizzes, nil
}

func (s *QuizService) Get(ctx context.Context, id string) (*Quiz, error) {
	return doRequest[Quiz](ctx, s.c, http.MethodGet, fmt.Sprintf("/quizzes/%s", id), nil, nil, http.StatusOK)
}

// Attempt grades source against quiz id. Pass the SessionID from a previous
// attempt to keep counting incorrect answers in the same session.
func (s *QuizService) Attempt(ctx context.Context, id string, req AttemptRequest) (*AttemptResponse, error) {
	return doRequest[AttemptResponse](ctx, s.c, http.MethodPost, fmt.Sprintf("/quizzes/%s/attempts", id), nil, req, http.StatusOK)
}
