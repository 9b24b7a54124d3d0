package quiz_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/quiz"
)

// runnerFunc adapts a function to quiz.Runner.
type runnerFunc func(ctx context.Context, req code.Request) code.RunResult

func (f runnerFunc) Run(ctx context.Context, req code.Request) code.RunResult { return f(ctx, req) }

func newRedisTracker(t *testing.T) (*quiz.RedisTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return quiz.NewRedisTracker(client, time.Hour), mr
}

func TestDefaultCatalog(t *testing.T) {
	c := quiz.DefaultCatalog()
	list := c.List()
	if len(list) != 2 || list[0].ID != "js-even" {
		t.Fatalf("unexpected default quizzes: %+v", list)
	}
	q, err := c.Get("csharp-even-chars")
	if err != nil {
		t.Fatal(err)
	}
	if q.FunctionName != "EvenNumberOfChars" || len(q.TestCases) != 3 {
		t.Errorf("unexpected quiz: %+v", q)
	}
	if _, err := c.Get("nope"); !errors.Is(err, quiz.ErrQuizNotFound) {
		t.Errorf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	doc := `
quizzes:
  - id: js-double
    title: Double it
    language: js
    functionName: double
    testCases: ["1", "2"]
    expectedResult: "2 4"
`
	path := filepath.Join(t.TempDir(), "quizzes.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := quiz.LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	q, err := c.Get("js-double")
	if err != nil {
		t.Fatal(err)
	}
	call := q.CallSpec()
	if call.FunctionName != "double" || *call.ExpectedResult != "2 4" || len(call.TestCaseArguments) != 2 {
		t.Errorf("unexpected call spec: %+v", call)
	}
}

func TestNewCatalog_Validation(t *testing.T) {
	ok := quiz.Quiz{ID: "a", Language: "js", FunctionName: "f"}
	cases := map[string][]quiz.Quiz{
		"missing id":       {{Language: "js", FunctionName: "f"}},
		"missing language": {{ID: "a", FunctionName: "f"}},
		"missing function": {{ID: "a", Language: "js"}},
		"duplicate":        {ok, ok},
	}
	for name, qs := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := quiz.NewCatalog(qs...); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRedisTracker(t *testing.T) {
	tr, mr := newRedisTracker(t)
	ctx := context.Background()

	if n, err := tr.Incorrect(ctx, "s1", "js-even"); err != nil || n != 0 {
		t.Fatalf("expected 0 for a fresh session, got %d, %v", n, err)
	}
	for want := int64(1); want <= 3; want++ {
		n, err := tr.RecordIncorrect(ctx, "s1", "js-even")
		if err != nil {
			t.Fatal(err)
		}
		if n != want {
			t.Errorf("expected count %d, got %d", want, n)
		}
	}
	if n, _ := tr.Incorrect(ctx, "s2", "js-even"); n != 0 {
		t.Errorf("sessions must not share counters, got %d", n)
	}

	key := "codetester:quiz:s1:js-even:incorrect"
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Errorf("expected ttl 1h, got %s", ttl)
	}
	mr.FastForward(2 * time.Hour)
	if n, _ := tr.Incorrect(ctx, "s1", "js-even"); n != 0 {
		t.Errorf("expected counter to expire, got %d", n)
	}
}

func TestRedisTracker_Unavailable(t *testing.T) {
	tr, mr := newRedisTracker(t)
	mr.Close()
	if _, err := tr.RecordIncorrect(context.Background(), "s", "q"); err == nil {
		t.Error("expected error when redis is down")
	}
}

func TestService_Attempt(t *testing.T) {
	var gotReq code.Request
	verdict := code.VerdictIncorrect
	runner := runnerFunc(func(_ context.Context, req code.Request) code.RunResult {
		gotReq = req
		return code.RunResult{Output: "true true true", Verdict: verdict, StatusID: code.StatusAccepted}
	})
	tr, _ := newRedisTracker(t)
	svc := quiz.NewService(quiz.DefaultCatalog(), code.DefaultCatalog(), runner, tr, nil)
	ctx := context.Background()

	a, err := svc.Attempt(ctx, "sess", "js-even", "function checkIsEven(n){ return true }")
	if err != nil {
		t.Fatal(err)
	}
	if gotReq.Language.JudgeLanguageID != 63 || gotReq.Call == nil || gotReq.Call.FunctionName != "checkIsEven" {
		t.Errorf("unexpected runner request: %+v", gotReq)
	}
	if a.Message != quiz.MessageIncorrect || a.IncorrectCount != 1 {
		t.Errorf("expected first incorrect attempt, got %+v", a)
	}

	a, _ = svc.Attempt(ctx, "sess", "js-even", "still wrong")
	if a.IncorrectCount != 2 {
		t.Errorf("expected count 2, got %d", a.IncorrectCount)
	}

	verdict = code.VerdictCorrect
	a, _ = svc.Attempt(ctx, "sess", "js-even", "function checkIsEven(n){ return n % 2 === 0 }")
	if a.Message != quiz.MessageCorrect || a.IncorrectCount != 2 {
		t.Errorf("expected correct with count unchanged, got %+v", a)
	}

	verdict = code.VerdictNotEvaluated
	a, _ = svc.Attempt(ctx, "sess", "js-even", "syntax(")
	if a.Message != "" || a.IncorrectCount != 2 {
		t.Errorf("ungraded runs must not count, got %+v", a)
	}
}

func TestService_AttemptUnknownQuiz(t *testing.T) {
	svc := quiz.NewService(quiz.DefaultCatalog(), code.DefaultCatalog(), runnerFunc(func(context.Context, code.Request) code.RunResult {
		t.Error("runner must not be called")
		return code.RunResult{}
	}), quiz.NewMemoryTracker(), nil)

	if _, err := svc.Attempt(context.Background(), "s", "missing", "x"); !errors.Is(err, quiz.ErrQuizNotFound) {
		t.Errorf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestStarterCode(t *testing.T) {
	if !strings.Contains(quiz.StarterCode("js"), "console.log") {
		t.Error("expected a js starter snippet")
	}
	if !strings.Contains(quiz.StarterCode("c#"), "static void Main") {
		t.Error("expected a c# starter snippet")
	}
	if quiz.StarterCode("cobol") != "" {
		t.Error("expected no snippet for unknown languages")
	}
}

func TestLoadCatalog_SampleConfig(t *testing.T) {
	c, err := quiz.LoadCatalog(filepath.Join("..", "..", "configs", "quizzes.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, err := c.Get("csharp-even-chars")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.ExpectedResult != "false true false" || len(q.TestCases) != 3 || q.TestCases[0] != `"1"` {
		t.Errorf("unexpected quiz: %+v", q)
	}
}

func TestQuizCallSpec_KeepsNilAndEmptyDistinct(t *testing.T) {
	noArgs := quiz.Quiz{ID: "a", FunctionName: "f"}
	if call := noArgs.CallSpec(); call.TestCaseArguments != nil {
		t.Errorf("nil test cases must stay nil (one no-argument call), got %#v", call.TestCaseArguments)
	}

	noCalls := quiz.Quiz{ID: "b", FunctionName: "f", TestCases: []string{}}
	call := noCalls.CallSpec()
	if call.TestCaseArguments == nil || len(call.TestCaseArguments) != 0 {
		t.Errorf("empty test cases must stay empty (zero calls), got %#v", call.TestCaseArguments)
	}

	withArgs := quiz.Quiz{ID: "c", FunctionName: "f", TestCases: []string{"1"}}
	call = withArgs.CallSpec()
	call.TestCaseArguments[0] = "2"
	if withArgs.TestCases[0] != "1" {
		t.Error("CallSpec must copy the quiz's test cases")
	}
}
