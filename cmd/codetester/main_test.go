package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gsarma/codetester/internal/code"
)

func fakeJudge(t *testing.T, stdout string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/submissions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/submissions/tok-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"stdout":    base64.StdEncoding.EncodeToString([]byte(stdout)),
			"status_id": code.StatusAccepted,
			"status":    map[string]any{"id": code.StatusAccepted, "description": "Accepted"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setup writes a config pointing at judgeURL with fast polling and a source file.
func setup(t *testing.T, judgeURL, source string) (configPath, sourcePath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.yaml")
	cfg := "judge0:\n  url: " + judgeURL + "\npoll:\n  settleDelay: 1ms\n  pollInterval: 1ms\n  maxWait: 1s\n"
	if err := os.WriteFile(configPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	sourcePath = filepath.Join(dir, "main.js")
	if err := os.WriteFile(sourcePath, []byte(source), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JUDGE0_URL", "")
	t.Setenv("LANGUAGES_FILE", "")
	t.Setenv("QUIZZES_FILE", "")
	return configPath, sourcePath
}

func execute(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		return exitFailed
	}
	return 0
}

func TestRun_Correct(t *testing.T) {
	srv := fakeJudge(t, "true\ntrue\nfalse\n")
	cfg, src := setup(t, srv.URL, "function checkIsEven(n) { return n % 2 === 0 }")

	out, err := execute("--config", cfg, "run", src, "--lang", "js",
		"--function", "checkIsEven", "--arg", "2", "--arg", "4", "--arg", "7", "--expect", "true true false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Correct!") {
		t.Errorf("expected Correct! in output, got %q", out)
	}
}

func TestRun_Incorrect(t *testing.T) {
	srv := fakeJudge(t, "true\n")
	cfg, src := setup(t, srv.URL, "function checkIsEven(n) { return true }")

	out, err := execute("--config", cfg, "run", src, "--function", "checkIsEven", "--arg", "3", "--expect", "false")
	if got := exitCode(err); got != exitIncorrect {
		t.Fatalf("expected exit %d, got %d (%v)", exitIncorrect, got, err)
	}
	if !strings.Contains(out, "Not Quite...") {
		t.Errorf("expected Not Quite... in output, got %q", out)
	}
}

func TestRun_JSON(t *testing.T) {
	srv := fakeJudge(t, "hi\n")
	cfg, src := setup(t, srv.URL, `console.log("hi")`)

	out, err := execute("--config", cfg, "run", src, "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res code.RunResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if res.Token != "tok-1" || res.Output != "hi\n" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRun_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	cfg, src := setup(t, srv.URL, `console.log("hi")`)

	out, err := execute("--config", cfg, "run", src)
	if got := exitCode(err); got != exitFailed {
		t.Fatalf("expected exit %d, got %d (%v)", exitFailed, got, err)
	}
	if !strings.Contains(out, "transport error") {
		t.Errorf("expected transport error in output, got %q", out)
	}
}

func TestRun_ArgsWithoutFunction(t *testing.T) {
	cfg, src := setup(t, "http://127.0.0.1:0", `console.log(1)`)

	if _, err := execute("--config", cfg, "run", src, "--arg", "1"); err == nil {
		t.Fatal("expected an error for --arg without --function")
	}
}

func TestRun_UnknownLanguage(t *testing.T) {
	cfg, src := setup(t, "http://127.0.0.1:0", `print(1)`)

	_, err := execute("--config", cfg, "run", src, "--lang", "cobol")
	if !errors.Is(err, code.ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
}

func TestLanguages(t *testing.T) {
	cfg, _ := setup(t, "http://127.0.0.1:0", "")

	out, err := execute("--config", cfg, "languages")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"js", "63", "csharp", "51"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestQuiz_ListAndAttempt(t *testing.T) {
	srv := fakeJudge(t, "true\ntrue\nfalse\n")
	cfg, src := setup(t, srv.URL, "function checkIsEven(n) { return n % 2 === 0 }")

	out, err := execute("--config", cfg, "quiz", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "js-even") {
		t.Fatalf("expected js-even in quiz list:\n%s", out)
	}

	out, err = execute("--config", cfg, "quiz", "attempt", "js-even", src)
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if !strings.Contains(out, "Correct!") {
		t.Errorf("expected Correct! in output, got %q", out)
	}
}
