package codetester

import "time"

// --- Tenant ---

// CreateTenantResponse is returned when a new tenant is provisioned.
type CreateTenantResponse struct {
	TenantID string `json:"tenant_id"`
	APIKey   string `json:"api_key"`
	Note     string `json:"note"`
}

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is a generic {"status": "..."} response.
type StatusResponse struct {
	Status string `json:"status"`
}

// --- Code ---

// Judge0Config points a tenant at its own Judge0 instance or RapidAPI
// subscription. Empty fields fall back to the server's settings.
type Judge0Config struct {
	URL          string `json:"url,omitempty"`
	AuthToken    string `json:"auth_token,omitempty"`
	RapidAPIKey  string `json:"rapidapi_key,omitempty"`
	RapidAPIHost string `json:"rapidapi_host,omitempty"`
	Stdin        string `json:"stdin,omitempty"`
}

// EvaluateRequest is the body of POST /code/:provider/evaluate.
// TestCases and ExpectedResult require FunctionName.
type EvaluateRequest struct {
	SourceCode     string   `json:"source_code"`
	Language       string   `json:"language"`
	FunctionName   string   `json:"function_name,omitempty"`
	TestCases      []string `json:"test_cases,omitempty"`
	ExpectedResult *string  `json:"expected_result,omitempty"`
}

// EvaluateResponse carries either a queued job (JobID) or, for synchronous
// calls, the finished Result.
type EvaluateResponse struct {
	JobID  string     `json:"job_id,omitempty"`
	Status string     `json:"status"`
	Result *RunResult `json:"-"`
}

// Verdict values for RunResult.Verdict.
const (
	VerdictCorrect      = "correct"
	VerdictIncorrect    = "incorrect"
	VerdictNotEvaluated = "not-evaluated"
)

// RunResult is the outcome of one run. At most one of Output and ErrorText
// is meaningful. TransportError is set when the judge could not be reached.
type RunResult struct {
	Token          string `json:"token,omitempty"`
	Output         string `json:"output"`
	ErrorText      string `json:"error_text"`
	TransportError string `json:"transport_error"`
	Verdict        string `json:"verdict,omitempty"`
	Inconclusive   bool   `json:"inconclusive"`
	Note           string `json:"note,omitempty"`
	StatusID       int    `json:"status_id,omitempty"`
	Status         string `json:"status,omitempty"`
}

// Succeeded reports whether the program ran without error.
func (r RunResult) Succeeded() bool {
	return r.TransportError == "" && r.ErrorText == "" && !r.Inconclusive
}

// CodeExecution is the stored result of a queued evaluation.
type CodeExecution struct {
	ID             string    `json:"id"`
	JobID          string    `json:"job_id"`
	TenantID       string    `json:"tenant_id"`
	Token          string    `json:"token"`
	Output         string    `json:"output"`
	ErrorText      string    `json:"error_text"`
	TransportError string    `json:"transport_error"`
	Verdict        *string   `json:"verdict"`
	Inconclusive   bool      `json:"inconclusive"`
	Note           string    `json:"note"`
	StatusID       int       `json:"status_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Language is one entry of GET /languages.
type Language struct {
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	JudgeLanguageID int      `json:"judge_language_id"`
	WrapStyle       string   `json:"wrap_style"`
	PrintCall       string   `json:"print_call,omitempty"`
	EntryType       string   `json:"entry_type,omitempty"`
	Aliases         []string `json:"aliases,omitempty"`
	StarterCode     string   `json:"starter_code,omitempty"`
}

type languageList struct {
	Languages []Language `json:"languages"`
}

// --- Quizzes ---

type Quiz struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Prompt       string   `json:"prompt"`
	Language     string   `json:"language"`
	StarterCode  string   `json:"starter_code"`
	FunctionName string   `json:"function_name"`
	TestCases    []string `json:"test_cases"`
}

type quizList struct {
	Quizzes []Quiz `json:"quizzes"`
}

// AttemptRequest submits a quiz solution. Leave SessionID empty to start a
// new session.
type AttemptRequest struct {
	SourceCode string `json:"source_code"`
	SessionID  string `json:"session_id,omitempty"`
}

// AttemptResponse is the graded attempt. Message is "Correct!" or
// "Not Quite...", or empty when the run could not be graded.
type AttemptResponse struct {
	SessionID      string    `json:"session_id"`
	QuizID         string    `json:"quiz_id"`
	Result         RunResult `json:"result"`
	IncorrectCount int64     `json:"incorrect_count"`
	Message        string    `json:"message"`
}

// --- Jobs ---

// Job represents an async background job.
type Job struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	JobType     string     `json:"job_type"`
	Status      string     `json:"status"`
	Attempt     int        `json:"attempt"`
	MaxAttempts int        `json:"max_attempts"`
	Error       *string    `json:"error,omitempty"`
	RunAt       time.Time  `json:"run_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Done reports whether the job has reached a final state.
func (j *Job) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// JobStatus constants for Job.Status.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)
