package code

import "context"

// Judge0 status ids.
const (
	StatusInQueue             = 1
	StatusProcessing          = 2
	StatusAccepted            = 3
	StatusWrongAnswer         = 4
	StatusTimeLimitExceeded   = 5
	StatusCompilationError    = 6
	StatusRuntimeErrorSIGSEGV = 7
	StatusRuntimeErrorSIGXFSZ = 8
	StatusRuntimeErrorSIGFPE  = 9
	StatusRuntimeErrorSIGABRT = 10
	StatusRuntimeErrorNZEC    = 11
	StatusRuntimeErrorOther   = 12
	StatusInternalError       = 13
	StatusExecFormatError     = 14
)

var statusDescriptions = map[int]string{
	StatusInQueue:             "In Queue",
	StatusProcessing:          "Processing",
	StatusAccepted:            "Accepted",
	StatusWrongAnswer:         "Wrong Answer",
	StatusTimeLimitExceeded:   "Time Limit Exceeded",
	StatusCompilationError:    "Compilation Error",
	StatusRuntimeErrorSIGSEGV: "Runtime Error (SIGSEGV)",
	StatusRuntimeErrorSIGXFSZ: "Runtime Error (SIGXFSZ)",
	StatusRuntimeErrorSIGFPE:  "Runtime Error (SIGFPE)",
	StatusRuntimeErrorSIGABRT: "Runtime Error (SIGABRT)",
	StatusRuntimeErrorNZEC:    "Runtime Error (NZEC)",
	StatusRuntimeErrorOther:   "Runtime Error (Other)",
	StatusInternalError:       "Internal Error",
	StatusExecFormatError:     "Exec Format Error",
}

// StatusDescription returns Judge0's name for a status id.
func StatusDescription(id int) string {
	if d, ok := statusDescriptions[id]; ok {
		return d
	}
	return "unknown status"
}

// IsTerminalStatus reports whether the judge has finished with a submission.
func IsTerminalStatus(id int) bool {
	return id >= StatusAccepted
}

// isFailureStatus covers statuses where the program did not run to a clean
// exit. Wrong Answer is excluded: it only appears when expected_output is
// sent to the judge, which this package never does.
func isFailureStatus(id int) bool {
	return id >= StatusTimeLimitExceeded
}

// Outcome is one snapshot of a submission as reported by the judge, with
// text fields already decoded. Nil fields were null in the response.
type Outcome struct {
	Stdout        *string
	Stderr        *string
	CompileOutput *string
	StatusID      int
	Status        string
	LanguageID    int
	Time          string
	Memory        int
}

// hasResult reports whether the outcome carries any output or error text.
func (o *Outcome) hasResult() bool {
	return o.Stdout != nil || nonEmpty(o.Stderr) || nonEmpty(o.CompileOutput)
}

// JobPayload is the serialized form of a code.evaluate job stored in the jobs table.
type JobPayload struct {
	Provider   string    `json:"provider"`
	SourceCode string    `json:"source_code"`
	Language   string    `json:"language"`
	Call       *CallSpec `json:"call,omitempty"`
}

// Provider is the judging-service client the runner drives.
type Provider interface {
	// Submit queues an encoded program and returns its submission token.
	Submit(ctx context.Context, lang LanguageSpec, encodedProgram string) (string, error)
	// FetchResult returns the current state of a submission.
	FetchResult(ctx context.Context, token string) (*Outcome, error)
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
