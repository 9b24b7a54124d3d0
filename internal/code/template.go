package code

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"
)

// CallSpec describes how to invoke the user's function once per test case.
// A nil TestCaseArguments means a single call with no arguments; an empty,
// non-nil slice means no calls at all.
type CallSpec struct {
	FunctionName      string   `json:"function_name"`
	TestCaseArguments []string `json:"test_cases,omitempty"`
	ExpectedResult    *string  `json:"expected_result,omitempty"`
}

var functionNamePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)

// Program shapes. Only {{.Source}}, {{.EntryType}} and {{range .Calls}} are
// insertion points; the call statements arrive fully formed as data.
var (
	inlineCallTemplate = template.Must(template.New("inline-call").Parse(
		`{{.Source}}{{range .Calls}}
{{.}}{{end}}`))

	classMainTemplate = template.Must(template.New("class-wrapped-main").Parse(
		`public class {{.EntryType}}{ {{.Source}} public static void Main(){ {{range .Calls}}
{{.}}{{end}}
}}`))
)

type programData struct {
	Source    string
	EntryType string
	Calls     []string
}

// Build assembles the program text submitted to the judge. Without a call
// spec, or for raw languages, the source is returned untouched.
func Build(raw string, lang LanguageSpec, call *CallSpec) (string, error) {
	if call == nil || lang.WrapStyle == WrapRaw || lang.WrapStyle == "" {
		return raw, nil
	}
	if !functionNamePattern.MatchString(call.FunctionName) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFunctionName, call.FunctionName)
	}

	var tmpl *template.Template
	terminator := ""
	switch lang.WrapStyle {
	case WrapInlineCall:
		tmpl = inlineCallTemplate
	case WrapClassMain:
		tmpl = classMainTemplate
		terminator = ";"
	default:
		return "", fmt.Errorf("language %q: unknown wrap style %q", lang.Name, lang.WrapStyle)
	}

	data := programData{
		Source:    raw,
		EntryType: lang.EntryType,
		Calls:     callStatements(lang.PrintCall, call, terminator),
	}
	if data.EntryType == "" {
		data.EntryType = "Program"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s program: %w", lang.WrapStyle, err)
	}
	return buf.String(), nil
}

func callStatements(printCall string, call *CallSpec, terminator string) []string {
	if call.TestCaseArguments == nil {
		return []string{fmt.Sprintf("%s(%s())%s", printCall, call.FunctionName, terminator)}
	}
	out := make([]string, 0, len(call.TestCaseArguments))
	for _, arg := range call.TestCaseArguments {
		out = append(out, fmt.Sprintf("%s(%s(%s))%s", printCall, call.FunctionName, arg, terminator))
	}
	return out
}
