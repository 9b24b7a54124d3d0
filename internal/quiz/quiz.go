// Package quiz serves graded coding exercises: a prompt, starter code and a
// set of test calls whose combined output must match an expected result.
package quiz

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/gsarma/codetester/internal/code"
)

var ErrQuizNotFound = errors.New("quiz not found")

type Quiz struct {
	ID             string   `yaml:"id" json:"id"`
	Title          string   `yaml:"title" json:"title"`
	Prompt         string   `yaml:"prompt" json:"prompt"`
	Language       string   `yaml:"language" json:"language"`
	StarterCode    string   `yaml:"starterCode" json:"starter_code"`
	FunctionName   string   `yaml:"functionName" json:"function_name"`
	TestCases      []string `yaml:"testCases" json:"test_cases"`
	ExpectedResult string   `yaml:"expectedResult" json:"-"`
}

// CallSpec is the templating input for grading a submission.
func (q Quiz) CallSpec() *code.CallSpec {
	expected := q.ExpectedResult
	return &code.CallSpec{
		FunctionName:      q.FunctionName,
		TestCaseArguments: slices.Clone(q.TestCases),
		ExpectedResult:    &expected,
	}
}

// Catalog is an ordered, read-only set of quizzes.
type Catalog struct {
	byID  map[string]Quiz
	order []string
}

func NewCatalog(quizzes ...Quiz) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Quiz, len(quizzes))}
	for _, q := range quizzes {
		switch {
		case q.ID == "":
			return nil, errors.New("quiz id is required")
		case q.Language == "":
			return nil, fmt.Errorf("quiz %s: language is required", q.ID)
		case q.FunctionName == "":
			return nil, fmt.Errorf("quiz %s: function name is required", q.ID)
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quiz id %s", q.ID)
		}
		c.byID[q.ID] = q
		c.order = append(c.order, q.ID)
	}
	return c, nil
}

// LoadCatalog reads a YAML document of the form `quizzes: [...]`.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quizzes: %w", err)
	}
	var doc struct {
		Quizzes []Quiz `yaml:"quizzes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse quizzes: %w", err)
	}
	return NewCatalog(doc.Quizzes...)
}

func (c *Catalog) Get(id string) (Quiz, error) {
	q, ok := c.byID[id]
	if !ok {
		return Quiz{}, fmt.Errorf("%w: %s", ErrQuizNotFound, id)
	}
	return q, nil
}

func (c *Catalog) List() []Quiz {
	out := make([]Quiz, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// DefaultCatalog holds the two built-in quizzes.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultQuizzes()...)
	if err != nil {
		panic(err)
	}
	return c
}

func DefaultQuizzes() []Quiz {
	return []Quiz{
		{
			ID:           "js-even",
			Title:        "JavaScript Quiz",
			Prompt:       "Write a function in JavaScript that returns true if a number is even, or false if it is not",
			Language:     "js",
			StarterCode:  "function checkIsEven(number){\n\n}\n",
			FunctionName: "checkIsEven",
			TestCases:    []string{"2", "4", "7"},
			// Judge output is compared with whitespace removed and case folded.
			ExpectedResult: "true true false",
		},
		{
			ID:    "csharp-even-chars",
			Title: "C# Quiz",
			Prompt: "Write a function in C# that takes in a string and returns true if that string has " +
				"an even number of characters, and false if it has an odd number of characters",
			Language:       "csharp",
			StarterCode:    "public static bool EvenNumberOfChars(string word)\n{\n\n}",
			FunctionName:   "EvenNumberOfChars",
			TestCases:      []string{`"1"`, `"11"`, `"111"`},
			ExpectedResult: "false true false",
		},
	}
}

// StarterCode returns the sandbox snippet shown for a language with no quiz.
func StarterCode(language string) string {
	switch language {
	case "js", "javascript":
		return "console.log(\"Hello, World!\");\n"
	case "csharp", "c#", "cs":
		return "public class Program\n{\n    public static void Main()\n    {\n        System.Console.WriteLine(\"Hello, World!\");\n    }\n}\n"
	default:
		return ""
	}
}
