package code

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// WrapStyle selects how SourceTemplater turns user source into a program.
type WrapStyle string

const (
	// WrapInlineCall appends one print statement per test case after the source.
	WrapInlineCall WrapStyle = "inline-call"
	// WrapClassMain embeds the source in a synthetic class with a Main entry point.
	WrapClassMain WrapStyle = "class-wrapped-main"
	// WrapRaw never modifies the source.
	WrapRaw WrapStyle = "raw"
)

func (w WrapStyle) valid() bool {
	switch w {
	case WrapInlineCall, WrapClassMain, WrapRaw:
		return true
	}
	return false
}

// LanguageSpec identifies a target language and how programs for it are
// assembled. Values come from the catalog and are never mutated.
type LanguageSpec struct {
	Name            string    `toml:"name" json:"name"`
	Title           string    `toml:"title" json:"title"`
	JudgeLanguageID int       `toml:"judge_language_id" json:"judge_language_id"`
	WrapStyle       WrapStyle `toml:"wrap_style" json:"wrap_style"`
	// PrintCall is the expression that writes a value to stdout,
	// e.g. "console.log" or "System.Console.WriteLine".
	PrintCall string `toml:"print_call" json:"print_call,omitempty"`
	// EntryType names the synthetic type for class-wrapped-main; defaults to "Program".
	EntryType string   `toml:"entry_type" json:"entry_type,omitempty"`
	Aliases   []string `toml:"aliases" json:"aliases,omitempty"`
}

// Catalog maps language names (and aliases) to their specs.
type Catalog struct {
	langs map[string]LanguageSpec
	names []string
}

type catalogFile struct {
	Lang []LanguageSpec `toml:"lang"`
}

// NewCatalog validates specs and indexes them by name and alias.
func NewCatalog(specs ...LanguageSpec) (*Catalog, error) {
	c := &Catalog{langs: make(map[string]LanguageSpec, len(specs))}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("language entry missing name")
		}
		if spec.JudgeLanguageID <= 0 {
			return nil, fmt.Errorf("language %q: judge_language_id must be positive", spec.Name)
		}
		if spec.WrapStyle == "" {
			spec.WrapStyle = WrapRaw
		}
		if !spec.WrapStyle.valid() {
			return nil, fmt.Errorf("language %q: unknown wrap_style %q", spec.Name, spec.WrapStyle)
		}
		if spec.WrapStyle != WrapRaw && spec.PrintCall == "" {
			return nil, fmt.Errorf("language %q: print_call is required for %s", spec.Name, spec.WrapStyle)
		}
		if spec.WrapStyle == WrapClassMain && spec.EntryType == "" {
			spec.EntryType = "Program"
		}
		for _, key := range append([]string{spec.Name}, spec.Aliases...) {
			key = strings.ToLower(key)
			if _, exists := c.langs[key]; exists {
				return nil, fmt.Errorf("duplicate language %q", key)
			}
			c.langs[key] = spec
		}
		c.names = append(c.names, spec.Name)
	}
	if len(c.names) == 0 {
		return nil, fmt.Errorf("at least one language must be configured")
	}
	sort.Strings(c.names)
	return c, nil
}

// LoadCatalog reads a TOML file of [[lang]] tables.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read language catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses TOML catalog content.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse language catalog: %w", err)
	}
	return NewCatalog(f.Lang...)
}

// DefaultCatalog returns the built-in JavaScript and C# entries.
// Judge0 CE ids: 63 = JavaScript (Node.js 12.14.0), 51 = C# (Mono 6.6.0.161).
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		LanguageSpec{
			Name:            "js",
			Title:           "JavaScript",
			JudgeLanguageID: 63,
			WrapStyle:       WrapInlineCall,
			PrintCall:       "console.log",
			Aliases:         []string{"javascript"},
		},
		LanguageSpec{
			Name:            "csharp",
			Title:           "C#",
			JudgeLanguageID: 51,
			WrapStyle:       WrapClassMain,
			PrintCall:       "System.Console.WriteLine",
			EntryType:       "Program",
			Aliases:         []string{"c#", "cs"},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves a name or alias, case-insensitively.
func (c *Catalog) Lookup(name string) (LanguageSpec, error) {
	spec, ok := c.langs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return LanguageSpec{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	return spec, nil
}

// All returns every language ordered by name.
func (c *Catalog) All() []LanguageSpec {
	out := make([]LanguageSpec, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.langs[strings.ToLower(name)])
	}
	return out
}
