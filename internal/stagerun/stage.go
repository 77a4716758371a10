package stagerun

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage is one named step of the fixed processing pipeline. Ordinal gives its
// 1-based position; Script is the program file resolved under the configured
// script directory.
type Stage struct {
	Name    string
	Ordinal int
	Script  string
}

// DisplayName renders the stage name for logs and progress output.
func (s Stage) DisplayName() string {
	return cases.Title(language.Und).String(strings.ReplaceAll(s.Name, "-", " "))
}

// Sequence returns the fixed ordered pipeline applied to every project:
// page extraction, text recognition, translation, overlay rendering, and
// final document composition. Every stage reads and writes the well-known
// workspace paths by convention.
func Sequence() []Stage {
	return []Stage{
		{Name: "extract", Ordinal: 1, Script: "extract.py"},
		{Name: "recognize-text", Ordinal: 2, Script: "recognize_text.py"},
		{Name: "translate-text", Ordinal: 3, Script: "translate_text.py"},
		{Name: "overlay", Ordinal: 4, Script: "overlay.py"},
		{Name: "compose-output", Ordinal: 5, Script: "compose_output.py"},
	}
}
