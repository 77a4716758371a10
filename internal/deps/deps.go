// Package deps reports the availability of the external pieces a translation
// run needs: the stage interpreter on PATH and the stage scripts on disk.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"glossa/internal/config"
	"glossa/internal/stagerun"
)

// Requirement defines an external dependency glossa relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external programs for the configured pipeline.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "interpreter",
			Command:     cfg.Pipeline.Interpreter,
			Description: "runs the stage scripts",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckScripts verifies each stage script exists under the script directory.
func CheckScripts(cfg *config.Config) []Status {
	results := make([]Status, 0, len(stagerun.Sequence()))
	for _, stg := range stagerun.Sequence() {
		path := filepath.Join(cfg.Pipeline.ScriptDir, stg.Script)
		status := Status{
			Name:        stg.Name,
			Command:     path,
			Description: fmt.Sprintf("stage %d script", stg.Ordinal),
		}
		info, err := os.Stat(path)
		switch {
		case err != nil:
			status.Detail = fmt.Sprintf("script %q not found", path)
		case info.IsDir():
			status.Detail = fmt.Sprintf("script path %q is a directory", path)
		default:
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// Check reports the full dependency picture for the configured pipeline.
func Check(cfg *config.Config) []Status {
	statuses := CheckBinaries(Requirements(cfg))
	return append(statuses, CheckScripts(cfg)...)
}
