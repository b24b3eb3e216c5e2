// Package ui provides small terminal helpers for the query CLI: TTY
// detection and a single-line progress indicator shown while a query is
// in flight against potentially slow backing stores.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Stage names one step of the query pipeline, used only to label the
// progress indicator's status line.
type Stage int

const (
	StageParsing Stage = iota
	StagePlanning
	StageCoordinating
	StageAggregating
	StageComplete
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageParsing:
		return "Parsing"
	case StagePlanning:
		return "Planning"
	case StageCoordinating:
		return "Querying stores"
	case StageAggregating:
		return "Ranking results"
	case StageComplete:
		return "Done"
	default:
		return "Unknown"
	}
}

// IsTTY reports whether w is a terminal capable of carriage-return
// redraws. A non-terminal (pipe, file, CI log) gets the no-op renderer
// instead, matching the "plain output when not interactive" convention
// used throughout this CLI's command output.
func IsTTY(w interface{ Fd() uintptr }) bool {
	if w == nil {
		return false
	}
	return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
}

// DetectNoColor reports whether the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI reports whether the process appears to be running under a CI
// system, where a redrawing spinner would only pollute captured logs.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
