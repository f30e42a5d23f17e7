package domain

import "fmt"

// SweepOutcome classifies how a bulk sweep ended.
type SweepOutcome uint8

const (
	// OutcomeDisabled means the sweep did not run because polish is disabled.
	OutcomeDisabled SweepOutcome = iota
	// OutcomeNoWorkspace means the workspace root does not exist.
	OutcomeNoWorkspace
	// OutcomeNoneFound means discovery returned no candidate files.
	OutcomeNoneFound
	// OutcomeDeclined means the user declined the confirmation prompt.
	OutcomeDeclined
	// OutcomeAllSucceeded means every file was transformed.
	OutcomeAllSucceeded
	// OutcomePartialFailure means at least one file failed.
	OutcomePartialFailure
)

var outcomeNames = [...]string{
	OutcomeDisabled:       "disabled",
	OutcomeNoWorkspace:    "no_workspace",
	OutcomeNoneFound:      "none_found",
	OutcomeDeclined:       "declined",
	OutcomeAllSucceeded:   "all_succeeded",
	OutcomePartialFailure: "partial_failure",
}

func (o SweepOutcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", o)
}

// Save hook outcomes, as recorded by metrics.
const (
	SaveSkipped    = "skipped"
	SaveApplied    = "applied"
	SaveSuperseded = "superseded"
	SaveFailed     = "failed"
)

// SweepReport is the result of a bulk sweep.
type SweepReport struct {
	Outcome   SweepOutcome
	Mode      DiscoveryMode
	Attempted int
	Succeeded int
	Failed    int
}

// Message returns the single user-facing line for the report.
func (r SweepReport) Message() string {
	switch r.Outcome {
	case OutcomeDisabled:
		return "polish is disabled"
	case OutcomeNoWorkspace:
		return "No workspace folder found"
	case OutcomeNoneFound:
		if r.Mode == DiscoveryChanged {
			return "No changed files found to format"
		}
		return "No supported files found to format"
	case OutcomeDeclined:
		return "Formatting cancelled"
	case OutcomeAllSucceeded:
		return fmt.Sprintf("Successfully formatted %d file(s)", r.Succeeded)
	case OutcomePartialFailure:
		return fmt.Sprintf("Formatted %d file(s), %d error(s). Check logs for details.", r.Succeeded, r.Failed)
	default:
		return "unknown sweep outcome"
	}
}

// Warning reports whether the outcome should be surfaced as a warning rather than information.
func (r SweepReport) Warning() bool {
	return r.Outcome == OutcomeDisabled || r.Outcome == OutcomePartialFailure
}

// ConfirmPrompt returns the confirmation question for n discovered files.
func ConfirmPrompt(mode DiscoveryMode, n int) string {
	if mode == DiscoveryChanged {
		return fmt.Sprintf("Format %d changed file(s)?", n)
	}
	return fmt.Sprintf("Format %d file(s) in workspace?", n)
}

// SaveRequest is one attempted save forwarded by an editor.
type SaveRequest struct {
	Path     string
	Root     string
	Language Language
	Text     string
}

// Item returns the WorkItem the request refers to.
func (r SaveRequest) Item() WorkItem {
	return WorkItem{Path: r.Path, Root: r.Root, Language: r.Language}
}

// SaveResult is the text the editor should commit.
// Applied is false when the original text is returned untouched.
type SaveResult struct {
	Text    string
	Applied bool
}
