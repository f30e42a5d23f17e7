package progress

import (
	"os"

	"golang.org/x/term"
)

// Mode selects how progress is rendered.
type Mode int

const (
	// ModeAuto detects the mode from the environment.
	ModeAuto Mode = iota
	// ModeLive rewrites a single status line.
	ModeLive
	// ModeLinear prints one line per update.
	ModeLinear
	// ModeTUI draws the interactive dashboard.
	ModeTUI
)

// DetectMode returns ModeLinear in CI or when stderr is not a terminal,
// and ModeTUI otherwise.
func DetectMode() Mode {
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModeLinear
	}
	return ModeTUI
}

// ResolveMode applies the user's --progress flag to the detected mode.
// flag is one of "auto", "tui", "live", "linear" or "ci"; anything else keeps detected.
func ResolveMode(detected Mode, flag string) Mode {
	switch flag {
	case "tui":
		return ModeTUI
	case "live":
		return ModeLive
	case "linear", "ci":
		return ModeLinear
	default:
		return detected
	}
}
